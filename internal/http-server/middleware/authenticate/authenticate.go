package authenticate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"evtickets/entity"
	"evtickets/lib/api/cont"
	"evtickets/lib/api/response"
	"evtickets/lib/sl"
)

type Authenticate interface {
	AuthenticateByToken(ctx context.Context, token string) (*entity.Identity, error)
}

// New verifies the bearer token of every request and puts the caller into the request context.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {

		fn := func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetReqID(r.Context())
			logger := log.With(
				mod,
				slog.String("path", r.URL.Path),
				slog.String("request_id", id),
			)

			header := r.Header.Get("Authorization")
			if len(header) == 0 {
				logger.Debug("auth failed", sl.Err(fmt.Errorf("authorization header not found")))
				authFailed(w, r, "Authorization header not found")
				return
			}
			token := ""
			if scheme, value, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
				token = strings.TrimSpace(value)
			}
			if len(token) == 0 {
				logger.Debug("auth failed", sl.Err(fmt.Errorf("token not found")))
				authFailed(w, r, "Token not found")
				return
			}
			logger = logger.With(sl.Secret("token", token))

			if auth == nil {
				authFailed(w, r, "Unauthorized: authentication not enabled")
				return
			}

			caller, err := auth.AuthenticateByToken(r.Context(), token)
			if err != nil {
				logger.Warn("auth failed", sl.Err(err))
				authFailed(w, r, "Unauthorized: invalid token")
				return
			}
			ctx := cont.PutCaller(r.Context(), caller)

			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func authFailed(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}
