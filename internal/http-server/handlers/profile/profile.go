package profile

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"evtickets/entity"
	"evtickets/lib/api/cont"
	"evtickets/lib/api/response"
	"evtickets/lib/apperr"
	"evtickets/lib/sl"
)

type Core interface {
	GetProfile(ctx context.Context, caller *entity.Identity) (*entity.User, error)
	SaveProfile(ctx context.Context, caller *entity.Identity, profile *entity.User) (*entity.User, error)
	SwitchProfile(ctx context.Context, caller *entity.Identity) (*entity.User, error)
}

func Get(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("http.handlers.profile"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("profile service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Profile service not available"))
			return
		}

		user, err := handler.GetProfile(r.Context(), cont.GetCaller(r.Context()))
		if err != nil {
			fail(w, r, log, "get profile", err)
			return
		}
		render.JSON(w, r, response.Ok(user))
	}
}

func Save(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("http.handlers.profile"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("profile service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Profile service not available"))
			return
		}

		var user entity.User
		if err := render.Bind(r, &user); err != nil {
			log.Warn("invalid request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		saved, err := handler.SaveProfile(r.Context(), cont.GetCaller(r.Context()), &user)
		if err != nil {
			fail(w, r, log, "save profile", err)
			return
		}
		render.JSON(w, r, response.Ok(saved))
	}
}

func Switch(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("http.handlers.profile"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("profile service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Profile service not available"))
			return
		}

		user, err := handler.SwitchProfile(r.Context(), cont.GetCaller(r.Context()))
		if err != nil {
			fail(w, r, log, "switch profile", err)
			return
		}
		log.With(slog.String("role", string(user.Role))).Debug("profile switched")
		render.JSON(w, r, response.Ok(user))
	}
}

func fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	if apperr.Is(err, apperr.KindInternal) {
		log.Error(msg, sl.Err(err))
	} else {
		log.Warn(msg, sl.Err(err))
	}
	status, resp := response.FromError(err)
	render.Status(r, status)
	render.JSON(w, r, resp)
}
