package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"evtickets/lib/api/response"
)

type status struct {
	Status string `json:"status"`
}

func Live(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(status{Status: "ok"}))
	}
}
