package event

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"evtickets/entity"
	"evtickets/lib/api/cont"
	"evtickets/lib/api/response"
	"evtickets/lib/apperr"
	"evtickets/lib/sl"
)

type Core interface {
	CreateEvent(ctx context.Context, caller *entity.Identity, event *entity.Event) (*entity.Event, error)
	ListEvents(ctx context.Context) ([]*entity.Event, error)
	EventDetail(ctx context.Context, id string) (*entity.Event, error)
	MyEvents(ctx context.Context, caller *entity.Identity) (*entity.MyEvents, error)
}

func Create(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.event")

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("event service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Event service not available"))
			return
		}

		var event entity.Event
		if err := render.Bind(r, &event); err != nil {
			log.Warn("invalid request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		created, err := handler.CreateEvent(r.Context(), cont.GetCaller(r.Context()), &event)
		if err != nil {
			fail(w, r, log, "create event", err)
			return
		}
		log.With(
			slog.String("event_id", created.Id),
		).Debug("event created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(created))
	}
}

func List(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("http.handlers.event"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("event service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Event service not available"))
			return
		}

		events, err := handler.ListEvents(r.Context())
		if err != nil {
			fail(w, r, log, "list events", err)
			return
		}
		render.JSON(w, r, response.Ok(events))
	}
}

func Mine(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("http.handlers.event"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("event service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Event service not available"))
			return
		}

		events, err := handler.MyEvents(r.Context(), cont.GetCaller(r.Context()))
		if err != nil {
			fail(w, r, log, "list my events", err)
			return
		}
		render.JSON(w, r, response.Ok(events))
	}
}

func Detail(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logger.With(
			sl.Module("http.handlers.event"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("event_id", id),
		)

		if handler == nil {
			log.Error("event service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Event service not available"))
			return
		}

		event, err := handler.EventDetail(r.Context(), id)
		if err != nil {
			fail(w, r, log, "event detail", err)
			return
		}
		render.JSON(w, r, response.Ok(event))
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
