package ticket

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
	IssueTicket(ctx context.Context, caller *entity.Identity, req *entity.IssueRequest) (*entity.Ticket, error)
	VerifyTicket(ctx context.Context, token string) (*entity.VerifyResult, error)
	EventTickets(ctx context.Context, caller *entity.Identity, eventId string) ([]*entity.TicketEntry, error)
	MyTickets(ctx context.Context, caller *entity.Identity) ([]*entity.Ticket, error)
	TicketDetail(ctx context.Context, caller *entity.Identity, ticketId string) (*entity.TicketDetail, error)
}

type issued struct {
	Ticket *entity.Ticket `json:"ticket"`
}

func Issue(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.ticket")

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("ticket service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Ticket service not available"))
			return
		}

		var req entity.IssueRequest
		if err := render.Bind(r, &req); err != nil {
			log.Warn("invalid request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		log = log.With(slog.String("event_id", req.EventId))

		ticket, err := handler.IssueTicket(r.Context(), cont.GetCaller(r.Context()), &req)
		if err != nil {
			logFailure(log, "issue ticket", err)
			status, resp := response.FromError(err)
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}
		log.With(
			slog.String("ticket_id", ticket.Id),
		).Debug("ticket issued")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(issued{Ticket: ticket}))
	}
}

// Verify is called by the scanning device; rejected scans still carry the result with its reason.
func Verify(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.ticket")

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("ticket service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Ticket service not available"))
			return
		}

		var req entity.VerifyRequest
		if err := render.Bind(r, &req); err != nil {
			log.Warn("invalid request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Fail(
				fmt.Sprintf("Invalid request: %v", err),
				&entity.VerifyResult{Valid: false, Reason: "invalid token"},
			))
			return
		}

		result, err := handler.VerifyTicket(r.Context(), req.Token)
		if err != nil {
			logFailure(log, "verify ticket", err)
			render.Status(r, apperr.StatusOf(err))
			render.JSON(w, r, response.Fail(apperr.Message(err), result))
			return
		}

		render.JSON(w, r, response.Ok(result))
	}
}

func ByEvent(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.ticket")

		eventId := chi.URLParam(r, "id")
		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("event_id", eventId),
		)

		if handler == nil {
			log.Error("ticket service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Ticket service not available"))
			return
		}

		entries, err := handler.EventTickets(r.Context(), cont.GetCaller(r.Context()), eventId)
		if err != nil {
			logFailure(log, "list event tickets", err)
			status, resp := response.FromError(err)
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, response.Ok(entries))
	}
}

func Mine(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.ticket")

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("ticket service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Ticket service not available"))
			return
		}

		tickets, err := handler.MyTickets(r.Context(), cont.GetCaller(r.Context()))
		if err != nil {
			logFailure(log, "list my tickets", err)
			status, resp := response.FromError(err)
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, response.Ok(tickets))
	}
}

func Detail(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.ticket")

		ticketId := chi.URLParam(r, "id")
		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("ticket_id", ticketId),
		)

		if handler == nil {
			log.Error("ticket service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Ticket service not available"))
			return
		}

		detail, err := handler.TicketDetail(r.Context(), cont.GetCaller(r.Context()), ticketId)
		if err != nil {
			logFailure(log, "ticket detail", err)
			status, resp := response.FromError(err)
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, response.Ok(detail))
	}
}

func logFailure(log *slog.Logger, msg string, err error) {
	if apperr.Is(err, apperr.KindInternal) {
		log.Error(msg, sl.Err(err))
		return
	}
	log.Warn(msg, sl.Err(err))
}
