package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"evtickets/entity"
	"evtickets/internal/database"
	"evtickets/lib/apperr"
	"evtickets/lib/random"
	"evtickets/lib/sl"
)

const unknownEmail = "unknown"

// IssueTicket creates a ticket for the account behind req.UserEmail. Only the
// organizer of the event may issue, and a user holds at most one ticket per event.
func (c *Core) IssueTicket(ctx context.Context, caller *entity.Identity, req *entity.IssueRequest) (ticket *entity.Ticket, err error) {
	defer func() { c.metrics.TicketIssued(outcome(err)) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if req == nil || req.UserEmail == "" || req.EventId == "" {
		return nil, apperr.BadRequest("userEmail and eventId are required")
	}
	if c.auth == nil || c.qr == nil {
		return nil, apperr.Internal("ticket service not available", nil)
	}
	log := c.log.With(
		slog.String("caller", caller.Uid),
		slog.String("event_id", req.EventId),
	)

	holder, err := c.auth.UserByEmail(ctx, req.UserEmail)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		log.Error("resolve user", sl.Err(err))
		return nil, apperr.Internal("resolve user", err)
	}

	event, err := c.db.GetEvent(ctx, req.EventId)
	if err != nil {
		log.Error("get event", sl.Err(err))
		return nil, apperr.Internal("get event", err)
	}
	if event == nil {
		return nil, apperr.NotFound("event not found")
	}
	if event.OrganizerId != caller.Uid {
		log.Warn("issue by non-organizer")
		return nil, apperr.Forbidden("only the event organizer may issue tickets")
	}

	exists, err := c.db.TicketExists(ctx, holder.Uid, event.Id)
	if err != nil {
		log.Error("check existing ticket", sl.Err(err))
		return nil, apperr.Internal("check existing ticket", err)
	}
	if exists {
		return nil, apperr.Conflict("user already has a ticket for this event")
	}

	token, err := random.Hex(c.tokenBytes)
	if err != nil {
		log.Error("generate token", sl.Err(err))
		return nil, apperr.Internal("generate token", err)
	}
	image, err := c.qr.DataURI(token)
	if err != nil {
		log.Error("render qr code", sl.Err(err))
		return nil, apperr.Internal("render qr code", err)
	}

	ticket = &entity.Ticket{
		Id:        uuid.NewString(),
		UserId:    holder.Uid,
		EventId:   event.Id,
		Token:     token,
		QRImage:   image,
		Used:      false,
		CreatedAt: c.now().UTC(),
	}
	if err = c.db.CreateTicket(ctx, ticket); err != nil {
		// a concurrent issue for the same pair loses on the unique index
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict("user already has a ticket for this event")
		}
		log.Error("save ticket", sl.Err(err))
		return nil, apperr.Internal("save ticket", err)
	}

	reg := &entity.Registration{
		UserId:    ticket.UserId,
		EventId:   ticket.EventId,
		TicketId:  ticket.Id,
		CreatedAt: ticket.CreatedAt,
	}
	if err := c.db.SaveRegistration(ctx, reg); err != nil {
		log.Warn("save registration", sl.Err(err))
	}

	log.With(
		slog.String("ticket_id", ticket.Id),
		slog.String("holder", ticket.UserId),
	).Info("ticket issued")
	return ticket, nil
}

// VerifyTicket redeems the ticket carrying token. The result is always
// returned; err is set on rejection and then no state has changed.
func (c *Core) VerifyTicket(ctx context.Context, token string) (result *entity.VerifyResult, err error) {
	defer func() { c.metrics.TicketVerified(outcome(err)) }()

	if token == "" {
		return &entity.VerifyResult{Valid: false, Reason: "token is required"}, apperr.BadRequest("token is required")
	}
	log := c.log.With(sl.Secret("token", token))

	ticket, err := c.db.RedeemTicket(ctx, token, c.now().UTC())
	if err != nil {
		log.Error("redeem ticket", sl.Err(err))
		return &entity.VerifyResult{Valid: false}, apperr.Internal("redeem ticket", err)
	}
	if ticket != nil {
		log.With(
			slog.String("ticket_id", ticket.Id),
			slog.String("event_id", ticket.EventId),
		).Info("ticket redeemed")
		return &entity.VerifyResult{
			Valid:   true,
			UserId:  ticket.UserId,
			EventId: ticket.EventId,
		}, nil
	}

	existing, err := c.db.TicketByToken(ctx, token)
	if err != nil {
		log.Error("find ticket", sl.Err(err))
		return &entity.VerifyResult{Valid: false}, apperr.Internal("find ticket", err)
	}
	if existing == nil {
		log.Warn("unknown ticket scanned")
		return &entity.VerifyResult{Valid: false, Reason: entity.ReasonNotFound}, apperr.NotFound(entity.ReasonNotFound)
	}
	log.With(slog.String("ticket_id", existing.Id)).Warn("used ticket scanned")
	return &entity.VerifyResult{Valid: false, Reason: entity.ReasonAlreadyUsed}, apperr.Gone(entity.ReasonAlreadyUsed)
}

// EventTickets lists the tickets of an event for its organizer. Holder emails
// that cannot be resolved are reported as "unknown".
func (c *Core) EventTickets(ctx context.Context, caller *entity.Identity, eventId string) ([]*entity.TicketEntry, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if eventId == "" {
		return nil, apperr.BadRequest("eventId is required")
	}
	event, err := c.db.GetEvent(ctx, eventId)
	if err != nil {
		return nil, apperr.Internal("get event", err)
	}
	if event == nil {
		return nil, apperr.NotFound("event not found")
	}
	if event.OrganizerId != caller.Uid {
		return nil, apperr.Forbidden("only the event organizer may list tickets")
	}

	tickets, err := c.db.TicketsByEvent(ctx, eventId)
	if err != nil {
		return nil, apperr.Internal("list tickets", err)
	}

	emails := make(map[string]string)
	entries := make([]*entity.TicketEntry, 0, len(tickets))
	for _, t := range tickets {
		email, ok := emails[t.UserId]
		if !ok {
			email = c.holderEmail(ctx, t.UserId)
			emails[t.UserId] = email
		}
		entries = append(entries, &entity.TicketEntry{
			TicketId:  t.Id,
			UserId:    t.UserId,
			UserEmail: email,
			QRImage:   t.QRImage,
			Used:      t.Used,
			UsedAt:    t.UsedAt,
			CreatedAt: t.CreatedAt,
		})
	}
	return entries, nil
}

func (c *Core) holderEmail(ctx context.Context, uid string) string {
	if c.auth == nil {
		return unknownEmail
	}
	identity, err := c.auth.UserById(ctx, uid)
	if err != nil || identity.Email == "" {
		c.log.With(slog.String("user_id", uid)).Warn("holder email lookup", sl.Err(err))
		return unknownEmail
	}
	return identity.Email
}

func (c *Core) MyTickets(ctx context.Context, caller *entity.Identity) ([]*entity.Ticket, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	tickets, err := c.db.TicketsByUser(ctx, caller.Uid)
	if err != nil {
		return nil, apperr.Internal("list tickets", err)
	}
	return tickets, nil
}

// TicketDetail returns a ticket with its event to the holder or the event organizer.
func (c *Core) TicketDetail(ctx context.Context, caller *entity.Identity, ticketId string) (*entity.TicketDetail, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	ticket, err := c.db.GetTicket(ctx, ticketId)
	if err != nil {
		return nil, apperr.Internal("get ticket", err)
	}
	if ticket == nil {
		return nil, apperr.NotFound("ticket not found")
	}
	event, err := c.db.GetEvent(ctx, ticket.EventId)
	if err != nil {
		return nil, apperr.Internal("get event", err)
	}
	isOrganizer := event != nil && event.OrganizerId == caller.Uid
	if ticket.UserId != caller.Uid && !isOrganizer {
		return nil, apperr.Forbidden("ticket belongs to another user")
	}
	return &entity.TicketDetail{Ticket: ticket, Event: event}, nil
}
