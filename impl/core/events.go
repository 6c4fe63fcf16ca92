package core

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"evtickets/entity"
	"evtickets/lib/apperr"
	"evtickets/lib/sl"
)

// CreateEvent stores a new event owned by the caller, who must hold the organizer role.
func (c *Core) CreateEvent(ctx context.Context, caller *entity.Identity, event *entity.Event) (*entity.Event, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperr.BadRequest("event is required")
	}
	profile, err := c.db.GetUser(ctx, caller.Uid)
	if err != nil {
		return nil, apperr.Internal("get profile", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("profile not found")
	}
	switch profile.Role.Normalize() {
	case entity.RoleOrganizer:
	case entity.RoleAttendee:
		return nil, apperr.Forbidden("only organizers may create events")
	default:
		return nil, apperr.Internal("unknown role", nil)
	}

	event.Id = uuid.NewString()
	event.OrganizerId = caller.Uid
	event.CreatedAt = c.now().UTC()
	if event.Guests == nil {
		event.Guests = []string{}
	}
	if err = c.db.CreateEvent(ctx, event); err != nil {
		c.log.Error("save event", sl.Err(err))
		return nil, apperr.Internal("save event", err)
	}
	c.log.With(
		slog.String("event_id", event.Id),
		slog.String("organizer", caller.Uid),
	).Info("event created")
	return event, nil
}

func (c *Core) ListEvents(ctx context.Context) ([]*entity.Event, error) {
	events, err := c.db.ListEvents(ctx)
	if err != nil {
		return nil, apperr.Internal("list events", err)
	}
	return events, nil
}

func (c *Core) EventDetail(ctx context.Context, id string) (*entity.Event, error) {
	if id == "" {
		return nil, apperr.BadRequest("event id is required")
	}
	event, err := c.db.GetEvent(ctx, id)
	if err != nil {
		return nil, apperr.Internal("get event", err)
	}
	if event == nil {
		return nil, apperr.NotFound("event not found")
	}
	return event, nil
}

// MyEvents returns the events the caller organizes and the ones they hold a ticket or registration for.
func (c *Core) MyEvents(ctx context.Context, caller *entity.Identity) (*entity.MyEvents, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	created, err := c.db.EventsByOrganizer(ctx, caller.Uid)
	if err != nil {
		return nil, apperr.Internal("list created events", err)
	}

	registrations, err := c.db.RegistrationsByUser(ctx, caller.Uid)
	if err != nil {
		return nil, apperr.Internal("list registrations", err)
	}
	tickets, err := c.db.TicketsByUser(ctx, caller.Uid)
	if err != nil {
		return nil, apperr.Internal("list tickets", err)
	}

	seen := make(map[string]bool)
	ids := make([]string, 0, len(registrations)+len(tickets))
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, r := range registrations {
		add(r.EventId)
	}
	for _, t := range tickets {
		add(t.EventId)
	}

	participating, err := c.db.EventsByIds(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("list participating events", err)
	}
	return &entity.MyEvents{Created: created, Participating: participating}, nil
}
