package core

import (
	"context"
	"log/slog"
	"time"

	"evtickets/entity"
	"evtickets/internal/metrics"
	"evtickets/lib/apperr"
	"evtickets/lib/random"
	"evtickets/lib/sl"
)

// Database is the document store. Lookups of a single document return nil, nil when it does not exist.
type Database interface {
	CreateTicket(ctx context.Context, ticket *entity.Ticket) error
	TicketExists(ctx context.Context, userId, eventId string) (bool, error)
	GetTicket(ctx context.Context, id string) (*entity.Ticket, error)
	TicketByToken(ctx context.Context, token string) (*entity.Ticket, error)
	RedeemTicket(ctx context.Context, token string, at time.Time) (*entity.Ticket, error)
	TicketsByEvent(ctx context.Context, eventId string) ([]*entity.Ticket, error)
	TicketsByUser(ctx context.Context, userId string) ([]*entity.Ticket, error)

	CreateEvent(ctx context.Context, event *entity.Event) error
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	ListEvents(ctx context.Context) ([]*entity.Event, error)
	EventsByOrganizer(ctx context.Context, organizerId string) ([]*entity.Event, error)
	EventsByIds(ctx context.Context, ids []string) ([]*entity.Event, error)

	GetUser(ctx context.Context, id string) (*entity.User, error)
	SaveUser(ctx context.Context, user *entity.User) error
	UserConflict(ctx context.Context, user *entity.User) (*entity.User, error)
	SetUserRole(ctx context.Context, id string, from, to entity.Role) (bool, error)

	SaveRegistration(ctx context.Context, reg *entity.Registration) error
	RegistrationsByUser(ctx context.Context, userId string) ([]*entity.Registration, error)
}

type AuthService interface {
	UserByToken(ctx context.Context, token string) (*entity.Identity, error)
	UserByEmail(ctx context.Context, email string) (*entity.Identity, error)
	UserById(ctx context.Context, uid string) (*entity.Identity, error)
}

type QREncoder interface {
	DataURI(content string) (string, error)
}

type Core struct {
	db         Database
	auth       AuthService
	qr         QREncoder
	metrics    *metrics.Metrics
	log        *slog.Logger
	tokenBytes int
	now        func() time.Time
}

func New(db Database, auth AuthService, qr QREncoder, log *slog.Logger) *Core {
	if db == nil {
		panic("database is nil")
	}
	return &Core{
		db:         db,
		auth:       auth,
		qr:         qr,
		log:        log.With(sl.Module("core")),
		tokenBytes: random.MinTokenBytes,
		now:        time.Now,
	}
}

func (c *Core) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// SetTokenBytes sets the token length; values outside the accepted range are clamped.
func (c *Core) SetTokenBytes(n int) {
	switch {
	case n < random.MinTokenBytes:
		c.tokenBytes = random.MinTokenBytes
	case n > random.MaxTokenBytes:
		c.tokenBytes = random.MaxTokenBytes
	default:
		c.tokenBytes = n
	}
}

func (c *Core) AuthenticateByToken(ctx context.Context, token string) (*entity.Identity, error) {
	if c.auth == nil {
		return nil, apperr.Internal("auth service not connected", nil)
	}
	return c.auth.UserByToken(ctx, token)
}

func requireCaller(caller *entity.Identity) error {
	if caller == nil || caller.Uid == "" {
		return apperr.Unauthenticated("authentication required")
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}
