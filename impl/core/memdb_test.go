package core

import (
	"context"
	"sync"
	"time"

	"evtickets/entity"
	"evtickets/internal/database"
)

// memDB mirrors the document store, including its unique indexes and the
// conditional update used for redemption.
type memDB struct {
	mu            sync.Mutex
	tickets       map[string]entity.Ticket
	events        map[string]entity.Event
	users         map[string]entity.User
	registrations map[string]entity.Registration
	writes        int
	failRegister  error
}

func newMemDB() *memDB {
	return &memDB{
		tickets:       make(map[string]entity.Ticket),
		events:        make(map[string]entity.Event),
		users:         make(map[string]entity.User),
		registrations: make(map[string]entity.Registration),
	}
}

func (m *memDB) CreateTicket(_ context.Context, ticket *entity.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.Token == ticket.Token || (t.UserId == ticket.UserId && t.EventId == ticket.EventId) {
			return database.ErrDuplicate
		}
	}
	m.tickets[ticket.Id] = *ticket
	m.writes++
	return nil
}

func (m *memDB) TicketExists(_ context.Context, userId, eventId string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.UserId == userId && t.EventId == eventId {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDB) GetTicket(_ context.Context, id string) (*entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memDB) TicketByToken(_ context.Context, token string) (*entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memDB) RedeemTicket(_ context.Context, token string, at time.Time) (*entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tickets {
		if t.Token == token && !t.Used {
			t.Used = true
			t.UsedAt = &at
			m.tickets[id] = t
			m.writes++
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memDB) TicketsByEvent(_ context.Context, eventId string) ([]*entity.Ticket, error) {
	return m.ticketsWhere(func(t entity.Ticket) bool { return t.EventId == eventId }), nil
}

func (m *memDB) TicketsByUser(_ context.Context, userId string) ([]*entity.Ticket, error) {
	return m.ticketsWhere(func(t entity.Ticket) bool { return t.UserId == userId }), nil
}

func (m *memDB) ticketsWhere(match func(entity.Ticket) bool) []*entity.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*entity.Ticket
	for _, t := range m.tickets {
		if match(t) {
			t := t
			list = append(list, &t)
		}
	}
	return list
}

func (m *memDB) CreateEvent(_ context.Context, event *entity.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.Id]; ok {
		return database.ErrDuplicate
	}
	m.events[event.Id] = *event
	m.writes++
	return nil
}

func (m *memDB) GetEvent(_ context.Context, id string) (*entity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memDB) ListEvents(_ context.Context) ([]*entity.Event, error) {
	return m.eventsWhere(func(entity.Event) bool { return true }), nil
}

func (m *memDB) EventsByOrganizer(_ context.Context, organizerId string) ([]*entity.Event, error) {
	return m.eventsWhere(func(e entity.Event) bool { return e.OrganizerId == organizerId }), nil
}

func (m *memDB) EventsByIds(_ context.Context, ids []string) ([]*entity.Event, error) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return m.eventsWhere(func(e entity.Event) bool { return set[e.Id] }), nil
}

func (m *memDB) eventsWhere(match func(entity.Event) bool) []*entity.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*entity.Event
	for _, e := range m.events {
		if match(e) {
			e := e
			list = append(list, &e)
		}
	}
	return list
}

func (m *memDB) GetUser(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memDB) SaveUser(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Id] = *user
	m.writes++
	return nil
}

func (m *memDB) UserConflict(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Id == user.Id {
			continue
		}
		if u.Email == user.Email || u.Cpf == user.Cpf || u.Phone == user.Phone {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memDB) SetUserRole(_ context.Context, id string, from, to entity.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Role.Normalize() != from {
		return false, nil
	}
	u.Role = to
	m.users[id] = u
	m.writes++
	return true, nil
}

func (m *memDB) SaveRegistration(_ context.Context, reg *entity.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRegister != nil {
		return m.failRegister
	}
	key := reg.UserId + "/" + reg.EventId
	if _, ok := m.registrations[key]; !ok {
		m.registrations[key] = *reg
		m.writes++
	}
	return nil
}

func (m *memDB) RegistrationsByUser(_ context.Context, userId string) ([]*entity.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*entity.Registration
	for _, r := range m.registrations {
		if r.UserId == userId {
			r := r
			list = append(list, &r)
		}
	}
	return list, nil
}

func (m *memDB) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memDB) ticketCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}
