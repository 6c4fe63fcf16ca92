package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"evtickets/entity"
	"evtickets/internal/config"
)

const (
	collectionUsers         = "users"
	collectionEvents        = "events"
	collectionTickets       = "tickets"
	collectionRegistrations = "registrations"
)

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate document")

// MongoDB owns one client for the life of the process; Close releases it.
type MongoDB struct {
	client   *mongo.Client
	database string
}

func ConnectionURI(conf config.MongoConfig) string {
	return fmt.Sprintf("mongodb://%s:%s", conf.Host, conf.Port)
}

func NewMongoClient(ctx context.Context, conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, fmt.Errorf("mongodb is disabled in configuration")
	}
	clientOptions := options.Client().ApplyURI(ConnectionURI(conf.Mongo))
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	m := &MongoDB{
		client:   client,
		database: conf.Mongo.Database,
	}
	if err = m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

// EnsureIndexes creates the unique indexes the ticket invariants rely on:
// one ticket per (user, event) and one ticket per token.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection(collectionTickets).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_event_unique"),
		},
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("token_unique"),
		},
		{
			Keys: bson.D{{Key: "event_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("mongodb tickets indexes: %w", err)
	}
	_, err = m.collection(collectionRegistrations).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongodb registrations indexes: %w", err)
	}
	_, err = m.collection(collectionEvents).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "organizer_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongodb events indexes: %w", err)
	}
	_, err = m.collection(collectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongodb users indexes: %w", err)
	}
	return nil
}

func (m *MongoDB) findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return fmt.Errorf("mongodb find: %w", err)
}

func (m *MongoDB) insertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return fmt.Errorf("mongodb insert: %w", err)
}

// Tickets

func (m *MongoDB) CreateTicket(ctx context.Context, ticket *entity.Ticket) error {
	_, err := m.collection(collectionTickets).InsertOne(ctx, ticket)
	if err != nil {
		return m.insertError(err)
	}
	return nil
}

func (m *MongoDB) TicketExists(ctx context.Context, userId, eventId string) (bool, error) {
	filter := bson.D{{Key: "user_id", Value: userId}, {Key: "event_id", Value: eventId}}
	count, err := m.collection(collectionTickets).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongodb count: %w", err)
	}
	return count > 0, nil
}

// GetTicket returns nil when no ticket has the id.
func (m *MongoDB) GetTicket(ctx context.Context, id string) (*entity.Ticket, error) {
	return m.findTicket(ctx, bson.D{{Key: "_id", Value: id}})
}

// TicketByToken returns nil when no ticket carries the token.
func (m *MongoDB) TicketByToken(ctx context.Context, token string) (*entity.Ticket, error) {
	return m.findTicket(ctx, bson.D{{Key: "token", Value: token}})
}

func (m *MongoDB) findTicket(ctx context.Context, filter bson.D) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := m.collection(collectionTickets).FindOne(ctx, filter).Decode(&ticket)
	if err != nil {
		return nil, m.findError(err)
	}
	return &ticket, nil
}

// RedeemTicket marks the unused ticket carrying token as used in a single
// conditional update. It returns the updated ticket, or nil when no unused
// ticket matched, in which case nothing was written.
func (m *MongoDB) RedeemTicket(ctx context.Context, token string, at time.Time) (*entity.Ticket, error) {
	filter := bson.D{{Key: "token", Value: token}, {Key: "used", Value: false}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "used", Value: true},
		{Key: "used_at", Value: at},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ticket entity.Ticket
	err := m.collection(collectionTickets).FindOneAndUpdate(ctx, filter, update, opts).Decode(&ticket)
	if err != nil {
		return nil, m.findError(err)
	}
	return &ticket, nil
}

func (m *MongoDB) TicketsByEvent(ctx context.Context, eventId string) ([]*entity.Ticket, error) {
	return m.findTickets(ctx, bson.D{{Key: "event_id", Value: eventId}})
}

func (m *MongoDB) TicketsByUser(ctx context.Context, userId string) ([]*entity.Ticket, error) {
	return m.findTickets(ctx, bson.D{{Key: "user_id", Value: userId}})
}

func (m *MongoDB) findTickets(ctx context.Context, filter bson.D) ([]*entity.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.collection(collectionTickets).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	defer cursor.Close(ctx)

	tickets := make([]*entity.Ticket, 0)
	if err = cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("mongodb decode: %w", err)
	}
	return tickets, nil
}

// Events

func (m *MongoDB) CreateEvent(ctx context.Context, event *entity.Event) error {
	_, err := m.collection(collectionEvents).InsertOne(ctx, event)
	if err != nil {
		return m.insertError(err)
	}
	return nil
}

// GetEvent returns nil when no event has the id.
func (m *MongoDB) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	var event entity.Event
	err := m.collection(collectionEvents).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&event)
	if err != nil {
		return nil, m.findError(err)
	}
	return &event, nil
}

func (m *MongoDB) ListEvents(ctx context.Context) ([]*entity.Event, error) {
	return m.findEvents(ctx, bson.D{})
}

func (m *MongoDB) EventsByOrganizer(ctx context.Context, organizerId string) ([]*entity.Event, error) {
	return m.findEvents(ctx, bson.D{{Key: "organizer_id", Value: organizerId}})
}

func (m *MongoDB) EventsByIds(ctx context.Context, ids []string) ([]*entity.Event, error) {
	if len(ids) == 0 {
		return []*entity.Event{}, nil
	}
	return m.findEvents(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
}

func (m *MongoDB) findEvents(ctx context.Context, filter bson.D) ([]*entity.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cursor, err := m.collection(collectionEvents).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*entity.Event, 0)
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("mongodb decode: %w", err)
	}
	return events, nil
}

// Users

// GetUser returns nil when no profile exists for the uid.
func (m *MongoDB) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := m.collection(collectionUsers).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&user)
	if err != nil {
		return nil, m.findError(err)
	}
	return &user, nil
}

func (m *MongoDB) SaveUser(ctx context.Context, user *entity.User) error {
	filter := bson.D{{Key: "_id", Value: user.Id}}
	opts := options.Replace().SetUpsert(true)
	_, err := m.collection(collectionUsers).ReplaceOne(ctx, filter, user, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert: %w", err)
	}
	return nil
}

// UserConflict returns another user sharing the email, cpf or phone of user, or nil.
func (m *MongoDB) UserConflict(ctx context.Context, user *entity.User) (*entity.User, error) {
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: user.Id}}},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "email", Value: user.Email}},
			bson.D{{Key: "cpf", Value: user.Cpf}},
			bson.D{{Key: "phone", Value: user.Phone}},
		}},
	}
	var other entity.User
	err := m.collection(collectionUsers).FindOne(ctx, filter).Decode(&other)
	if err != nil {
		return nil, m.findError(err)
	}
	return &other, nil
}

// SetUserRole switches the role only if it still equals from; ok reports whether it did.
func (m *MongoDB) SetUserRole(ctx context.Context, id string, from, to entity.Role) (bool, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	if from == entity.RoleAttendee {
		// records without a role read as attendee
		filter = append(filter, bson.E{Key: "role", Value: bson.D{{Key: "$in", Value: bson.A{entity.RoleAttendee, "", nil}}}})
	} else {
		filter = append(filter, bson.E{Key: "role", Value: from})
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: to}}}}
	result, err := m.collection(collectionUsers).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mongodb update: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

// Registrations

func (m *MongoDB) SaveRegistration(ctx context.Context, reg *entity.Registration) error {
	filter := bson.D{{Key: "user_id", Value: reg.UserId}, {Key: "event_id", Value: reg.EventId}}
	update := bson.D{{Key: "$setOnInsert", Value: reg}}
	opts := options.Update().SetUpsert(true)
	_, err := m.collection(collectionRegistrations).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert: %w", err)
	}
	return nil
}

func (m *MongoDB) RegistrationsByUser(ctx context.Context, userId string) ([]*entity.Registration, error) {
	cursor, err := m.collection(collectionRegistrations).Find(ctx, bson.D{{Key: "user_id", Value: userId}})
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	defer cursor.Close(ctx)

	registrations := make([]*entity.Registration, 0)
	if err = cursor.All(ctx, &registrations); err != nil {
		return nil, fmt.Errorf("mongodb decode: %w", err)
	}
	return registrations, nil
}
