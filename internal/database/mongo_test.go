package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"evtickets/entity"
	"evtickets/internal/config"
)

func TestConnectionURI(t *testing.T) {
	uri := ConnectionURI(config.MongoConfig{Host: "db.local", Port: "27018"})
	assert.Equal(t, "mongodb://db.local:27018", uri)
}

func TestNewMongoClient_Disabled(t *testing.T) {
	conf := &config.Config{Mongo: config.MongoConfig{Enabled: false}}
	db, err := NewMongoClient(context.Background(), conf)
	assert.Error(t, err)
	assert.Nil(t, db)
}

func newMockStore(mt *mtest.T) *MongoDB {
	return &MongoDB{client: mt.Client, database: mt.DB.Name()}
}

func TestRedeemTicket(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	usedAt := time.Date(2026, 5, 10, 18, 30, 0, 0, time.UTC)

	mt.Run("no unused ticket", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		ticket, err := newMockStore(mt).RedeemTicket(context.Background(), "abc", usedAt)
		require.NoError(mt, err)
		assert.Nil(mt, ticket)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "abc", cmd.Lookup("query", "token").StringValue())
		assert.False(mt, cmd.Lookup("query", "used").Boolean())
		assert.True(mt, cmd.Lookup("update", "$set", "used").Boolean())
	})

	mt.Run("redeemed", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "t-1"},
			{Key: "user_id", Value: "u-1"},
			{Key: "event_id", Value: "e-1"},
			{Key: "token", Value: "abc"},
			{Key: "used", Value: true},
			{Key: "used_at", Value: usedAt},
		}}))

		ticket, err := newMockStore(mt).RedeemTicket(context.Background(), "abc", usedAt)
		require.NoError(mt, err)
		require.NotNil(mt, ticket)
		assert.Equal(mt, "t-1", ticket.Id)
		assert.True(mt, ticket.Used)
		require.NotNil(mt, ticket.UsedAt)
		assert.True(mt, usedAt.Equal(*ticket.UsedAt))
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 0}, {Key: "code", Value: 2}, {Key: "errmsg", Value: "bad query"}})

		ticket, err := newMockStore(mt).RedeemTicket(context.Background(), "abc", usedAt)
		assert.Error(mt, err)
		assert.Nil(mt, ticket)
	})
}

func TestCreateTicket_Duplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: tickets index: user_event_unique",
		}))

		err := newMockStore(mt).CreateTicket(context.Background(), &entity.Ticket{Id: "t-1", UserId: "u-1", EventId: "e-1"})
		assert.True(mt, errors.Is(err, ErrDuplicate))
	})

	mt.Run("other write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "document failed validation",
		}))

		err := newMockStore(mt).CreateTicket(context.Background(), &entity.Ticket{Id: "t-1"})
		assert.Error(mt, err)
		assert.False(mt, errors.Is(err, ErrDuplicate))
	})

	mt.Run("inserted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := newMockStore(mt).CreateTicket(context.Background(), &entity.Ticket{Id: "t-1"})
		assert.NoError(mt, err)
	})
}

func TestSetUserRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("switched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		ok, err := newMockStore(mt).SetUserRole(context.Background(), "u-1", entity.RoleAttendee, entity.RoleOrganizer)
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("role changed meanwhile", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		ok, err := newMockStore(mt).SetUserRole(context.Background(), "u-1", entity.RoleOrganizer, entity.RoleAttendee)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestGetTicket_Missing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+collectionTickets, mtest.FirstBatch))

		ticket, err := newMockStore(mt).GetTicket(context.Background(), "t-404")
		require.NoError(mt, err)
		assert.Nil(mt, ticket)
	})
}

func TestTicketsByEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes batch", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionTickets
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "t-1"}, {Key: "event_id", Value: "e-1"}, {Key: "used", Value: false}},
			bson.D{{Key: "_id", Value: "t-2"}, {Key: "event_id", Value: "e-1"}, {Key: "used", Value: true}},
		))

		tickets, err := newMockStore(mt).TicketsByEvent(context.Background(), "e-1")
		require.NoError(mt, err)
		require.Len(mt, tickets, 2)
		assert.Equal(mt, "t-1", tickets[0].Id)
		assert.True(mt, tickets[1].Used)
	})
}
