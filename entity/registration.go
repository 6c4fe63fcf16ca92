package entity

import "time"

// Registration links an attendee to an event once a ticket has been issued.
type Registration struct {
	UserId    string    `json:"userId" bson:"user_id"`
	EventId   string    `json:"eventId" bson:"event_id"`
	TicketId  string    `json:"ticketId" bson:"ticket_id"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
