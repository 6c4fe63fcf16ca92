package entity

import (
	"net/http"
	"strings"
	"time"

	"evtickets/lib/validate"
)

// Verification rejection reasons shown to scanning staff.
const (
	ReasonNotFound    = "not found"
	ReasonAlreadyUsed = "already used"
)

// Ticket grants one user entry to one event. Token is the redemption secret
// embedded in QRImage; Used flips from false to true exactly once.
type Ticket struct {
	Id        string     `json:"id" bson:"_id"`
	UserId    string     `json:"userId" bson:"user_id"`
	EventId   string     `json:"eventId" bson:"event_id"`
	Token     string     `json:"token" bson:"token"`
	QRImage   string     `json:"qrImage" bson:"qr_image"`
	Used      bool       `json:"used" bson:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty" bson:"used_at,omitempty"`
	CreatedAt time.Time  `json:"createdAt" bson:"created_at"`
}

type IssueRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
	EventId   string `json:"eventId" validate:"required"`
}

func (i *IssueRequest) Bind(_ *http.Request) error {
	i.UserEmail = strings.TrimSpace(i.UserEmail)
	i.EventId = strings.TrimSpace(i.EventId)
	return validate.Struct(i)
}

type VerifyRequest struct {
	Token string `json:"token" validate:"required,hexadecimal,min=32,max=256"`
}

func (v *VerifyRequest) Bind(_ *http.Request) error {
	v.Token = strings.ToLower(strings.TrimSpace(v.Token))
	return validate.Struct(v)
}

type VerifyResult struct {
	Valid   bool   `json:"valid"`
	UserId  string `json:"userId,omitempty"`
	EventId string `json:"eventId,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// TicketEntry is a ticket as listed to the event organizer.
type TicketEntry struct {
	TicketId  string     `json:"ticketId"`
	UserId    string     `json:"userId"`
	UserEmail string     `json:"userEmail"`
	QRImage   string     `json:"qrImage"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type TicketDetail struct {
	Ticket *Ticket `json:"ticket"`
	Event  *Event  `json:"event,omitempty"`
}
