package entity

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"evtickets/lib/validate"
)

const DefaultCountry = "BR"

type Address struct {
	LocationName string `json:"locationName" bson:"location_name" validate:"required"`
	Street       string `json:"street" bson:"street" validate:"required"`
	Number       string `json:"number" bson:"number" validate:"required"`
	Cep          string `json:"cep" bson:"cep" validate:"required"`
	Complement   string `json:"complement,omitempty" bson:"complement,omitempty"`
	Neighborhood string `json:"neighborhood" bson:"neighborhood" validate:"required"`
	City         string `json:"city" bson:"city" validate:"required"`
	State        string `json:"state" bson:"state" validate:"required"`
	Country      string `json:"country" bson:"country" validate:"required,country"`
}

type Event struct {
	Id          string    `json:"id" bson:"_id"`
	OrganizerId string    `json:"organizerId" bson:"organizer_id"`
	Title       string    `json:"title" bson:"title" validate:"required,max=200"`
	ImageUrl    string    `json:"imageUrl,omitempty" bson:"image_url,omitempty" validate:"omitempty,url"`
	Category    string    `json:"category" bson:"category" validate:"required"`
	StartDate   time.Time `json:"startDate" bson:"start_date" validate:"required"`
	EndDate     time.Time `json:"endDate" bson:"end_date" validate:"required"`
	Description string    `json:"description" bson:"description" validate:"required"`
	Address     *Address  `json:"address" bson:"address" validate:"required"`
	Guests      []string  `json:"guests" bson:"guests"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

func (e *Event) Bind(_ *http.Request) error {
	if e.Address != nil && strings.TrimSpace(e.Address.Country) == "" {
		e.Address.Country = DefaultCountry
	}
	if e.Guests == nil {
		e.Guests = []string{}
	}
	if err := validate.Struct(e); err != nil {
		return err
	}
	if !e.StartDate.Before(e.EndDate) {
		return errors.New("startDate must be before endDate")
	}
	return nil
}

// MyEvents groups the events a user organizes and the ones they attend.
type MyEvents struct {
	Created       []*Event `json:"createdEvents"`
	Participating []*Event `json:"participatingEvents"`
}
