package entity

import (
	"net/http"
	"strings"
	"time"

	"evtickets/lib/validate"
)

// Role controls what a user may do. Exactly two roles exist; an empty value
// stored by older records reads as RoleAttendee.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
)

func (r Role) Normalize() Role {
	if r == "" {
		return RoleAttendee
	}
	return r
}

func (r Role) IsValid() bool {
	switch r.Normalize() {
	case RoleAttendee, RoleOrganizer:
		return true
	}
	return false
}

// Toggle returns the other role; ok is false for an unknown role.
func (r Role) Toggle() (Role, bool) {
	switch r.Normalize() {
	case RoleAttendee:
		return RoleOrganizer, true
	case RoleOrganizer:
		return RoleAttendee, true
	}
	return r, false
}

// User is the profile kept next to the identity provider account; Id is the provider uid.
type User struct {
	Id        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name" validate:"required,max=120"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,phone_br"`
	Cpf       string    `json:"cpf" bson:"cpf" validate:"required,cpf"`
	BirthDate string    `json:"birthDate" bson:"birth_date" validate:"required,adult"`
	Role      Role      `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

func (u *User) Bind(_ *http.Request) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return validate.Struct(u)
}

func (u *User) IsOrganizer() bool {
	return u.Role.Normalize() == RoleOrganizer
}
