// Package entity defines domain types shared across the application.
package entity

// Identity is an account known to the identity provider.
type Identity struct {
	Uid   string `json:"uid"`
	Email string `json:"email,omitempty"`
}
