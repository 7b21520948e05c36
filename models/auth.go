package models

import (
	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// SessionClaims is the payload of both member and admin session tokens.
// Member tokens carry the subscriber identity; admin tokens carry Role.
type SessionClaims struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
	Access    string `json:"access,omitempty"`
	jwt.RegisteredClaims
}

// SessionUser is the public view of a logged-in subscriber.
type SessionUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
