// Package models defines the storefront wire types shared by the transport,
// the state store and the services.
package models

import "time"

// User is the profile record returned by the backend. The client never
// merges fields into it: every update replaces the whole value.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// UserCreate is the registration payload.
type UserCreate struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserUpdate carries the fields of a profile update; nil fields are omitted
// from the request.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Credentials identify a user at login. When only Email is set the email
// login endpoint is used.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// UsesEmail reports whether the credentials target the email login endpoint.
func (c Credentials) UsesEmail() bool {
	return c.Username == "" && c.Email != ""
}

// Tokens is the token pair issued by login and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
