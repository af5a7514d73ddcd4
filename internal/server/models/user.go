// Package models defines the data model shared by the server-side services
// and repositories.
package models

import "time"

// User is the identity record as stored by the credential store. It is the
// only view that carries the password hash; never hand it to transport code
// directly, project it through CurrentUser instead.
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Language     string
	Description  string
	Avatar       string
	TelegramID   string
	CreatedAt    time.Time
}

// CurrentUser is the public-safe projection of User returned to callers
// after successful session validation. No password material.
type CurrentUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	TelegramID  string `json:"telegram_id,omitempty"`
}

// Current projects a stored identity into its public-safe view.
func (u *User) Current() *CurrentUser {
	return &CurrentUser{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Language:    u.Language,
		Description: u.Description,
		Avatar:      u.Avatar,
		TelegramID:  u.TelegramID,
	}
}

// AuthenticatedUser is the minimal identity projection embedded in a token
// claim set. PasswordHash binds the token to the exact hash in force at
// issuance time.
type AuthenticatedUser struct {
	Username     string
	PasswordHash string
}

// ResetRequest correlates a username/email pair during the reset-request
// phase. PasswordHash is the hash stored at request time and becomes the
// issued token's fingerprint; Token is filled in once one is issued.
type ResetRequest struct {
	Username     string
	Email        string
	PasswordHash string
	Token        string
}

// Credentials is the transient login form. Never persisted.
type Credentials struct {
	Username string
	Password string
}
