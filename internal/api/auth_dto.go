package api

import (
	"time"

	"github.com/nekogravitycat/directory-portal/internal/auth"
)

// SessionUser is the public part of the signed-in user.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// SessionResponse is the response for GET /api/auth/session.
type SessionResponse struct {
	User        SessionUser `json:"user"`
	AccessToken string      `json:"accessToken"`
	Expires     time.Time   `json:"expires"`
}

// NewSessionResponse converts an auth.Session to the response used by the API.
func NewSessionResponse(s auth.Session) SessionResponse {
	return SessionResponse{
		User: SessionUser{
			ID:    s.UserID,
			Name:  s.Name,
			Email: s.Email,
			Image: s.Image,
		},
		AccessToken: s.AccessToken,
		Expires:     s.ExpiresAt.UTC(),
	}
}
