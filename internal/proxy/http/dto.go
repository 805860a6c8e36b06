package http

import (
	"encoding/json"

	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

// UpdateNameRequest is the payload for PATCH /api/proxy/user/name.
type UpdateNameRequest struct {
	UserID   yandex.ID `json:"userId"`
	NameData *NameData `json:"nameData"`
}

// NameData carries the new name, either a display string or a
// {first,last,middle} object. It is forwarded upstream untouched.
type NameData struct {
	Name json.RawMessage `json:"name"`
}

// DemoNameResponse is returned when the corporate API rejected a rename and
// the change was only acknowledged locally.
type DemoNameResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Warning string `json:"_warning"`
}

// UsersErrorResponse is the diagnostic body of a failed users listing.
type UsersErrorResponse struct {
	Error           string   `json:"error"`
	Details         string   `json:"details"`
	Troubleshooting []string `json:"troubleshooting,omitempty"`
	OriginalError   any      `json:"original_error,omitempty"`
}
