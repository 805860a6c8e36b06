package directory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nekogravitycat/directory-portal/internal/pkg/pagination"
	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

// Name is the structured form of a person's name.
type Name struct {
	First  string `json:"first"`
	Last   string `json:"last"`
	Middle string `json:"middle"`
}

// Contacts holds optional contact details of a user.
type Contacts struct {
	Birthday    string `json:"birthday,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MobilePhone string `json:"mobile_phone,omitempty"`
	Location    string `json:"location,omitempty"`
}

// User is the canonical user record. Name is always structured.
type User struct {
	ID           string    `json:"id"`
	Nickname     string    `json:"nickname,omitempty"`
	Email        string    `json:"email,omitempty"`
	Name         Name      `json:"name"`
	Image        string    `json:"image,omitempty"`
	Position     string    `json:"position,omitempty"`
	DepartmentID string    `json:"department_id,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	IsAdmin      bool      `json:"is_admin,omitempty"`
	IsDismissed  bool      `json:"is_dismissed,omitempty"`
	About        string    `json:"about,omitempty"`
	Contacts     *Contacts `json:"contacts,omitempty"`

	// Warning is set only on records produced by a fallback path.
	Warning string `json:"_warning,omitempty"`
}

// Result is either an authoritative record or a degraded one carrying the
// reason it could not be read or written through the corporate API.
type Result struct {
	User     User
	Reason   string
	degraded bool
}

// Authoritative wraps a record that came from the corporate API or accurate self-data.
func Authoritative(u User) Result {
	u.Warning = ""
	return Result{User: u}
}

// Degraded wraps a record synthesized by a fallback path.
func Degraded(u User, reason string) Result {
	u.Warning = reason
	return Result{User: u, Reason: reason, degraded: true}
}

// IsDegraded reports whether the record came from a fallback path.
func (r Result) IsDegraded() bool {
	return r.degraded
}

// NameValue holds a name as it appears on the wire: either a display string
// or a structured object.
type NameValue struct {
	text       string
	parts      Name
	structured bool
}

// NameText builds a NameValue from a display string.
func NameText(s string) NameValue {
	return NameValue{text: s}
}

// NameParts builds a NameValue from a structured name.
func NameParts(n Name) NameValue {
	return NameValue{parts: n, structured: true}
}

// IsStructured reports whether the value arrived as an object.
func (v NameValue) IsStructured() bool {
	return v.structured
}

// Structured returns the structured form, splitting a display string if needed.
func (v NameValue) Structured() Name {
	if v.structured {
		return v.parts
	}
	return ToStructured(v.text)
}

// Display returns the single-string form.
func (v NameValue) Display() string {
	if v.structured {
		return ToDisplayString(v.parts)
	}
	return v.text
}

func (v *NameValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = NameValue{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = NameText(s)
		return nil
	case b[0] == '{':
		var n Name
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*v = NameParts(n)
		return nil
	default:
		return fmt.Errorf("name must be a string or an object, got %s", b)
	}
}

func (v NameValue) MarshalJSON() ([]byte, error) {
	if v.structured {
		return json.Marshal(v.parts)
	}
	return json.Marshal(v.text)
}

// UserList is one page of organization users. The per-page value is read
// from either "per_page" or "perPage" on ingress.
type UserList struct {
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Total   int    `json:"total"`
	Users   []User `json:"users"`
}

func (l *UserList) UnmarshalJSON(b []byte) error {
	var raw struct {
		Page         int                    `json:"page"`
		PerPage      int                    `json:"per_page"`
		PerPageCamel int                    `json:"perPage"`
		Total        int                    `json:"total"`
		Users        []yandex.DirectoryUser `json:"users"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	perPage := raw.PerPage
	if perPage == 0 {
		perPage = raw.PerPageCamel
	}

	users := make([]User, 0, len(raw.Users))
	for _, du := range raw.Users {
		users = append(users, FromDirectoryUser(du))
	}

	*l = UserList{
		Page:    raw.Page,
		PerPage: perPage,
		Total:   raw.Total,
		Users:   users,
	}
	return nil
}

// TotalPages returns ceil(total / per-page), using fallbackPerPage when the
// response carried no per-page value.
func (l *UserList) TotalPages(fallbackPerPage int) int {
	perPage := l.PerPage
	if perPage <= 0 {
		perPage = fallbackPerPage
	}
	return pagination.TotalPages(l.Total, perPage)
}
