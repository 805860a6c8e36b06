package yandex

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an identifier that upstream sends either as a JSON number or a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Phone is the default phone record of a Yandex ID account.
type Phone struct {
	ID     ID     `json:"id"`
	Number string `json:"number"`
}

// LoginInfo is the personal-account shape returned by GET /info.
type LoginInfo struct {
	ID              ID       `json:"id"`
	Login           string   `json:"login"`
	ClientID        string   `json:"client_id"`
	DisplayName     string   `json:"display_name"`
	RealName        string   `json:"real_name"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Sex             string   `json:"sex"`
	DefaultEmail    string   `json:"default_email"`
	Emails          []string `json:"emails"`
	Birthday        string   `json:"birthday"`
	DefaultAvatarID string   `json:"default_avatar_id"`
	IsAvatarEmpty   bool     `json:"is_avatar_empty"`
	DefaultPhone    *Phone   `json:"default_phone"`
	PSUID           string   `json:"psuid"`
}

// DirectoryContacts is the contact block of a corporate user.
type DirectoryContacts struct {
	Birthday    string `json:"birthday"`
	Phone       string `json:"phone"`
	MobilePhone string `json:"mobile_phone"`
	Location    string `json:"location"`
}

// DirectoryUser is the corporate-directory shape. Name stays raw because
// upstream sends either a string or a {first,last,middle} object.
type DirectoryUser struct {
	ID           ID                 `json:"id"`
	Nickname     string             `json:"nickname"`
	Email        string             `json:"email"`
	Name         json.RawMessage    `json:"name"`
	Image        string             `json:"image"`
	Position     string             `json:"position"`
	DepartmentID ID                 `json:"department_id"`
	Gender       string             `json:"gender"`
	IsAdmin      bool               `json:"is_admin"`
	IsDismissed  bool               `json:"is_dismissed"`
	About        string             `json:"about"`
	Contacts     *DirectoryContacts `json:"contacts"`
	Warning      string             `json:"_warning"`
}

// DecodeLoginInfo parses a GET /info body.
func DecodeLoginInfo(data []byte) (LoginInfo, error) {
	var info LoginInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return LoginInfo{}, Error.New("decode login info: %v", err)
	}
	return info, nil
}
