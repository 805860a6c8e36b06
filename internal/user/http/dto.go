package http

import (
	"errors"
	"strings"

	"github.com/nekogravitycat/directory-portal/internal/directory"
	"github.com/nekogravitycat/directory-portal/internal/pkg/request"
)

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.ListParams
	OrgID string `form:"org_id"`
}

// Validate performs custom validation for ListUsersRequest.
func (r *ListUsersRequest) Validate() error {
	r.OrgID = strings.TrimSpace(r.OrgID)
	return nil
}

// NameResponse is the structured name of a user.
type NameResponse struct {
	First  string `json:"first"`
	Last   string `json:"last"`
	Middle string `json:"middle"`
}

// ContactsResponse holds the optional contact details.
type ContactsResponse struct {
	Birthday    string `json:"birthday,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MobilePhone string `json:"mobile_phone,omitempty"`
	Location    string `json:"location,omitempty"`
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID           string            `json:"id"`
	Nickname     string            `json:"nickname,omitempty"`
	Email        string            `json:"email,omitempty"`
	Name         NameResponse      `json:"name"`
	DisplayName  string            `json:"display_name"`
	Image        string            `json:"image,omitempty"`
	Position     string            `json:"position,omitempty"`
	DepartmentID string            `json:"department_id,omitempty"`
	Gender       string            `json:"gender,omitempty"`
	IsAdmin      bool              `json:"is_admin"`
	IsDismissed  bool              `json:"is_dismissed"`
	About        string            `json:"about,omitempty"`
	Contacts     *ContactsResponse `json:"contacts,omitempty"`
	Warning      string            `json:"_warning,omitempty"`
}

// NewUserResponse converts directory.User to UserResponse used by the API.
func NewUserResponse(u *directory.User) UserResponse {
	resp := UserResponse{
		ID:       u.ID,
		Nickname: u.Nickname,
		Email:    u.Email,
		Name: NameResponse{
			First:  u.Name.First,
			Last:   u.Name.Last,
			Middle: u.Name.Middle,
		},
		DisplayName:  directory.ToDisplayString(u.Name),
		Image:        u.Image,
		Position:     u.Position,
		DepartmentID: u.DepartmentID,
		Gender:       u.Gender,
		IsAdmin:      u.IsAdmin,
		IsDismissed:  u.IsDismissed,
		About:        u.About,
		Warning:      u.Warning,
	}

	if u.Contacts != nil {
		resp.Contacts = &ContactsResponse{
			Birthday:    u.Contacts.Birthday,
			Phone:       u.Contacts.Phone,
			MobilePhone: u.Contacts.MobilePhone,
			Location:    u.Contacts.Location,
		}
	}

	return resp
}

// MeResponse is the response for GET /v1/me.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// UserResultResponse wraps a single user read or write. Degraded records
// come from a fallback path and are not what the directory holds.
type UserResultResponse struct {
	User     UserResponse `json:"user"`
	Degraded bool         `json:"degraded"`
}

// NewUserResultResponse converts a directory.Result.
func NewUserResultResponse(r directory.Result) UserResultResponse {
	return UserResultResponse{
		User:     NewUserResponse(&r.User),
		Degraded: r.IsDegraded(),
	}
}

// UpdateNameRequest is the payload for PATCH /v1/users/:id/name. The name is
// either a display string or a {first,last,middle} object.
type UpdateNameRequest struct {
	Name *directory.NameValue `json:"name"`
}

// Validate performs custom validation for UpdateNameRequest.
func (r *UpdateNameRequest) Validate() error {
	if r.Name == nil || strings.TrimSpace(r.Name.Display()) == "" {
		return errors.New("name is required")
	}
	return nil
}
