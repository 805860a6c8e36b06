package directory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

const avatarURLTemplate = "https://avatars.yandex.net/get-yapic/%s/islands-200"

// AvatarURL returns the public 200px avatar URL, or "" without an avatar id.
func AvatarURL(avatarID string) string {
	if avatarID == "" {
		return ""
	}
	return fmt.Sprintf(avatarURLTemplate, avatarID)
}

// FromLoginInfo maps the personal-account shape.
func FromLoginInfo(info yandex.LoginInfo) User {
	fullName := info.RealName
	if fullName == "" && (info.FirstName != "" || info.LastName != "") {
		fullName = strings.TrimSpace(info.LastName + " " + info.FirstName)
	}

	u := User{
		ID:       info.ID.String(),
		Nickname: info.Login,
		Email:    info.DefaultEmail,
		Name:     ToStructured(fullName),
		Image:    AvatarURL(info.DefaultAvatarID),
		Position: info.DisplayName,
		Gender:   info.Sex,
	}

	var contacts Contacts
	contacts.Birthday = info.Birthday
	if info.DefaultPhone != nil {
		contacts.Phone = info.DefaultPhone.Number
	}
	if contacts != (Contacts{}) {
		u.Contacts = &contacts
	}

	return u
}

// FromDirectoryUser maps the corporate-directory shape. Fields pass through;
// a string name is split into its structured form.
func FromDirectoryUser(du yandex.DirectoryUser) User {
	u := User{
		ID:           du.ID.String(),
		Nickname:     du.Nickname,
		Email:        du.Email,
		Name:         decodeName(du.Name),
		Image:        du.Image,
		Position:     du.Position,
		DepartmentID: du.DepartmentID.String(),
		Gender:       du.Gender,
		IsAdmin:      du.IsAdmin,
		IsDismissed:  du.IsDismissed,
		About:        du.About,
		Warning:      du.Warning,
	}

	if du.Contacts != nil {
		u.Contacts = &Contacts{
			Birthday:    du.Contacts.Birthday,
			Phone:       du.Contacts.Phone,
			MobilePhone: du.Contacts.MobilePhone,
			Location:    du.Contacts.Location,
		}
	}

	return u
}

// decodeName never fails: an unreadable name becomes an empty structured name.
func decodeName(raw json.RawMessage) Name {
	if len(raw) == 0 {
		return Name{}
	}
	var v NameValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return Name{}
	}
	return v.Structured()
}
