package auth

import (
	"strings"

	"golang.org/x/oauth2"
)

// YandexEndpoint is the Yandex ID OAuth2 endpoint.
var YandexEndpoint = oauth2.Endpoint{
	AuthURL:   "https://oauth.yandex.ru/authorize",
	TokenURL:  "https://oauth.yandex.ru/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// DefaultScopes covers the personal profile and the Yandex 360 directory.
var DefaultScopes = []string{
	"login:email",
	"login:info",
	"login:birthday",

	"directory:read",
	"directory:write",
	"organization:read",
	"organization:write",

	"department:read",
	"department:write",
	"groups:read",
	"groups:write",

	"domains:read",
	"domains:write",
	"dns:write",

	"contacts:read",
	"contacts:write",
}

// OAuthConfig holds the registered application credentials.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Endpoint overrides YandexEndpoint when its AuthURL is set.
	Endpoint oauth2.Endpoint
}

// NewYandexOAuth builds the authorization-code flow config for Yandex ID.
func NewYandexOAuth(cfg OAuthConfig) *oauth2.Config {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	endpoint := YandexEndpoint
	if cfg.Endpoint.AuthURL != "" {
		endpoint = cfg.Endpoint
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}
}

// ParseScopes splits a space or comma separated scope list.
func ParseScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
}
