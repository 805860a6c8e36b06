package user

import (
	"context"

	"github.com/nekogravitycat/directory-portal/internal/directory"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// Directory is the part of the Directory Client the user module relies on.
type Directory interface {
	CurrentUser(ctx context.Context) (*directory.User, error)
	User(ctx context.Context, id string) (directory.Result, error)
	Users(ctx context.Context, page, perPage int, orgID string) (*directory.UserList, error)
	UpdateUserName(ctx context.Context, id string, name directory.NameValue) (directory.Result, error)
	DeleteUser(ctx context.Context, id string) error
}

// ClientFactory returns a Directory bound to one access token.
type ClientFactory func(token string) Directory

// DirectoryClients builds a fresh directory.Client per token.
func DirectoryClients(opts directory.Options) ClientFactory {
	return func(token string) Directory {
		return directory.NewClient(token, opts)
	}
}

// UserFilter defines options for listing organization users.
type UserFilter struct {
	OrgID string

	Page     int
	PageSize int
}

// Page is one page of organization users.
type Page struct {
	Users    []directory.User
	Page     int
	PageSize int
	Total    int
}
