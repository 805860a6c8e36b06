package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/directory-portal/internal/directory"
	"github.com/nekogravitycat/directory-portal/internal/pkg/apperror"
)

// Service defines the user screens built on the directory.
type Service interface {
	Me(ctx context.Context, token string) (*directory.User, error)
	List(ctx context.Context, token string, filter UserFilter) (*Page, error)
	GetByID(ctx context.Context, token, id string) (directory.Result, error)
	Rename(ctx context.Context, token, id string, name directory.NameValue) (directory.Result, error)
	Delete(ctx context.Context, token, id string) error
}

// Service errors used to communicate validation failures.
var (
	ErrIDRequired   = apperror.New(http.StatusBadRequest, "user id is required")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "name is required")
)

type service struct {
	clients ClientFactory
	log     *zap.Logger
}

// NewService creates a new user Service. Every call gets its own client for
// the caller's token.
func NewService(clients ClientFactory, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		clients: clients,
		log:     log.Named("user"),
	}
}

func (s *service) Me(ctx context.Context, token string) (*directory.User, error) {
	u, err := s.clients(token).CurrentUser(ctx)
	if err != nil {
		return nil, fromDirectory(err)
	}
	return u, nil
}

func (s *service) List(ctx context.Context, token string, filter UserFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}

	list, err := s.clients(token).Users(ctx, filter.Page, filter.PageSize, filter.OrgID)
	if err != nil {
		return nil, fromDirectory(err)
	}

	page := list.Page
	if page < 1 {
		page = filter.Page
	}
	pageSize := list.PerPage
	if pageSize < 1 {
		pageSize = filter.PageSize
	}

	return &Page{
		Users:    list.Users,
		Page:     page,
		PageSize: pageSize,
		Total:    list.Total,
	}, nil
}

func (s *service) GetByID(ctx context.Context, token, id string) (directory.Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return directory.Result{}, ErrIDRequired
	}

	res, err := s.clients(token).User(ctx, id)
	if err != nil {
		return directory.Result{}, fromDirectory(err)
	}
	if res.IsDegraded() {
		s.log.Info("serving placeholder user", zap.String("user_id", id), zap.String("reason", res.Reason))
	}
	return res, nil
}

func (s *service) Rename(ctx context.Context, token, id string, name directory.NameValue) (directory.Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return directory.Result{}, ErrIDRequired
	}
	if strings.TrimSpace(name.Display()) == "" {
		return directory.Result{}, ErrNameRequired
	}

	res, err := s.clients(token).UpdateUserName(ctx, id, name)
	if err != nil {
		return directory.Result{}, fromDirectory(err)
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, token, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrIDRequired
	}

	if err := s.clients(token).DeleteUser(ctx, id); err != nil {
		return fromDirectory(err)
	}
	return nil
}

// fromDirectory maps a client failure onto an HTTP error. Structured
// upstream payloads are relayed as the response body.
func fromDirectory(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	de := directory.Classify(err)
	code := de.Kind.HTTPStatus()
	if de.Kind == directory.KindOther && de.Status >= http.StatusBadRequest {
		code = de.Status
	}

	out := apperror.Wrap(err, code, de.Message)
	if len(de.Payload) > 0 {
		out.Body = de.Payload
	}
	return out
}
