// Package avatar serves resized Yandex avatars.
package avatar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/directory-portal/internal/pkg/apperror"
	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

const (
	MinSize     = 16
	MaxSize     = 400
	DefaultSize = 200

	// maxSourceBytes caps the downloaded original.
	maxSourceBytes = 8 << 20
)

var (
	ErrInvalidID   = apperror.New(http.StatusBadRequest, "avatar id is required")
	ErrInvalidSize = apperror.New(http.StatusBadRequest, "size must be between 16 and 400")
	ErrNotFound    = apperror.New(http.StatusNotFound, "avatar not found")
)

// Fetcher downloads original avatars. *yandex.Client implements it.
type Fetcher interface {
	Avatar(ctx context.Context, avatarID string) (io.ReadCloser, string, error)
}

// Service defines avatar operations.
type Service interface {
	Thumbnail(ctx context.Context, avatarID string, size int) ([]byte, error)
}

type service struct {
	fetcher   Fetcher
	processor *ImageProcessor
	log       *zap.Logger
}

// NewService creates a new avatar Service.
func NewService(fetcher Fetcher, processor *ImageProcessor, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		fetcher:   fetcher,
		processor: processor,
		log:       log.Named("avatar"),
	}
}

func (s *service) Thumbnail(ctx context.Context, avatarID string, size int) ([]byte, error) {
	avatarID = strings.Trim(avatarID, "/ ")
	if avatarID == "" || strings.Contains(avatarID, "..") {
		return nil, ErrInvalidID
	}
	if size < MinSize || size > MaxSize {
		return nil, ErrInvalidSize
	}

	body, _, err := s.fetcher.Avatar(ctx, avatarID)
	if err != nil {
		var upErr *yandex.UpstreamError
		if errors.As(err, &upErr) && upErr.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		s.log.Warn("failed to fetch avatar", zap.String("avatar_id", avatarID), zap.Error(err))
		return nil, apperror.Wrap(err, http.StatusBadGateway, "failed to fetch avatar")
	}
	defer body.Close()

	thumb, err := s.processor.Thumbnail(io.LimitReader(body, maxSourceBytes), size)
	if err != nil {
		s.log.Warn("failed to resize avatar", zap.String("avatar_id", avatarID), zap.Error(err))
		return nil, apperror.Wrap(err, http.StatusBadGateway, "avatar is not a valid image")
	}

	return thumb, nil
}
