package request

import (
	"errors"
	"strings"
)

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required"`
}

// Validate trims the ID and rejects blank ones.
func (r *ByIDRequest) Validate() error {
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

// ListParams holds the common pagination query parameters.
type ListParams struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"per_page" binding:"omitempty,min=1,max=1000"`
}

// Normalize fills in defaults for missing values.
func (p *ListParams) Normalize(defaultPageSize int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
}
