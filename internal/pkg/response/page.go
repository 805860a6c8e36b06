package response

import "github.com/nekogravitycat/directory-portal/internal/pkg/pagination"

// PageResponse is the standard wrapper for list endpoints.
type PageResponse[T any] struct {
	Items        []T   `json:"items"`
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	Total        int   `json:"total"`
	TotalPages   int   `json:"total_pages"`
	VisiblePages []int `json:"visible_pages"`
}

// NewPageResponse is a helper to quickly create a response. The page count
// and the visible page window are derived from total and pageSize.
func NewPageResponse[T any](items []T, page, pageSize, total int) PageResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	totalPages := pagination.TotalPages(total, pageSize)

	return PageResponse[T]{
		Items:        items,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
		TotalPages:   totalPages,
		VisiblePages: pagination.VisiblePages(page, totalPages, pagination.DefaultMaxVisible),
	}
}
