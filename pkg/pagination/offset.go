package pagination

import "fmt"

// OffsetRequest represents an offset-based pagination request
type OffsetRequest struct {
	Page int `json:"page" query:"page"`
	Size int `json:"size" query:"size"`
}

// Validate rejects negative values and normalizes missing or oversized ones.
func (r *OffsetRequest) Validate() error {
	if r.Page < 0 || r.Size < 0 {
		return fmt.Errorf("page and size must not be negative, got %d and %d", r.Page, r.Size)
	}
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Size == 0 {
		r.Size = PageDefaultSize
	}
	if r.Size > PageMaxSize {
		r.Size = PageMaxSize
	}
	return nil
}

func (r OffsetRequest) Offset() int {
	return (r.Page - 1) * r.Size
}

// Fetch is the number of items to request so that HasMore can be decided without a count.
func (r OffsetRequest) Fetch() int {
	return r.Size + 1
}

// OffsetResult represents one page of offset-based results
type OffsetResult[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasMore bool `json:"has_more"`
}

// NewOffsetResult trims items fetched with Fetch to the page size.
func NewOffsetResult[T any](items []T, req OffsetRequest) *OffsetResult[T] {
	hasMore := len(items) > req.Size
	if hasMore {
		items = items[:req.Size]
	}
	if items == nil {
		items = []T{}
	}

	return &OffsetResult[T]{
		Items:   items,
		Page:    req.Page,
		Size:    req.Size,
		HasMore: hasMore,
	}
}
