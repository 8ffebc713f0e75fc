package share

import (
	"fmt"

	"daapshare/internal/services"
)

// MissingFieldError reports a meta field name with no tag mapping. The items
// handler logs and skips these.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("no tag for meta field %q", e.Name)
}

func (e *MissingFieldError) Unwrap() error { return services.ErrValidation }

// NotFoundError reports a file request for an item id the catalog does not hold.
type NotFoundError struct {
	ItemID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ItemID)
}

func (e *NotFoundError) Unwrap() error { return services.ErrNotFound }
