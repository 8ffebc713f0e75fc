package dmap

import (
	"errors"
	"fmt"

	"daapshare/internal/services"
)

var (
	// ErrTruncated reports a frame whose header or body runs past the input.
	ErrTruncated = errors.New("truncated tag frame")
	// ErrInvalidTag reports a tag that is not exactly four ASCII bytes.
	ErrInvalidTag = errors.New("invalid tag")
)

// UnknownTagError is returned when a tag has no registry entry.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tag %q", e.Tag)
}

// Unwrap lets callers classify the failure as an encoding error.
func (e *UnknownTagError) Unwrap() error {
	return services.ErrEncoding
}

// ValueKindError is returned when a node's value does not fit the kind the
// registry declares for its tag, e.g. children under an integer tag.
type ValueKindError struct {
	Tag   string
	Kind  Kind
	Value string
}

func (e *ValueKindError) Error() string {
	return fmt.Sprintf("tag %q of kind %s cannot hold a %s value", e.Tag, e.Kind, e.Value)
}

func (e *ValueKindError) Unwrap() error {
	return services.ErrEncoding
}
