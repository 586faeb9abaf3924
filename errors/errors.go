package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and monitoring.
type Category string

const (
	CategoryDecode    Category = "decode"
	CategoryTransform Category = "transform"
	CategoryCache     Category = "cache"
	CategoryDisplay   Category = "display"
	CategoryConfig    Category = "config"
	CategoryInput     Category = "input"
)

// OpError is the structured error type used throughout the module.
type OpError struct {
	Category Category
	Op       string // operation name
	Err      error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// New creates an OpError.
func New(category Category, op string, err error) *OpError {
	return &OpError{Category: category, Op: op, Err: err}
}

// Wrap wraps an existing error with context.  Returns nil for a nil err.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrEmptyInput        = errors.New("empty input")
	ErrImageTooLarge     = errors.New("image exceeds size limit")
	ErrQueueFull         = errors.New("animation build queue full")
	ErrNoAnimator        = errors.New("no animator configured")
	ErrPoolStopped       = errors.New("animation build pool stopped")
)
