package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrStoreNotFound = errors.New("shop not installed")
	ErrNoMainTheme   = errors.New("no main theme found")
	ErrAssetNotFound = errors.New("asset not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// RemoteError is a non-2xx response from the platform admin API
type RemoteError struct {
	Op     string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, e.Body)
}

// Is lets a 404 match ErrAssetNotFound
func (e *RemoteError) Is(target error) bool {
	return target == ErrAssetNotFound && e.Status == http.StatusNotFound
}

// IsNotFound reports whether err is a platform 404
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// RateLimitError is returned when a store exceeded its request window
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "Too many requests. Please wait a few seconds before trying again."
}

// InvalidInputError wraps ErrInvalidInput with a message
func InvalidInputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
