package download

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution marks failures while listing variants.
	ErrResolution = errors.New("resolution failed")
	// ErrFetch marks failures while downloading.
	ErrFetch = errors.New("download failed")
	// ErrCanceled marks a transfer stopped by its context.
	ErrCanceled = errors.New("download canceled")
)

// ResolutionError carries the URL that could not be resolved.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.URL, e.Err)
}

// Unwrap exposes both ErrResolution and the cause.
func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolution, e.Err}
}

// FetchError carries the URL whose transfer failed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes both ErrFetch and the cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}
