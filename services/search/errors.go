package search

import "errors"

var (
	// ErrValidation marks a request whose shape cannot be searched. Wrap
	// failures with InvalidRequest to match it.
	ErrValidation = errors.New("invalid search request")
	// ErrStorageUnavailable marks a collection that could not be read in time.
	ErrStorageUnavailable = errors.New("search storage unavailable")
	// ErrSearchFailed is the only error Search returns for execution failures.
	ErrSearchFailed = errors.New("search execution failed")
	// ErrNoFeaturedVideo is returned by Featured when the collection is empty.
	ErrNoFeaturedVideo = errors.New("featured video not found")
)

type executionError struct {
	cause error
}

func (e *executionError) Error() string {
	return ErrSearchFailed.Error() + ": " + e.cause.Error()
}

func (e *executionError) Is(target error) bool {
	return target == ErrSearchFailed || target == ErrStorageUnavailable
}

func (e *executionError) Unwrap() error {
	return e.cause
}

type validationError struct {
	cause error
}

// InvalidRequest marks err as a validation failure. The message of err is kept as is.
func InvalidRequest(err error) error {
	return &validationError{cause: err}
}

func (e *validationError) Error() string {
	return e.cause.Error()
}

func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *validationError) Unwrap() error {
	return e.cause
}
