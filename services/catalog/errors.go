package catalog

import "errors"

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrInvalidVideo  = errors.New("invalid video")
)
