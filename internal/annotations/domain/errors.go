package domain

import "errors"

var (
	ErrEmptyText          = errors.New("annotation text is required")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrUnknownBody        = errors.New("unknown celestial body")
	ErrNotAuthenticated   = errors.New("sign in to leave a discovery")
	ErrRateLimited        = errors.New("too many discoveries, slow down")
)
