package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
)

var (
	errMissingCategory = errors.New("missing category")
	errInvalidYear     = errors.New("year must be a positive integer")
)
