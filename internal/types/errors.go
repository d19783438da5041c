package types

import "errors"

// Domain specific errors shared between services and the HTTP layer.
var (
	ErrNotFound   = errors.New("requested item not found")
	ErrBadRequest = errors.New("bad request")
)
