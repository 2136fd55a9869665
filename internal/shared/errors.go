package shared

import "errors"

var (
	// ErrContextMissing indicates a programming error: the request scope was
	// read outside a request, or before tenant resolution ran.
	ErrContextMissing = errors.New("request scope missing from context")
)
