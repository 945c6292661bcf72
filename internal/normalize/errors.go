package normalize

import "errors"

var (
	// ErrNoUsableInput is returned when a request carries no text, URL or resource.
	ErrNoUsableInput = errors.New("no usable text, URL or resource in request")

	// ErrNilRequest is returned when Normalize is called without a request.
	ErrNilRequest = errors.New("request is nil")
)
