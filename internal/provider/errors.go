package provider

import "errors"

var (
	// ErrNotConfigured is returned when a client has no endpoint.
	ErrNotConfigured = errors.New("provider endpoint is not configured")

	// ErrUpstreamStatus is returned for non-2xx responses.
	ErrUpstreamStatus = errors.New("provider returned an error status")

	// ErrEmptyResponse is returned when a provider answers without content.
	ErrEmptyResponse = errors.New("provider returned an empty response")

	// ErrMalformedPayload is returned when no JSON object can be recovered
	// from a model reply.
	ErrMalformedPayload = errors.New("provider returned a malformed payload")
)
