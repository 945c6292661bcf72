package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidMode is returned for a banding mode other than protect or verify.
	ErrInvalidMode = errors.New("invalid mode: must be protect or verify")

	// ErrInvalidTimeout is returned when a provider timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxTextLength is returned when the text cap is not positive.
	ErrInvalidMaxTextLength = errors.New("invalid max text length: must be positive")

	// ErrInvalidMaxRequestBytes is returned when the server body limit is not positive.
	ErrInvalidMaxRequestBytes = errors.New("invalid max request size: must be positive")

	// ErrInvalidBlendWeights is returned when fusion weights fail validation.
	ErrInvalidBlendWeights = errors.New("invalid fusion weights")

	// ErrInvalidEndpoint is returned when a provider endpoint is not an http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid provider endpoint: must be an http or https URL")
)
