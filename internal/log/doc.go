// Package log provides secure logging built on the standard slog package.
//
// SecureHandler wraps any slog.Handler and masks:
//   - provider credentials and auth headers (Authorization, X-Api-Key, api_key)
//   - submitted content under keys such as content, text and image
//   - values that look like bearer tokens, JWTs or API keys
//   - emails, phone numbers, SSNs and card numbers inside any string value
//
// Even in verbose mode, submitted text and secrets never reach log output.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
