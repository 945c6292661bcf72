// Package normalize turns a caller request into the immutable AnalysisInput
// read by every analyzer.
//
// Normalization collapses whitespace, caps text length, repairs and
// canonicalizes URL candidates, and collects resource URLs from explicit
// lists or from HTML markup. Candidates that cannot be repaired into an
// http(s) URL with a host are skipped; they never produce an error.
package normalize
