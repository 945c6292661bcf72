// Package provider holds the HTTP clients for the optional external services:
// an OCR endpoint that extracts text from images and an OpenAI-compatible
// chat-completions endpoint that returns a model risk assessment.
//
// Each call runs under its own timeout. Callers treat every error from this
// package as a degradation signal and continue with heuristic results.
// The model assessor only ever receives PII-masked text.
package provider
