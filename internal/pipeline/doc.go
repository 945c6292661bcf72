// Package pipeline runs a content risk analysis as an ordered list of steps.
//
// A request flows through OCR (image input only), normalization, the four
// independent analyzers, image metadata inspection, the optional model
// assessment, and fusion. Steps record degraded external calls as report
// warnings; the only error that stops an analysis is
// normalize.ErrNoUsableInput (or context cancellation).
//
// Engine wires the steps together from analyzer options, and BatchProcessor
// analyzes many requests with bounded concurrency.
package pipeline
