// Package server exposes the analysis engine over HTTP.
//
// Routes:
//
//	POST /api/v1/analyze        analyze one request
//	POST /api/v1/analyze/batch  analyze up to MaxBatchSize requests
//	GET  /healthz               liveness and engine configuration
//
// A request without usable text, URL or resource yields 400, an oversized
// body 413. Degraded OCR or model calls still return 200 with warnings.
package server
