package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nao1215/riskscan/internal/fusion"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/normalize"
	"github.com/nao1215/riskscan/internal/pipeline"
)

// BatchRequest is the body of POST /api/v1/analyze/batch.
type BatchRequest struct {
	Requests []*model.Request `json:"requests"`
}

// BatchItem is one entry of a batch response.
type BatchItem struct {
	Index  int           `json:"index"`
	Report *model.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// BatchResponse is the body returned for a batch.
type BatchResponse struct {
	Results []BatchItem `json:"results"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	ModelEnabled  bool   `json:"model_enabled"`
	TrackerSource string `json:"tracker_source,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       s.version,
		ModelEnabled:  s.modelEnabled,
		TrackerSource: s.trackerSource,
	})
}

// analyze handles POST /api/v1/analyze.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req model.Request
	if status, msg := s.decode(w, r, &req); status != 0 {
		s.respondError(w, status, msg)
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), &req)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("analysis failed", "error", err)
		}
		s.respondError(w, status, msg)
		return
	}
	s.save(r.Context(), report)
	s.respondJSON(w, http.StatusOK, report)
}

// analyzeBatch handles POST /api/v1/analyze/batch.
func (s *Server) analyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if status, msg := s.decode(w, r, &req); status != 0 {
		s.respondError(w, status, msg)
		return
	}
	if len(req.Requests) == 0 {
		s.respondError(w, http.StatusBadRequest, "requests array is required")
		return
	}
	if len(req.Requests) > MaxBatchSize {
		s.respondError(w, http.StatusBadRequest, "too many requests in batch")
		return
	}
	for _, entry := range req.Requests {
		if entry == nil {
			s.respondError(w, http.StatusBadRequest, "batch entries must be objects")
			return
		}
	}

	bp := pipeline.NewBatchProcessor(s.analyzer,
		pipeline.WithConcurrency(s.batchSize),
		pipeline.WithBatchLogger(s.logger),
	)
	results, err := bp.ProcessBatch(r.Context(), req.Requests)
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "batch cancelled")
		return
	}

	resp := BatchResponse{Results: make([]BatchItem, len(results))}
	for i, res := range results {
		item := BatchItem{Index: res.Index, Report: res.Report}
		if res.Err != nil {
			_, item.Error = errorStatus(res.Err)
		} else {
			s.save(r.Context(), res.Report)
		}
		resp.Results[i] = item
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body. It returns a non-zero status on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) (int, string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, "request body too large"
		}
		return http.StatusBadRequest, "invalid request body"
	}
	return 0, ""
}

func (s *Server) save(ctx context.Context, report *model.Report) {
	if s.history == nil || report == nil {
		return
	}
	if _, err := s.history.Save(ctx, report); err != nil {
		s.logger.Warn("failed to save analysis", "report", report.ID, "error", err)
	}
}

// errorStatus maps engine errors to HTTP statuses and client messages.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, normalize.ErrNoUsableInput):
		return http.StatusBadRequest, "no usable text, URL or resource in request"
	case errors.Is(err, fusion.ErrUnknownMode):
		return http.StatusBadRequest, "unknown mode"
	case errors.Is(err, model.ErrUnknownInputType):
		return http.StatusBadRequest, "unknown input type"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "analysis cancelled"
	default:
		return http.StatusInternalServerError, "analysis failed"
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
