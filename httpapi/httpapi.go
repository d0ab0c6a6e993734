// Package httpapi is a thin chi-based HTTP front end for the analysis
// core: POST a JSON log path and settings, get back the computed Gains (or
// a structured error naming which sentinel kind failed), mirroring
// cmd/dacsrv/main.go's router setup and generichttp/motion's handler
// style. It performs no analysis itself — every request constructs a
// fresh analysis.AnalysisManager, consistent with the core's
// single-threaded, one-manager-per-experiment contract.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/nasa-jpl/sysid-core/analysis"
	"github.com/nasa-jpl/sysid-core/analysistype"
	"github.com/nasa-jpl/sysid-core/feedback"
	"github.com/nasa-jpl/sysid-core/filter"
	"github.com/nasa-jpl/sysid-core/jsonlog"
	"github.com/nasa-jpl/sysid-core/regression"
	"github.com/nasa-jpl/sysid-core/trackwidth"
)

// AnalyzeRequest is the POST /analyze body: the path to an experiment log
// on the server's filesystem, plus settings overriding analysis.DefaultSettings.
type AnalyzeRequest struct {
	Path     string           `json:"path"`
	Settings analysis.Settings `json:"settings"`
}

// errorResponse is the structured error body: a human-readable message
// plus the sentinel error kind's short name, when one is known.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewRouter builds the chi router exposing POST /analyze. logger is passed
// through to jsonlog.Load for each request's checksum log line; it may be
// nil.
func NewRouter(logger *log.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Post("/analyze", Analyze(logger))
	return r
}

// Analyze returns the POST /analyze handler.
func Analyze(logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := AnalyzeRequest{Settings: analysis.DefaultSettings()}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		defer r.Body.Close()

		if req.Path == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path is required"})
			return
		}

		manager, err := analysis.New(req.Path, req.Settings, logger)
		if err != nil {
			writeError(w, err)
			return
		}

		gains, err := manager.Calculate()
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, gains)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps a pipeline error back to an HTTP status and the sentinel
// kind's name, per spec's error-kind registry (spec.md §7).
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jsonlog.ErrIoError):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "io_error"})
	case errors.Is(err, jsonlog.ErrSchemaMismatch):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "schema_mismatch"})
	case errors.Is(err, analysistype.ErrUnknownAnalysisType):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "unknown_analysis_type"})
	case errors.Is(err, filter.ErrInsufficientData):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "insufficient_data"})
	case errors.Is(err, regression.ErrSingularNormalMatrix):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "singular_normal_matrix"})
	case errors.Is(err, feedback.ErrNonPhysicalPlant):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "non_physical_plant"})
	case errors.Is(err, feedback.ErrRiccatiDidNotConverge):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "riccati_did_not_converge"})
	case errors.Is(err, feedback.ErrUnknownPreset):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "unknown_preset"})
	case errors.Is(err, trackwidth.ErrZeroHeadingChange):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "zero_heading_change"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
