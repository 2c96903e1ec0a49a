package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Tagged with a stable code clients and support staff can reference
//
// The error flow:
//  1. Handler encounters an error from the ingest service or the store
//  2. Calls s.respondError(w, r, err)
//  3. The error is resolved against the sentinel table below via errors.Is
//  4. Technical error + context is logged with request ID for correlation
//  5. The mapped status and JSON body go to the client; unmatched errors
//     collapse into a generic 500 so internals never leak

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/halcyonfield/pipeboard/internal/ingest"
	"github.com/halcyonfield/pipeboard/internal/overlay"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Error, Action) fields.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// errorMapping pairs a sentinel error with its HTTP status and client body.
type errorMapping struct {
	target error
	status int
	body   ErrorResponse
}

// errorMappings resolves domain sentinel errors to responses. Matching uses
// errors.Is, so wrapped errors still land on their sentinel. The first match
// wins.
//
// Codes are grouped by category: ING for the ingestion boundary, OVL for
// overlay state, ERR000 for the unmatched fallback.
var errorMappings = []errorMapping{
	{
		target: ingest.ErrEmptyBatch,
		status: http.StatusUnprocessableEntity,
		body: ErrorResponse{
			Error:  "Batch contained no records",
			Action: "Send at least one record per batch",
			Code:   "ING001",
		},
	},
	{
		target: ingest.ErrBatchTooLarge,
		status: http.StatusRequestEntityTooLarge,
		body: ErrorResponse{
			Error:  "Batch exceeds the record limit",
			Action: "Split the batch into smaller chunks",
			Code:   "ING002",
		},
	},
	{
		target: ingest.ErrTooManyBatches,
		status: http.StatusTooManyRequests,
		body: ErrorResponse{
			Error:  "Too many batches are being processed",
			Action: "Wait a moment and resend the batch",
			Code:   "ING003",
		},
	},
	{
		target: overlay.ErrOverrideRange,
		status: http.StatusUnprocessableEntity,
		body: ErrorResponse{
			Error:  "A probability override is outside the 0 to 1 range",
			Action: "Overrides use the same scale as stage defaults",
			Code:   "OVL001",
		},
	},
	{
		target: overlay.ErrSchemaVersion,
		status: http.StatusConflict,
		body: ErrorResponse{
			Error:  "The view's saved state uses an unsupported layout version",
			Action: "Upgrade the service before editing this view",
			Code:   "OVL002",
		},
	},
	{
		target: overlay.ErrEmptyDealID,
		status: http.StatusUnprocessableEntity,
		body: ErrorResponse{
			Error:  "A board entry references an empty deal id",
			Action: "Every order, deleted, and override entry needs a deal id",
			Code:   "OVL003",
		},
	},
	{
		target: overlay.ErrDuplicateDealID,
		status: http.StatusUnprocessableEntity,
		body: ErrorResponse{
			Error:  "The order list names a deal more than once",
			Action: "List each deal id at most once",
			Code:   "OVL004",
		},
	},
}

// defaultErrorBody is returned when no sentinel matches (ERR000). Support
// staff should check the logs for the original technical error when a
// client reports ERR000.
var defaultErrorBody = ErrorResponse{
	Error:  "An unexpected error occurred",
	Action: "Please try again or contact support",
	Code:   "ERR000",
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side with the request ID for
// correlation and writes the mapped status and JSON body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", body.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "30")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// mapError resolves err against the sentinel table, falling back to a
// generic 500 body that exposes nothing about internals.
func mapError(err error) (int, ErrorResponse) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.body
		}
	}
	return http.StatusInternalServerError, defaultErrorBody
}
