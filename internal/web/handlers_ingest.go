package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/halcyonfield/pipeboard/internal/ingest"
	"github.com/halcyonfield/pipeboard/internal/store"
)

// ingestRequest is the POST /api/batches payload.
type ingestRequest struct {
	// Source labels where the batch came from, e.g. "sheet-sync".
	Source  string          `json:"source"`
	Records []ingest.Record `json:"records"`
}

// handleIngestBatch validates and admits a batch of tokenized records. The
// response is the batch summary: counts, per-row rejections with reasons,
// and how many admitted records carry an unmapped stage label.
func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBody)

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if s.cfg.Ingest.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Ingest.Timeout)
		defer cancel()
	}

	result, err := s.ingest.IngestBatch(ctx, req.Source, req.Records)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, result)
}

// handleListBatches returns the ingestion audit trail, newest first.
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50)

	batches, err := s.store.ListBatches(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if batches == nil {
		batches = []store.Batch{}
	}

	writeJSON(w, batchListResponse{Batches: batches, Count: len(batches)})
}

// handleBatchQueue returns the current state of the batch limiter.
// Used for monitoring and to check if the system can accept more batches.
func (s *Server) handleBatchQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.ingest.Limiter().Status())
}
