package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/halcyonfield/pipeboard/internal/pipeline"
	"github.com/halcyonfield/pipeboard/internal/store"
)

// stageFilterAll is the dashboards' wildcard meaning "no stage filter".
// It is consumed here, at the HTTP boundary; nothing below this layer ever
// compares against it. The match is exact: "All" or "ALL" is treated as a
// (failing) canonical identifier, not as the wildcard.
const stageFilterAll = "all"

// handleListDeals returns the normalized deal snapshot, optionally filtered
// by canonical stage identifier and rep.
func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	filter := store.DealFilter{Rep: strings.TrimSpace(r.URL.Query().Get("rep"))}

	rawStage := strings.TrimSpace(r.URL.Query().Get("stage"))
	if rawStage != "" && rawStage != stageFilterAll {
		stage, ok := pipeline.ParseStage(rawStage)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", rawStage))
			return
		}
		filter.Stage = stage
	}

	deals, err := s.store.ListDeals(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if deals == nil {
		deals = []pipeline.Deal{}
	}

	writeJSON(w, dealListResponse{Deals: deals, Count: len(deals)})
}

// handleUnmappedLabels lists the raw stage labels that failed canonical
// mapping, most frequent first. This is the review queue for extending the
// alias table.
func (s *Server) handleUnmappedLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.store.UnmappedStageLabels(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if labels == nil {
		labels = []store.UnmappedLabel{}
	}

	writeJSON(w, unmappedLabelsResponse{Labels: labels, Count: len(labels)})
}
