package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/halcyonfield/pipeboard/internal/overlay"
	"github.com/halcyonfield/pipeboard/internal/store"
)

// maxViewNameLength bounds client-chosen view names.
const maxViewNameLength = 128

// boardResponse is the merged board for one view.
type boardResponse struct {
	View    string               `json:"view"`
	Entries []overlay.BoardEntry `json:"entries"`
	Totals  boardTotals          `json:"totals"`
}

// boardTotals summarize the visible entries only. Hidden entries stay on
// the response for audit but never reach the numbers.
type boardTotals struct {
	Count       int     `json:"count"`
	ValueSum    float64 `json:"value_sum"`
	WeightedSum float64 `json:"weighted_sum"`
}

// saveBoardRequest is the PUT /api/board/{view} payload: the complete
// overlay for the view as one atomic unit.
type saveBoardRequest struct {
	Order     []string           `json:"order"`
	Deleted   []string           `json:"deleted"`
	Overrides map[string]float64 `json:"overrides"`
}

// saveBoardResponse acknowledges a committed save. Revision identifies the
// write; when two clients race, the board's revision shows which one won.
type saveBoardResponse struct {
	View     string `json:"view"`
	Revision string `json:"revision"`
	Entries  int    `json:"entries"`
}

// handleBoard merges the live deal snapshot with the view's overlay and
// returns the ordered board plus totals over the visible entries.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	view, err := viewName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	deals, err := s.store.ListDeals(r.Context(), store.DealFilter{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	st, err := s.store.LoadOverlay(r.Context(), view)
	if err != nil {
		s.recordOverlayLoad("failed")
		s.respondError(w, r, err)
		return
	}
	s.recordOverlayLoad("ok")

	start := time.Now()
	entries := overlay.Merge(deals, st)
	s.recordMergeDuration(time.Since(start).Seconds())

	var totals boardTotals
	for _, e := range entries {
		if !e.Visible {
			continue
		}
		totals.Count++
		totals.ValueSum += e.Deal.Value
		totals.WeightedSum += e.Deal.Value * e.Probability
	}

	if entries == nil {
		entries = []overlay.BoardEntry{}
	}
	writeJSON(w, boardResponse{View: view, Entries: entries, Totals: totals})
}

// handleSaveBoard replaces the view's overlay with the submitted state.
// Validation runs before the store is touched: an out-of-range override
// fails the whole save and the prior state stays intact.
func (s *Server) handleSaveBoard(w http.ResponseWriter, r *http.Request) {
	view, err := viewName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req saveBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	st, err := overlay.BuildState(req.Order, req.Deleted, req.Overrides)
	if err != nil {
		s.recordOverlaySave("rejected")
		s.respondError(w, r, err)
		return
	}

	revision, err := s.store.SaveOverlay(r.Context(), view, st)
	if err != nil {
		s.recordOverlaySave("failed")
		s.respondError(w, r, err)
		return
	}
	s.recordOverlaySave("committed")

	writeJSON(w, saveBoardResponse{View: view, Revision: revision, Entries: len(st.Entries)})
}

// handleListViews enumerates the views with persisted overlay state.
func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.store.ListViews(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if views == nil {
		views = []store.View{}
	}

	writeJSON(w, viewListResponse{Views: views, Count: len(views)})
}

// viewName extracts and validates the {view} URL parameter. View names are
// client-chosen labels; the checks keep junk and unprintable names out of
// the overlay tables.
func viewName(r *http.Request) (string, error) {
	view := strings.TrimSpace(chi.URLParam(r, "view"))
	if view == "" {
		return "", fmt.Errorf("missing view name")
	}
	if len(view) > maxViewNameLength {
		return "", fmt.Errorf("view name exceeds %d characters", maxViewNameLength)
	}
	for _, c := range view {
		if unicode.IsControl(c) {
			return "", fmt.Errorf("view name contains control characters")
		}
	}
	return view, nil
}

// The overlay metric helpers tolerate a nil collector so handler code does
// not repeat the check.

func (s *Server) recordOverlayLoad(status string) {
	if s.metrics != nil {
		s.metrics.Overlay.RecordLoad(status)
	}
}

func (s *Server) recordOverlaySave(status string) {
	if s.metrics != nil {
		s.metrics.Overlay.RecordSave(status)
	}
}

func (s *Server) recordMergeDuration(seconds float64) {
	if s.metrics != nil {
		s.metrics.Overlay.RecordMergeDuration(seconds)
	}
}
