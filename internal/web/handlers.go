package web

import "net/http"

// handleHealthz reports process liveness. It never touches dependencies, so
// a wedged database cannot make the orchestrator restart the process.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleReadyz reports readiness. The database must answer a ping before
// the service advertises itself for traffic.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, map[string]string{"status": "ready"})
}
