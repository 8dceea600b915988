package statusapi

import (
	"net/http"

	"optimus-dashboard/pkg/model"
	"optimus-dashboard/pkg/version"

	"github.com/gorilla/mux"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Connected bool              `json:"connected"`
	Version   version.BuildInfo `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Connected: s.store.Snapshot().Connection.Connected,
		Version:   version.Info(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		s.writeError(w, http.StatusNotFound, "stream stats disabled")
		return
	}
	s.writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()

	var alerts []model.Alert
	switch state := r.URL.Query().Get("state"); state {
	case "":
		alerts = snap.Alerts
	case "active":
		alerts = snap.ActiveAlerts()
	case "cleared":
		alerts = snap.ClearedAlerts()
	default:
		s.writeError(w, http.StatusBadRequest, "state must be active or cleared")
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

// handleAckAlert is the manual acknowledgment path: the alert is removed from
// the log exactly as a server-side clear would remove it.
func (s *Server) handleAckAlert(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, ok := s.store.Snapshot().Alert(name); !ok {
		s.writeError(w, http.StatusNotFound, "no such alert")
		return
	}
	s.store.ClearAlert(name)
	s.logger.Printf("alert %q acknowledged", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.store.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	if s.ctrl == nil {
		s.writeError(w, http.StatusServiceUnavailable, "stream control disabled")
		return
	}
	s.ctrl.Reconnect()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "reconnecting"})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if s.ctrl == nil {
		s.writeError(w, http.StatusServiceUnavailable, "stream control disabled")
		return
	}
	s.ctrl.Disconnect()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "disconnecting"})
}
