package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleOCRStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "ocr stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"engine": s.cfg.OCREngine,
		"stats":  s.stats.Snapshot(),
	})
}
