package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	storeStatus := false
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err == nil {
			storeStatus = true
		}
	}

	response := map[string]interface{}{
		"active_clients":  s.hub.GetActiveClientsCount(),
		"sessions":        s.registry.Len(),
		"active_sessions": len(s.registry.Active()),
		"uptime":          formatDuration(time.Since(s.startTime)),
		"store_backend":   s.backend,
		"store_status":    storeStatus,
		"timestamp":       time.Now().Unix(),
	}
	if s.workers != nil {
		response["workers"] = s.workers.GetStats()
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) logsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": s.logs.Recent(),
	})
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
