package handlers

import (
	"net/http"
	"time"

	"gator-post/internal/engine/actors"
)

// HandleHealth reports service status with user and message counts
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		futureUsers := s.Context.RequestFuture(s.Engine.GetUserSupervisor(), &actors.GetCountsMsg{}, s.RequestTimeout)
		userResult, err := futureUsers.Result()
		if err != nil {
			http.Error(w, "Failed to get user count", http.StatusInternalServerError)
			return
		}
		userCount, ok := userResult.(int)
		if !ok {
			http.Error(w, "Failed to get user count", http.StatusInternalServerError)
			return
		}

		futureMessages := s.Context.RequestFuture(s.Engine.GetDirectMessageActor(), &actors.GetCountsMsg{}, s.RequestTimeout)
		messageResult, err := futureMessages.Result()
		if err != nil {
			http.Error(w, "Failed to get message count", http.StatusInternalServerError)
			return
		}
		messageCount, ok := messageResult.(int)
		if !ok {
			http.Error(w, "Failed to get message count", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "healthy",
			"user_count":    userCount,
			"message_count": messageCount,
			"server_time":   time.Now(),
		})
	}
}

// HandleMetrics serves a snapshot of the in-process metrics collector
func (s *Server) HandleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		writeJSON(w, http.StatusOK, s.Metrics.Snapshot())
	}
}
