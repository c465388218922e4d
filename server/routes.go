package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/models"
)

// MatchHistory serves finished matches. services.MatchService implements it.
type MatchHistory interface {
	RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error)
}

const defaultMatchLimit = 20

func (s *GameServer) Routes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(corsMiddleware)

	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/metrics", s.monitor.Handler()).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/lobbies", s.handleLobbies).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/matches", s.handleMatches).Methods(http.MethodGet, http.MethodOptions)

	return r
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		// websocket upgrades skip the preflight handling
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorf("Error encoding response: %v", err)
	}
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"lobbies":  s.lobbies.Len(),
		"sessions": s.sessions.Count(),
	})
}

func (s *GameServer) handleLobbies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.lobbies.Snapshots())
}

func (s *GameServer) handleMatches(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		writeJSON(w, http.StatusOK, []models.MatchRecord{})
		return
	}

	limit := defaultMatchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := s.matches.RecentMatches(ctx, limit)
	if err != nil {
		logger.Log.Errorf("Failed to load match history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "match history unavailable"})
		return
	}
	if records == nil {
		records = []models.MatchRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
