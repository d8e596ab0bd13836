package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DewclawArchery/teri-gateway/internal/chat"
	"github.com/DewclawArchery/teri-gateway/internal/wordpress"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	}
	if r.URL.Query().Get("detail") == "true" {
		components := map[string]string{}
		if s.eventStore == nil {
			components["event_store"] = "disabled"
		} else {
			components["event_store"] = "ok"
		}
		if s.wp == nil {
			components["wordpress"] = "disabled"
		} else {
			components["wordpress"] = "ok"
		}
		if s.rateLimiter == nil {
			components["rate_limiter"] = "disabled"
		} else {
			components["rate_limiter"] = "ok"
		}
		resp["components"] = components
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method Not Allowed"})
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	res := s.pipeline.Respond(r.Context(), req)
	if !res.OK {
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": res.Reply.Message})
		return
	}
	writeJSON(w, http.StatusOK, res.Reply)
}

func (s *Server) handleLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := s.wp.ActiveLeagues(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("league list fetch failed")
		var apiErr *wordpress.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Could not load leagues"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Fetch failed"})
		return
	}
	writeJSON(w, http.StatusOK, leagues)
}

func (s *Server) handleLeagueSignup(w http.ResponseWriter, r *http.Request) {
	var signup wordpress.Signup
	if err := json.NewDecoder(r.Body).Decode(&signup); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	result, err := s.wp.SubmitSignup(r.Context(), signup)
	if err != nil {
		log.Warn().Err(err).Int("league_id", signup.LeagueID).Msg("league signup failed")
		var apiErr *wordpress.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   apiErr.Message,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Could not reach the signup service. Please check your connection or try again shortly.",
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEventsList(w http.ResponseWriter, r *http.Request) {
	if s.eventStore == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "Event store is not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := s.eventStore.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("event list query failed")
		writeError(w, http.StatusInternalServerError, "internal", "Could not list events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
