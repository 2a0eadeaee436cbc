package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"
	"vantage/internal/admission"
	"vantage/internal/middleware"
	"vantage/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const version = "1.0.0"

// StatsReader reads durable counters for the stats endpoint.
type StatsReader interface {
	Get(ctx context.Context, key string) (int64, error)
}

// Server exposes the profile pipeline over plain JSON HTTP.
type Server struct {
	pipeline *service.Pipeline
	stats    StatsReader
	logger   zerolog.Logger
	started  time.Time
}

func New(pipeline *service.Pipeline, stats StatsReader, logger zerolog.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		stats:    stats,
		logger:   logger,
		started:  time.Now(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(s.logger))
	r.Get("/health", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Get("/profile/{identity}", s.handleProfile)
	return r
}

type apiResponse struct {
	Success         bool   `json:"success"`
	Data            any    `json:"data,omitempty"`
	Error           string `json:"error,omitempty"`
	RequiresCaptcha bool   `json:"requiresCaptcha,omitempty"`
	Timestamp       string `json:"timestamp"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.pipeline.Lookup(r.Context(), service.LookupRequest{
		Identity: chi.URLParam(r, "identity"),
		Admission: admission.Request{
			RemoteAddr:   clientIP(r),
			UserAgent:    r.UserAgent(),
			Accept:       r.Header.Get("Accept"),
			Referer:      r.Referer(),
			ForwardedFor: r.Header.Get("X-Forwarded-For"),
			CaptchaToken: r.URL.Query().Get("recaptcha_token"),
		},
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	switch outcome.Decision.Status {
	case admission.ServiceUnavailable:
		writeJSON(w, http.StatusServiceUnavailable, apiResponse{
			Success: false,
			Error:   "Service temporarily unavailable. Please try again later.",
		})
		return
	case admission.CaptchaRequired:
		writeJSON(w, http.StatusTooManyRequests, apiResponse{
			Success:         false,
			Error:           "Rate limit exceeded. Please complete reCAPTCHA to continue.",
			RequiresCaptcha: true,
		})
		return
	case admission.CaptchaFailed:
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success:         false,
			Error:           "reCAPTCHA verification failed. Please try again.",
			RequiresCaptcha: true,
		})
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    outcome.Profile,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.stats.Get(r.Context(), "total_searches")
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch stats")
		writeJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Error:   "Failed to fetch stats",
		})
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data: map[string]any{
			"totalSearches": total,
			"server": map[string]any{
				"uptime":  time.Since(s.started).Seconds(),
				"version": version,
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	if resp, ok := body.(apiResponse); ok && resp.Timestamp == "" {
		resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
		body = resp
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// clientIP strips the port from RemoteAddr; the forwarded-for header is
// carried separately into the client key, never trusted on its own.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
