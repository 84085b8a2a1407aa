package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vietddude/coach/internal/core/domain"
	"github.com/vietddude/coach/internal/infra/storage"
)

// generateRequest is the POST body for workout generation. Options override
// the configured defaults for this call only.
type generateRequest struct {
	Profile      domain.Profile     `json:"profile"`
	Preferences  domain.Preferences `json:"preferences"`
	WorkoutType  domain.WorkoutType `json:"workout_type"`
	ExtraContext map[string]string  `json:"extra_context,omitempty"`
	Options      *generateOptions   `json:"options,omitempty"`
}

type generateOptions struct {
	TimeoutSeconds  int   `json:"timeout_seconds,omitempty"`
	RetryAttempts   int   `json:"retry_attempts,omitempty"`
	UseExternalAI   *bool `json:"use_external_ai,omitempty"`
	UseFallback     *bool `json:"use_fallback,omitempty"`
	DetailedLogging bool  `json:"detailed_logging,omitempty"`
}

type generateResponse struct {
	Workout *domain.GeneratedWorkout  `json:"workout"`
	State   domain.GenerationSnapshot `json:"state"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	opts := s.svc.Options()
	if o := body.Options; o != nil {
		if o.TimeoutSeconds > 0 {
			opts.Timeout = time.Duration(o.TimeoutSeconds) * time.Second
		}
		if o.RetryAttempts > 0 {
			opts.RetryAttempts = o.RetryAttempts
		}
		if o.UseExternalAI != nil {
			opts.UseExternalAI = *o.UseExternalAI
		}
		if o.UseFallback != nil {
			opts.UseFallback = *o.UseFallback
		}
		opts.EnableDetailedLogging = o.DetailedLogging
	}

	req := domain.GenerationRequest{
		Profile:      body.Profile,
		Preferences:  body.Preferences,
		WorkoutType:  body.WorkoutType,
		ExtraContext: body.ExtraContext,
	}

	workout, snap, err := s.svc.GenerateWorkout(r.Context(), req, opts)
	if err != nil {
		ce := domain.Classify(err, domain.ErrGenerationFailed)
		s.log.Error("generation failed", "code", ce.Code, "error", err)
		writeJSON(w, statusFor(ce.Code), map[string]any{
			"error": ce,
			"state": snap,
		})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Workout: workout, State: snap})
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	workout, err := s.svc.GetWorkout(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	workouts, err := s.svc.ListWorkouts(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workouts": workouts})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if err := s.svc.ProviderReady(r.Context()); err != nil {
		status["provider"] = "unavailable"
	} else {
		status["provider"] = "ok"
	}
	writeJSON(w, http.StatusOK, status)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrInvalidData, domain.ErrInsufficientData:
		return http.StatusBadRequest
	case domain.ErrRateLimited:
		return http.StatusTooManyRequests
	case domain.ErrTimeout:
		return http.StatusGatewayTimeout
	case domain.ErrServiceUnavailable, domain.ErrNetwork:
		return http.StatusServiceUnavailable
	case domain.ErrAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
