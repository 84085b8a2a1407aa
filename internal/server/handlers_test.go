package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/coach/internal/control"
	"github.com/vietddude/coach/internal/core/domain"
	"github.com/vietddude/coach/internal/generation"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	svc, err := control.NewService(context.Background(), control.Config{
		Pacing: generation.Pacing{
			InternalPhase:  time.Millisecond,
			ExternalPhase:  time.Millisecond,
			RetryPauseBase: time.Millisecond,
		},
	}, slog.Default())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return New(svc, slog.Default())
}

func generateBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"workout_type": "strength",
		"profile": map[string]any{
			"experience": "intermediate",
			"goal":       "strength",
		},
		"preferences": map[string]any{
			"focus":            "full_body",
			"duration_minutes": 30,
			"energy":           3,
		},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestHandleGenerate(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts/generate", generateBody(t))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp generateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Workout == nil {
		t.Fatal("response has no workout")
	}
	if !resp.Workout.StructurallyValid() {
		t.Error("returned workout is structurally invalid")
	}
	if resp.State.Status != domain.StatusComplete || resp.State.Progress != 100 {
		t.Errorf("state = %v/%d, want complete/100", resp.State.Status, resp.State.Progress)
	}
}

func TestHandleGenerateInvalidJSON(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts/generate", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGenerateEmptyProfile(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts/generate", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error domain.ClassifiedError    `json:"error"`
		State domain.GenerationSnapshot `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error.Code != domain.ErrInsufficientData {
		t.Errorf("error code = %v, want %v", resp.Error.Code, domain.ErrInsufficientData)
	}
	if resp.State.Status != domain.StatusError {
		t.Errorf("state = %v, want error", resp.State.Status)
	}
}

func TestHandleGetWorkoutRoundTrip(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workouts/generate", generateBody(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}
	var resp generateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workouts/"+resp.Workout.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}

	var got domain.GeneratedWorkout
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got.ID != resp.Workout.ID {
		t.Errorf("got workout %q, want %q", got.ID, resp.Workout.ID)
	}
}

func TestHandleGetWorkoutNotFound(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workouts/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleListWorkouts(t *testing.T) {
	s := testServer(t)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workouts/generate", generateBody(t)))
		if rec.Code != http.StatusOK {
			t.Fatalf("generate status = %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workouts?limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}

	var resp struct {
		Workouts []*domain.GeneratedWorkout `json:"workouts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(resp.Workouts) != 2 {
		t.Errorf("listed %d workouts, want 2", len(resp.Workouts))
	}
}

func TestHandleListWorkoutsBadLimit(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workouts?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if status["status"] != "ok" {
		t.Errorf("status = %q, want ok", status["status"])
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code domain.ErrorCode
		want int
	}{
		{domain.ErrInvalidData, http.StatusBadRequest},
		{domain.ErrInsufficientData, http.StatusBadRequest},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrTimeout, http.StatusGatewayTimeout},
		{domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{domain.ErrNetwork, http.StatusServiceUnavailable},
		{domain.ErrAPI, http.StatusBadGateway},
		{domain.ErrGenerationFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
