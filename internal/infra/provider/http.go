package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vietddude/coach/internal/core/domain"
)

// HTTPProvider implements Provider over a JSON HTTP API.
type HTTPProvider struct {
	name       string
	endpoint   string
	healthURL  string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPProvider creates an HTTP-based generation provider.
func NewHTTPProvider(cfg Config, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name:      cfg.Name,
		endpoint:  cfg.URL,
		healthURL: cfg.HealthURL,
		apiKey:    cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (p *HTTPProvider) Name() string { return p.name }

// Ready probes the provider's health endpoint. Providers without a
// configured health URL are assumed ready.
func (p *HTTPProvider) Ready(ctx context.Context) error {
	if p.healthURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL, nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.NewClassified(domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domain.NewClassified(domain.ErrServiceUnavailable,
			fmt.Errorf("health check returned %d", resp.StatusCode))
	}
	return nil
}

type generateRequest struct {
	Variables       domain.CanonicalVariables `json:"variables"`
	Recommendations []domain.Recommendation   `json:"recommendations"`
	Prompt          string                    `json:"prompt"`
}

type generateResponse struct {
	Workout *domain.GeneratedWorkout `json:"workout"`
	Error   string                   `json:"error,omitempty"`
}

// Generate performs a single generation call. Failures come back as typed
// ClassifiedErrors so the retry layer can act on them without message
// sniffing.
func (p *HTTPProvider) Generate(ctx context.Context, vars domain.CanonicalVariables, recs []domain.Recommendation, prompt string) (*domain.GeneratedWorkout, error) {
	body, err := json.Marshal(generateRequest{Variables: vars, Recommendations: recs, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.Classify(ctx.Err(), domain.ErrTimeout)
		}
		return nil, domain.NewClassified(domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		ce := domain.NewClassified(domain.ErrRateLimited,
			fmt.Errorf("provider %s rate limited", p.name))
		if d := parseRetryAfter(resp.Header.Get("Retry-After")); d > 0 {
			ce.RetryAfter = d
		}
		return nil, ce
	case http.StatusServiceUnavailable:
		return nil, domain.NewClassified(domain.ErrServiceUnavailable,
			fmt.Errorf("provider %s unavailable", p.name))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewClassified(domain.ErrNetwork, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewClassified(domain.ErrAPI,
			fmt.Errorf("http %d: %s", resp.StatusCode, truncate(raw, 200)))
	}

	var genResp generateResponse
	if err := json.Unmarshal(raw, &genResp); err != nil {
		return nil, domain.NewClassified(domain.ErrAPI, fmt.Errorf("decode response: %w", err))
	}
	if genResp.Error != "" {
		return nil, domain.NewClassified(domain.ErrAPI, errors.New(genResp.Error))
	}
	if genResp.Workout == nil {
		return nil, domain.NewClassified(domain.ErrAPI, errors.New("response missing workout"))
	}

	genResp.Workout.Origin = domain.OriginExternal
	return genResp.Workout, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
