package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		hint   ErrorCode
		expect ErrorCode
	}{
		{"deadline exceeded", context.DeadlineExceeded, "", ErrTimeout},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), "", ErrTimeout},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), "", ErrServiceUnavailable},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "slow down"), "", ErrRateLimited},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "too slow"), "", ErrTimeout},
		{"grpc invalid argument", status.Error(codes.InvalidArgument, "bad vars"), "", ErrInvalidData},
		{"grpc internal", status.Error(codes.Internal, "boom"), "", ErrAPI},
		{"timeout substring", errors.New("request timed out"), "", ErrTimeout},
		{"rate limit substring", errors.New("429 Too Many Requests"), "", ErrRateLimited},
		{"unavailable substring", errors.New("503 Service Unavailable"), "", ErrServiceUnavailable},
		{"connection refused", errors.New("dial tcp: connection refused"), "", ErrNetwork},
		{"connection reset", errors.New("read: connection reset by peer"), "", ErrNetwork},
		{"hint used for opaque error", errors.New("boom"), ErrAPI, ErrAPI},
		{"default for opaque error", errors.New("boom"), "", ErrGenerationFailed},
	}

	for _, tt := range tests {
		ce := Classify(tt.err, tt.hint)
		if ce == nil {
			t.Errorf("%s: Classify returned nil", tt.name)
			continue
		}
		if ce.Code != tt.expect {
			t.Errorf("%s: Classify(%q) = %v, want %v", tt.name, tt.err, ce.Code, tt.expect)
		}
		if !errors.Is(ce, tt.err) && ce.Cause == nil {
			t.Errorf("%s: classified error lost its cause", tt.name)
		}
	}
}

func TestClassifyNil(t *testing.T) {
	if ce := Classify(nil, ErrAPI); ce != nil {
		t.Errorf("Classify(nil) = %v, want nil", ce)
	}
}

func TestClassifyPassthrough(t *testing.T) {
	orig := NewClassified(ErrRateLimited, errors.New("slow down"))
	got := Classify(fmt.Errorf("outer: %w", orig), ErrAPI)
	if got != orig {
		t.Errorf("Classify did not unwrap to the original classified error")
	}
}

func TestClassifyCancellation(t *testing.T) {
	ce := Classify(context.Canceled, "")
	if ce.Code != ErrGenerationFailed {
		t.Errorf("cancelled attempt classified as %v, want %v", ce.Code, ErrGenerationFailed)
	}
	if ce.Retryable {
		t.Error("cancellation must not be retryable")
	}
}

func TestClassifyGRPCRetryInfo(t *testing.T) {
	// Status codes carry table retry-after defaults.
	ce := Classify(status.Error(codes.ResourceExhausted, "slow down"), "")
	if ce.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want table default 30s", ce.RetryAfter)
	}
}

func TestNonRetryable(t *testing.T) {
	ce := NonRetryable(ErrAPI, errors.New("boom"))
	if ce.Retryable {
		t.Error("NonRetryable returned a retryable error")
	}
	if ce.Code != ErrAPI {
		t.Errorf("code = %v, want %v", ce.Code, ErrAPI)
	}
}

func TestErrorTableMetadata(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
		fallback  bool
	}{
		{ErrInvalidData, false, false},
		{ErrInsufficientData, false, true},
		{ErrAPI, true, true},
		{ErrNetwork, true, true},
		{ErrTimeout, true, true},
		{ErrRateLimited, true, true},
		{ErrServiceUnavailable, true, true},
		{ErrGenerationFailed, true, true},
	}

	for _, tt := range tests {
		ce := NewClassified(tt.code, nil)
		if ce.Retryable != tt.retryable {
			t.Errorf("%s: retryable = %v, want %v", tt.code, ce.Retryable, tt.retryable)
		}
		if ce.Fallback != tt.fallback {
			t.Errorf("%s: fallback = %v, want %v", tt.code, ce.Fallback, tt.fallback)
		}
		if ce.Message == "" || ce.RecoveryHint == "" {
			t.Errorf("%s: missing user-facing message or recovery hint", tt.code)
		}
	}
}

func TestNewClassifiedUnknownCode(t *testing.T) {
	ce := NewClassified(ErrorCode("NOT_A_CODE"), nil)
	if ce.Code != ErrGenerationFailed {
		t.Errorf("unknown code mapped to %v, want %v", ce.Code, ErrGenerationFailed)
	}
}
