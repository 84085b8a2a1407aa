package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode is the closed taxonomy of generation failures.
type ErrorCode string

const (
	ErrInvalidData        ErrorCode = "INVALID_DATA"
	ErrInsufficientData   ErrorCode = "INSUFFICIENT_DATA"
	ErrAPI                ErrorCode = "API_ERROR"
	ErrNetwork            ErrorCode = "NETWORK_ERROR"
	ErrTimeout            ErrorCode = "TIMEOUT_ERROR"
	ErrRateLimited        ErrorCode = "RATE_LIMITED"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrGenerationFailed   ErrorCode = "GENERATION_FAILED"
)

// ClassifiedError is a typed, taxonomy-tagged wrapper around a raw failure
// carrying retry/fallback metadata. Constructed once, never mutated.
type ClassifiedError struct {
	Code         ErrorCode     `json:"code"`
	Message      string        `json:"message"`
	Retryable    bool          `json:"retryable"`
	RetryAfter   time.Duration `json:"retry_after,omitempty"`
	RecoveryHint string        `json:"recovery_hint,omitempty"`
	Fallback     bool          `json:"fallback_available"`
	Cause        error         `json:"-"`
}

func (e *ClassifiedError) Error() string {
	if e.Cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// errorSpec is one row of the classification table.
type errorSpec struct {
	message      string
	retryable    bool
	retryAfter   time.Duration
	recoveryHint string
	fallback     bool
}

// Classification table. Retry-after values are configuration defaults, not
// load-bearing invariants.
var errorTable = map[ErrorCode]errorSpec{
	ErrInvalidData: {
		message:      "the provided profile or preferences are invalid",
		recoveryHint: "review the required profile fields and try again",
	},
	ErrInsufficientData: {
		message:      "not enough profile data to generate a workout",
		recoveryHint: "complete your fitness profile before generating",
		fallback:     true,
	},
	ErrAPI: {
		message:      "the generation service returned an error",
		retryable:    true,
		retryAfter:   5 * time.Second,
		recoveryHint: "try again in a few seconds",
		fallback:     true,
	},
	ErrNetwork: {
		message:      "could not reach the generation service",
		retryable:    true,
		retryAfter:   5 * time.Second,
		recoveryHint: "check your connection and try again",
		fallback:     true,
	},
	ErrTimeout: {
		message:      "the generation request timed out",
		retryable:    true,
		retryAfter:   10 * time.Second,
		recoveryHint: "try again; the service may be under load",
		fallback:     true,
	},
	ErrRateLimited: {
		message:      "too many generation requests",
		retryable:    true,
		retryAfter:   30 * time.Second,
		recoveryHint: "wait before requesting another workout",
		fallback:     true,
	},
	ErrServiceUnavailable: {
		message:      "the generation service is unavailable",
		retryable:    true,
		retryAfter:   60 * time.Second,
		recoveryHint: "try again later or use the built-in plan",
		fallback:     true,
	},
	ErrGenerationFailed: {
		message:      "workout generation failed",
		retryable:    true,
		retryAfter:   5 * time.Second,
		recoveryHint: "try again or adjust your preferences",
		fallback:     true,
	},
}

// NewClassified builds a ClassifiedError for a known code with the table's
// metadata and an optional cause.
func NewClassified(code ErrorCode, cause error) *ClassifiedError {
	spec, ok := errorTable[code]
	if !ok {
		spec = errorTable[ErrGenerationFailed]
		code = ErrGenerationFailed
	}
	return &ClassifiedError{
		Code:         code,
		Message:      spec.message,
		Retryable:    spec.retryable,
		RetryAfter:   spec.retryAfter,
		RecoveryHint: spec.recoveryHint,
		Fallback:     spec.fallback,
		Cause:        cause,
	}
}

// NonRetryable returns a copy-free classified error for code with the
// retryable flag forced off. Used when a retry budget is exhausted.
func NonRetryable(code ErrorCode, cause error) *ClassifiedError {
	ce := NewClassified(code, cause)
	ce.Retryable = false
	return ce
}

// Classify maps a raised failure into the closed taxonomy. The hint code is
// used when the error itself carries no stronger signal. Never panics and
// never returns nil for a non-nil error.
//
// Inference order: typed ClassifiedError produced at the throw site, then
// context sentinels, then gRPC status codes, then message substring
// heuristics for failures crossing an opaque boundary.
func Classify(err error, hint ErrorCode) *ClassifiedError {
	if err == nil {
		return nil
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewClassified(ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return NonRetryable(ErrGenerationFailed, err)
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		return classifyGRPC(st, err)
	}

	if code := codeFromMessage(err.Error()); code != "" {
		return NewClassified(code, err)
	}

	if hint != "" {
		return NewClassified(hint, err)
	}
	return NewClassified(ErrGenerationFailed, err)
}

func classifyGRPC(st *status.Status, cause error) *ClassifiedError {
	var code ErrorCode
	switch st.Code() {
	case codes.DeadlineExceeded:
		code = ErrTimeout
	case codes.ResourceExhausted:
		code = ErrRateLimited
	case codes.Unavailable:
		code = ErrServiceUnavailable
	case codes.InvalidArgument:
		code = ErrInvalidData
	default:
		code = ErrAPI
	}

	ce := NewClassified(code, cause)
	for _, d := range st.Details() {
		if ri, ok := d.(*errdetails.RetryInfo); ok && ri.GetRetryDelay() != nil {
			ce.RetryAfter = ri.GetRetryDelay().AsDuration()
		}
	}
	return ce
}

// codeFromMessage is the substring fallback for errors whose type we do not
// control (third-party HTTP clients, transport internals).
func codeFromMessage(msg string) ErrorCode {
	s := strings.ToLower(msg)
	switch {
	case strings.Contains(s, "timed out") || strings.Contains(s, "timeout"):
		return ErrTimeout
	case strings.Contains(s, "rate limit") || strings.Contains(s, "too many requests") || strings.Contains(s, "429"):
		return ErrRateLimited
	case strings.Contains(s, "service unavailable") || strings.Contains(s, "503"):
		return ErrServiceUnavailable
	case strings.Contains(s, "abort") || strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") || strings.Contains(s, "no such host"):
		return ErrNetwork
	}
	return ""
}
