package anthropic

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kirillkom/lab-grader/internal/infrastructure/resilience"
)

type transientClassKind int

const (
	classTerminal transientClassKind = iota
	classRateLimit
	classOverloaded
)

// transientClass buckets an API error into the two retryable classes the
// grading contract recognizes. Everything else is terminal: a malformed
// request will not get better by retrying it.
func transientClass(err error) transientClassKind {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return classTerminal
	}
	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return classRateLimit
	case apiErr.StatusCode >= 500:
		return classOverloaded
	default:
		return classTerminal
	}
}

func classifyAnthropicError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	if transientClass(err) != classTerminal {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}
