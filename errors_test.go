package autolocale

import (
	"errors"
	"testing"
)

func TestProviderError(t *testing.T) {
	err := &ProviderError{Message: "translate endpoint", StatusCode: 503, Retryable: true}
	if err.Error() != "provider error: translate endpoint (status 503)" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	cause := errors.New("connection refused")
	wrapped := &ProviderError{Message: "request failed", Cause: cause}
	if wrapped.Error() != "provider error: request failed: connection refused" {
		t.Errorf("unexpected error message: %s", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestMalformedResponseError(t *testing.T) {
	err := &MalformedResponseError{Source: "api", Cause: errors.New("invalid character")}
	if err.Error() != "malformed api response: invalid character" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	var target *MalformedResponseError
	if !errors.As(error(err), &target) {
		t.Error("errors.As should match MalformedResponseError")
	}
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Message: "connection failed"}
	if err.Error() != "cache error: connection failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestProcessorError(t *testing.T) {
	err := &ProcessorError{Message: "parse failed", ContentType: "json"}
	if err.Error() != "processor error (json): parse failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}
