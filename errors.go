package autolocale

import "fmt"

// ProviderError indicates the remote translation service failed
// (unreachable, timed out, or answered with a non-success status).
type ProviderError struct {
	Message    string
	Cause      error
	StatusCode int  // HTTP status when the service answered, 0 otherwise
	Retryable  bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	msg := "provider error: " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError indicates a body could not be decoded into the
// expected shape.
type MalformedResponseError struct {
	Source string // What produced the body: "translate", "api", ...
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s response: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("malformed %s response", e.Source)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}
