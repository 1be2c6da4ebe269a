package registry

import "time"

// Result is the outcome of every invocation. Exactly one of the success or
// failure field groups is populated.
type Result struct {
	Success bool `json:"success"`

	Data     any            `json:"data,omitempty"`
	Message  string         `json:"message,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`

	Error     string         `json:"error,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	Field     string         `json:"field,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
	Details   map[string]any `json:"details,omitempty"`

	Timestamp    time.Time `json:"timestamp"`
	DurationMs   int64     `json:"duration_ms"`
	InvocationID string    `json:"invocation_id"`
}

// Err returns the failure as a CodedError, or nil for a successful result.
func (r Result) Err() *CodedError {
	if r.Success {
		return nil
	}
	return &CodedError{
		Code:      r.ErrorCode,
		Message:   r.Error,
		Field:     r.Field,
		Retryable: r.Retryable,
		Details:   r.Details,
	}
}

// Text returns the payload when it is a string, which is how resources and
// prompts deliver their content.
func (r Result) Text() (string, bool) {
	s, ok := r.Data.(string)
	return s, ok
}
