package plan

import "fmt"

// ErrorKind classifies a failure.
type ErrorKind string

const (
	// KindValidation is a local, field-scoped failure; no request was made.
	KindValidation ErrorKind = "validation"
	// KindNetwork means the server could not be reached.
	KindNetwork ErrorKind = "network"
	// KindTimeout means the call exceeded its time bound.
	KindTimeout ErrorKind = "timeout"
	// KindServer means the server answered with a non-success status.
	KindServer ErrorKind = "server"
	// KindUnknown covers everything else, including malformed payloads.
	KindUnknown ErrorKind = "unknown"
)

// ResolvedError is the renderable form of any failure.
type ResolvedError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Status  int       `json:"status,omitempty"`
	Raw     error     `json:"-"`
}

// Error implements the error interface.
func (e ResolvedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the raw cause.
func (e ResolvedError) Unwrap() error {
	return e.Raw
}
