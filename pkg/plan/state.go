package plan

// State is the submission controller's lifecycle position.
type State int

const (
	// Idle means no attempt has run yet, or the last one was reset.
	Idle State = iota

	// Validating means the raw input is being checked.
	Validating

	// Submitting means a primary or secondary call is in flight.
	Submitting

	// Success means both calls completed.
	Success

	// Error means the last attempt failed validation, the primary call,
	// or the secondary call.
	Error
)

var stateNames = map[State]string{
	Idle:       "idle",
	Validating: "validating",
	Submitting: "submitting",
	Success:    "success",
	Error:      "error",
}

// String returns the lowercase state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether s ends an attempt.
func (s State) Terminal() bool {
	return s == Success || s == Error
}

// MarshalText implements encoding.TextMarshaler so states render by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
