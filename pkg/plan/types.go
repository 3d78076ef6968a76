package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field names a questionnaire field.
type Field string

const (
	FieldAge     Field = "age"
	FieldConcern Field = "concern"
	FieldEmail   Field = "email"
)

// Input holds the raw, untrimmed questionnaire strings.
type Input struct {
	Age     string
	Concern string
	Email   string
}

// Payload is the validated request body sent to the plan endpoint.
type Payload struct {
	AgeMonths float64 `json:"ageMonths"`
	Concern   string  `json:"concern"`
	Email     string  `json:"email,omitempty"`
}

// ValidationResult reports the outcome of validating an Input.
// FieldErrors holds at most one message per field; a missing key means the
// field is valid.
type ValidationResult struct {
	OK          bool             `json:"ok"`
	FormError   string           `json:"formError,omitempty"`
	FieldErrors map[Field]string `json:"fieldErrors,omitempty"`
}

// Clone returns a copy with its own FieldErrors map.
func (r ValidationResult) Clone() ValidationResult {
	out := ValidationResult{OK: r.OK, FormError: r.FormError}
	if r.FieldErrors != nil {
		out.FieldErrors = make(map[Field]string, len(r.FieldErrors))
		for k, v := range r.FieldErrors {
			out.FieldErrors[k] = v
		}
	}
	return out
}

// Plan is the primary call's result.
type Plan struct {
	Steps []string `json:"steps,omitempty"`
}

// Clone returns a deep copy of p. A nil plan clones to nil.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := &Plan{}
	if p.Steps != nil {
		out.Steps = append(make([]string, 0, len(p.Steps)), p.Steps...)
	}
	return out
}

// BundleID is an offer identifier. Upstream sends either a string or a number.
type BundleID string

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (id *BundleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = BundleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("bundle id must be a string or number: %w", err)
	}
	*id = BundleID(n.String())
	return nil
}

// MarshalJSON emits numeric-looking IDs as numbers and everything else as strings.
func (id BundleID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Bundle is a single offer returned by the secondary call.
type Bundle struct {
	ID          BundleID `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Href        string   `json:"href,omitempty"`
}

// CloneBundles copies a bundle slice. A nil slice stays nil.
func CloneBundles(in []Bundle) []Bundle {
	if in == nil {
		return nil
	}
	return append(make([]Bundle, 0, len(in)), in...)
}
