package domain

import (
	"encoding/json"
	"fmt"
)

// MaxBatchSize caps the number of contracts accepted in one registration
// request. A larger batch is rejected before any item is processed.
const MaxBatchSize = 50

// RegistrationRequest is one caller-supplied contract registration.
// Name and ReportID together form the composite key that the mapping
// store resolves to a stable internal identifier.
type RegistrationRequest struct {
	Name       string  `json:"name"`
	ReportID   string  `json:"report_id"`
	Network    string  `json:"network"`
	Address    string  `json:"address"`
	StartBlock string  `json:"start_block"`
	Abi        AbiJSON `json:"abi"`
}

// CompositeKey returns the stored identity for this registration. The
// pair is joined rather than hashed so existing rows stay readable.
func (r RegistrationRequest) CompositeKey() string {
	return r.Name + "_" + r.ReportID
}

// AbiJSON holds an ABI definition that callers may supply either as a
// parsed JSON array or as a serialized string containing one.
type AbiJSON []byte

// UnmarshalJSON accepts both forms. A string payload is unwrapped to the
// JSON it contains; anything else is kept verbatim.
func (a *AbiJSON) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid abi string: %w", err)
		}
		*a = AbiJSON(s)
		return nil
	}
	*a = AbiJSON(data)
	return nil
}

// MarshalJSON re-emits the normalized (parsed) form.
func (a AbiJSON) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return []byte(a), nil
}

// RegistrationResult is the per-item outcome of a batch registration.
// Exactly one result is produced for every input item.
type RegistrationResult struct {
	Contract string `json:"contract"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RegistrationOutcome distinguishes a first registration from a repeat
// of an already-mapped composite key, for user-facing messaging only.
type RegistrationOutcome int

const (
	OutcomeInserted RegistrationOutcome = iota
	OutcomeUpdated
)

func (o RegistrationOutcome) String() string {
	if o == OutcomeUpdated {
		return "updated"
	}
	return "registered"
}

// AbiArtifact is the per-identifier auxiliary file written next to the
// manifest. Overwriting the same ID is idempotent.
type AbiArtifact struct {
	IndexerID string
	JSON      []byte
}

// Event is one indexed event row returned by the read path. Columns are
// kept dynamic since each contract's event tables have their own shape.
type Event map[string]any
