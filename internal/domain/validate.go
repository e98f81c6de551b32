package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ValidateRegistration runs the stateless checks on a single registration
// request and returns nil when it is acceptable. Checks run in order:
// required fields, address shape, ABI parse. No I/O happens here.
func ValidateRegistration(req RegistrationRequest) *ValidationError {
	for _, f := range []struct {
		name, value string
	}{
		{"name", req.Name},
		{"report_id", req.ReportID},
		{"network", req.Network},
		{"address", req.Address},
		{"start_block", req.StartBlock},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Reason: "is required"}
		}
	}
	if len(req.Abi) == 0 {
		return &ValidationError{Field: "abi", Reason: "is required"}
	}

	if !strings.HasPrefix(req.Address, "0x") || !common.IsHexAddress(req.Address) || len(req.Address) != 42 {
		return &ValidationError{Field: "address", Reason: "must be 0x followed by 40 hex digits"}
	}

	// The ABI must be a JSON array of fragments that go-ethereum can load.
	var fragments []json.RawMessage
	if err := json.Unmarshal(req.Abi, &fragments); err != nil {
		return &ValidationError{Field: "abi", Reason: "must be a JSON array: " + err.Error()}
	}
	if _, err := abi.JSON(bytes.NewReader(req.Abi)); err != nil {
		return &ValidationError{Field: "abi", Reason: "does not parse as an ABI: " + err.Error()}
	}

	return nil
}
