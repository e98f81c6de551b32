package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[{"type":"function","name":"transfer","stateMutability":"nonpayable",` +
	`"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],` +
	`"outputs":[{"name":"","type":"bool"}]},` +
	`{"type":"event","name":"Transfer","inputs":[` +
	`{"name":"from","type":"address","indexed":true},` +
	`{"name":"to","type":"address","indexed":true},` +
	`{"name":"value","type":"uint256","indexed":false}]}]`

func validRequest() RegistrationRequest {
	return RegistrationRequest{
		Name:       "Token",
		ReportID:   "r1",
		Network:    "eth",
		Address:    "0x" + strings.Repeat("a", 40),
		StartBlock: "0",
		Abi:        AbiJSON(testABI),
	}
}

func TestValidateRegistration_Valid(t *testing.T) {
	require.Nil(t, ValidateRegistration(validRequest()))
}

func TestValidateRegistration_RequiredFields(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*RegistrationRequest)
	}{
		{"name", func(r *RegistrationRequest) { r.Name = "" }},
		{"report_id", func(r *RegistrationRequest) { r.ReportID = " " }},
		{"network", func(r *RegistrationRequest) { r.Network = "" }},
		{"address", func(r *RegistrationRequest) { r.Address = "" }},
		{"start_block", func(r *RegistrationRequest) { r.StartBlock = "" }},
		{"abi", func(r *RegistrationRequest) { r.Abi = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			verr := ValidateRegistration(req)
			require.NotNil(t, verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateRegistration_Address(t *testing.T) {
	bad := []string{
		strings.Repeat("a", 40),          // missing 0x
		"0x" + strings.Repeat("a", 39),   // too short
		"0x" + strings.Repeat("a", 41),   // too long
		"0x" + strings.Repeat("g", 40),   // not hex
		"0X" + strings.Repeat("a", 40),   // wrong prefix case
	}
	for _, addr := range bad {
		req := validRequest()
		req.Address = addr
		verr := ValidateRegistration(req)
		require.NotNil(t, verr, "address %q should be rejected", addr)
		assert.Equal(t, "address", verr.Field)
	}

	req := validRequest()
	req.Address = "0x" + strings.Repeat("AbCd", 10)
	assert.Nil(t, ValidateRegistration(req), "mixed-case hex is valid")
}

func TestValidateRegistration_AbiMustParse(t *testing.T) {
	req := validRequest()
	req.Abi = AbiJSON(`{"not":"an array"}`)
	verr := ValidateRegistration(req)
	require.NotNil(t, verr)
	assert.Equal(t, "abi", verr.Field)

	req.Abi = AbiJSON(`[{"type":`)
	verr = ValidateRegistration(req)
	require.NotNil(t, verr)
	assert.Equal(t, "abi", verr.Field)
}
