package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "myproject_c123", SchemaName("myproject", "c123"))
	assert.Equal(t, "my_project_c123", SchemaName("My Project", "c123"))
	assert.Equal(t, "my_project_c123", SchemaName(" my-project ", "C123"))
}

func TestAbiFileName(t *testing.T) {
	assert.Equal(t, "c0ffee.abi.json", AbiFileName("c0ffee"))
}
