package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Driver string `validate:"oneof=dynamo mongo memory"`
	Port   string `validate:"required,numeric"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Driver: "mongo", Port: "3000"}))
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct(sample{Driver: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'sample.Driver' failed 'oneof=dynamo mongo memory'")
	assert.Contains(t, err.Error(), "field 'sample.Port' failed 'required'")
}
