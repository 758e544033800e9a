package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	tests := map[string]string{
		"<@123>":   "123",
		"<@!456>":  "456",
		"<#789>":   "789",
		"<@&42>":   "42",
		" 101112 ": "101112",
		"@someone": "",
		"<#abc>":   "",
		"":         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseID(in), in)
	}
}
