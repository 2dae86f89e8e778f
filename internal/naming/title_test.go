package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"added_love_", "Added Love"},
		{"__time", "Time"},
		{"page", "Page"},
		{"unique_user", "Unique User"},
		{"unique_user_love_", "Unique User Love"},
		{"pageInBrackets", "Page In Brackets"},
		{"XMLParser", "XML Parser"},
		{"wiki", "Wiki"},
		{"count2", "Count2"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Title(tt.input))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"delta", "max"}, Tokens("delta_max"))
	assert.Equal(t, []string{"min", "time"}, Tokens("minTime"))
	assert.Equal(t, []string{"maximum"}, Tokens("maximum"))
	assert.Nil(t, Tokens(""))
}
