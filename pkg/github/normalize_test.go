package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLogin(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare login unchanged",
			input:    "octocat",
			expected: "octocat",
		},
		{
			name:     "leading at sign stripped",
			input:    "@octocat",
			expected: "octocat",
		},
		{
			name:     "https profile URL",
			input:    "https://github.com/octocat",
			expected: "octocat",
		},
		{
			name:     "http profile URL",
			input:    "http://github.com/octocat",
			expected: "octocat",
		},
		{
			name:     "enterprise host URL",
			input:    "https://github.example.com/platform/octocat",
			expected: "octocat",
		},
		{
			name:     "at sign then URL",
			input:    "@https://github.com/octocat",
			expected: "octocat",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeLogin(tt.input))
		})
	}
}

func TestNormalizeLoginIdempotent(t *testing.T) {
	inputs := []string{"@octocat", "https://github.com/octocat", "octocat"}
	for _, input := range inputs {
		once := NormalizeLogin(input)
		assert.Equal(t, once, NormalizeLogin(once))
	}
}
