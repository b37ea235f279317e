package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"label": "Beginner"}`,
			want:  `{"label": "Beginner"}`,
		},
		{
			name:  "json fence stripped",
			input: "```json\n{\"label\": \"Beginner\"}\n```",
			want:  `{"label": "Beginner"}`,
		},
		{
			name:  "generic fence stripped",
			input: "```\n{\"label\": \"Beginner\"}\n```",
			want:  `{"label": "Beginner"}`,
		},
		{
			name:  "fence with language identifier",
			input: "```javascript\n{\"label\": \"Beginner\"}\n```",
			want:  `{"label": "Beginner"}`,
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  \n{\"a\": 1}\n  ",
			want:  `{"a": 1}`,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}
