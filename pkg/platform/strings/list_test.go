package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "only separators", input: " , ,, ", expected: nil},
		{name: "single", input: "localhost:9092", expected: []string{"localhost:9092"}},
		{
			name:     "trims and dedupes preserving order",
			input:    " b:9092, a:9092,,b:9092 ",
			expected: []string{"b:9092", "a:9092"},
		},
		{name: "case sensitive", input: "A,a", expected: []string{"A", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}
