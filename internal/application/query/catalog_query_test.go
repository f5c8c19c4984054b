package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   \n  ", []string{}},
		{"single paragraph", "A classic Cuban cocktail.", []string{"A classic Cuban cocktail."}},
		{
			"blank line split",
			"First paragraph.\n\nSecond paragraph.",
			[]string{"First paragraph.", "Second paragraph."},
		},
		{
			"collapses inner whitespace",
			"White  rum,\nlime   and mint.\n\nServed  over ice.",
			[]string{"White rum, lime and mint.", "Served over ice."},
		},
		{
			"windows line endings",
			"One.\r\n\r\nTwo.",
			[]string{"One.", "Two."},
		},
		{
			"skips empty segments",
			"One.\n\n\n\nTwo.\n\n",
			[]string{"One.", "Two."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitParagraphs(tt.in))
		})
	}
}
