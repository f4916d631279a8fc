package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchParen(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  int
	}{
		{name: "simple", input: "(abc)", limit: 100, want: 4},
		{name: "nested", input: "(a(b)c)", limit: 100, want: 6},
		{name: "escaped close", input: `(a\)b)`, limit: 100, want: 5},
		{name: "escaped open", input: `(a\(b)`, limit: 100, want: 5},
		{name: "escaped backslash", input: `(a\\)`, limit: 100, want: 4},
		{name: "unclosed", input: "(abc", limit: 100, want: -1},
		{name: "beyond limit", input: "(abcdefghij)", limit: 5, want: -1},
		{name: "trailing backslash", input: `(abc\`, limit: 100, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchParen([]byte(tt.input), 0, tt.limit))
		})
	}
}

func TestUnescapeLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no escapes", input: "plain text", want: "plain text"},
		{name: "parens", input: `He said \(hi\)`, want: "He said (hi)"},
		{name: "whitespace escapes", input: `a\nb\rc\td`, want: "a\nb\rc\td"},
		{name: "backslash", input: `C:\\notes`, want: `C:\notes`},
		{name: "escaped backslash before n", input: `\\n`, want: `\n`},
		{name: "unknown escape kept", input: `\101`, want: `\101`},
		{name: "trailing backslash", input: `end\`, want: `end\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unescapeLiteral(tt.input))
		})
	}
}
