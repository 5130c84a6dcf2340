package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "./a", "./a"},
		{"whitespace", " ./a ", " ./a "},
		{"simple escapes", `a\tb\nc\\d\'e\"f`, "a\tb\nc\\d'e\"f"},
		{"hex", `\x2e/a`, "./a"},
		{"unicode", `./caf\u00e9`, "./caf\u00e9"},
		{"code point", `\u{1F600}`, "\U0001F600"},
		{"surrogate pair", `\uD83D\uDE00`, "\U0001F600"},
		{"identity escape", `\q\/`, "q/"},
		{"line continuation", "a\\\nb", "ab"},
		{"crlf continuation", "a\\\r\nb", "ab"},
		{"raw crlf", "a\r\nb", "a\nb"},
		{"malformed hex kept", `\xZZ`, `\xZZ`},
		{"malformed unicode kept", `\u{}`, `\u{}`},
		{"trailing backslash", `a\`, `a\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unescape(tt.in))
		})
	}
}
