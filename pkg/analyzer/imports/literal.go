package imports

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// unescape decodes the escape sequences of a JavaScript string or
// template literal body. Malformed escapes are kept as written.
func unescape(body string) string {
	if !strings.ContainsAny(body, "\\\r") {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c == '\r' {
			// Template literals normalise CRLF and CR to LF.
			b.WriteByte('\n')
			i++
			if i < len(body) && body[i] == '\n' {
				i++
			}
			continue
		}
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			i++
			continue
		}

		i++
		switch esc := body[i]; esc {
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '0':
			b.WriteByte(0)
			i++
		case '\n':
			i++
		case '\r':
			i++
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			r, n := hexRune(body[i+1:], 2)
			if n == 0 {
				b.WriteString(`\x`)
				i++
				continue
			}
			b.WriteRune(r)
			i += 1 + n
		case 'u':
			r, n := unicodeEscape(body[i+1:])
			if n == 0 {
				b.WriteString(`\u`)
				i++
				continue
			}
			i += 1 + n
			if utf16.IsSurrogate(r) && strings.HasPrefix(body[i:], `\u`) {
				if lo, m := unicodeEscape(body[i+2:]); m > 0 {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			b.WriteRune(r)
		default:
			// Line separators after a backslash continue the line.
			r, size := utf8.DecodeRuneInString(body[i:])
			if r != '\u2028' && r != '\u2029' {
				b.WriteString(body[i : i+size])
			}
			i += size
		}
	}
	return b.String()
}

// unicodeEscape decodes the part of a \u escape after the u: four hex
// digits or a braced code point. It returns the bytes consumed, zero when
// the escape is malformed.
func unicodeEscape(s string) (rune, int) {
	if rest, ok := strings.CutPrefix(s, "{"); ok {
		end := strings.IndexByte(rest, '}')
		if end < 1 || end > 6 {
			return 0, 0
		}
		v, err := strconv.ParseUint(rest[:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0
		}
		return rune(v), end + 2
	}
	return hexRune(s, 4)
}

func hexRune(s string, digits int) (rune, int) {
	if len(s) < digits {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[:digits], 16, 32)
	if err != nil {
		return 0, 0
	}
	return rune(v), digits
}
