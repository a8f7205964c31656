package jsonrecovery

import (
	"strings"
)

// Clean prepares raw model text for parsing. It removes NUL characters and
// escapes of the form \u with fewer than four hex digits. Typographic double
// quotes become ASCII quotes, escaped when they sit inside a string literal.
// Typographic single quotes become apostrophes.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, "\x00", "")
	s = dropBrokenUnicodeEscapes(s)
	s = normalizeQuotes(s)
	return strings.TrimSpace(s)
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func dropBrokenUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		if next != 'u' {
			b.WriteByte(s[i])
			b.WriteByte(next)
			i++
			continue
		}
		n := 0
		for n < 4 && i+2+n < len(s) && isHex(s[i+2+n]) {
			n++
		}
		if n == 4 {
			b.WriteString(s[i : i+6])
		}
		i += 1 + n
	}
	return b.String()
}

func normalizeQuotes(s string) string {
	if !strings.ContainsAny(s, "“”‘’") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped, smartOpen := false, false, false
	for _, r := range s {
		switch {
		case r == '‘' || r == '’':
			b.WriteByte('\'')
		case inString && escaped:
			escaped = false
			b.WriteRune(r)
		case inString && r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '“' || r == '”':
			switch {
			case !inString:
				inString, smartOpen = true, true
				b.WriteByte('"')
			case smartOpen && r == '”':
				inString, smartOpen = false, false
				b.WriteByte('"')
			default:
				b.WriteString(`\"`)
			}
		case r == '"':
			if inString {
				inString, smartOpen = false, false
			} else {
				inString = true
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
