package textnorm

import (
	"fmt"
	"strings"
)

// Bullet prefixes every rendered list item.
const Bullet = "•"

func isItemDelimiter(r rune) bool {
	switch r {
	case '\n', '\r', ',', ';', '|', '•', '▪', '·', '●':
		return true
	}
	return false
}

func isLineDelimiter(r rune) bool {
	switch r {
	case '\n', '\r', '•', '▪', '●':
		return true
	}
	return false
}

// SplitLines splits s into trimmed, non-empty lines, treating bullet glyphs
// as line starts. Commas and semicolons are kept.
func SplitLines(s string) []string {
	parts := strings.FieldsFunc(s, isLineDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitItems splits s on newlines, commas, semicolons, pipes and bullet
// glyphs, then trims, drops empties and removes duplicates.
func SplitItems(s string) []string {
	return CleanItems(strings.FieldsFunc(s, isItemDelimiter))
}

// CleanItems trims every item, drops empties and keeps the first occurrence
// of each duplicate. Items are not split further.
func CleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// ToItemList accepts a string, a []string or a decoded JSON array. Strings
// are split on the delimiter set; array elements are only trimmed.
func ToItemList(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return SplitItems(t)
	case []string:
		return CleanItems(t)
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, e := range t {
			if e == nil {
				continue
			}
			if s, ok := e.(string); ok {
				items = append(items, s)
				continue
			}
			items = append(items, fmt.Sprint(e))
		}
		return CleanItems(items)
	default:
		return SplitItems(fmt.Sprint(t))
	}
}

// ToBulletedText renders items one per line behind a bullet glyph, or ""
// when nothing survives trimming.
func ToBulletedText(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return Bullet + " " + strings.Join(kept, "\n"+Bullet+" ")
}
