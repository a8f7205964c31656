package jsonrecovery

import (
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Repair rewrites almost-JSON into syntactically valid JSON where it can,
// starting at the first '{'. Text before it is prose and is dropped. When the
// repair library gives up, s is returned from that '{' unchanged; callers
// must parse the result.
func Repair(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}
	s = s[start:]
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return s
	}
	return repaired
}

// repairCandidates lists the texts stage 3 tries, most likely first: the
// unclosed tail, the balanced spans from last to first, then everything from
// the first '{'. Each candidate is also tried with trailing prose cut after
// its last closing brace.
func repairCandidates(body string) []string {
	spans, tail := BalancedSpans(body)
	var out []string
	seen := make(map[string]bool)
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
		if end := strings.LastIndex(c, "}"); end >= 0 && end < len(c)-1 {
			cut := c[:end+1]
			if !seen[cut] {
				seen[cut] = true
				out = append(out, cut)
			}
		}
	}
	add(tail)
	for i := len(spans) - 1; i >= 0; i-- {
		add(spans[i])
	}
	if start := strings.Index(body, "{"); start >= 0 {
		add(body[start:])
	}
	return out
}
