// Package jsonrecovery turns untrusted model output into a decoded JSON
// object through an ordered cascade of parse strategies.
package jsonrecovery

import (
	"encoding/json"
	"strings"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
)

// SampleSize is the number of characters of cleaned text kept on failure.
const SampleSize = 800

// Attempt tries to produce an object from cleaned text.
type Attempt func(cleaned string) (map[string]interface{}, bool)

// Strategy is one named stage of the cascade.
type Strategy struct {
	Name    string
	Attempt Attempt
}

// Strategies returns the cascade in evaluation order. The order is part of
// the contract: cheaper, more precise stages run before invasive ones.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "direct", Attempt: parseDirect},
		{Name: "balanced", Attempt: parseBalanced},
		{Name: "repair", Attempt: parseRepaired},
	}
}

// Result is a recovered object and the stage that produced it.
type Result struct {
	Object   map[string]interface{}
	Strategy string
	Cleaned  string
}

// Recoverer runs a fixed list of strategies.
type Recoverer struct {
	strategies []Strategy
}

// New returns a Recoverer over the given strategies, or the default cascade
// when none are passed.
func New(strategies ...Strategy) *Recoverer {
	if len(strategies) == 0 {
		strategies = Strategies()
	}
	return &Recoverer{strategies: strategies}
}

// Recover cleans raw and returns the first object any strategy yields. When
// every strategy fails it returns a no_valid_json AppError carrying a sample.
func (r *Recoverer) Recover(raw string) (*Result, error) {
	cleaned := Clean(raw)
	for _, s := range r.strategies {
		if obj, ok := s.Attempt(cleaned); ok {
			return &Result{Object: obj, Strategy: s.Name, Cleaned: cleaned}, nil
		}
	}
	return nil, apperrors.NewNoValidJSONError(sample(cleaned))
}

// Recover runs the default cascade.
func Recover(raw string) (*Result, error) {
	return New().Recover(raw)
}

func sample(s string) string {
	runes := []rune(s)
	if len(runes) > SampleSize {
		runes = runes[:SampleSize]
	}
	return string(runes)
}

func decodeObject(s string) (map[string]interface{}, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != '{' {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, obj != nil
}

// StripFences returns the body of the first markdown code fence, or s
// unchanged when it has none.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "```")
	if open < 0 {
		return s
	}
	body := s[open+3:]
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// TrimProse cuts everything before the first '{' and after the last '}'.
func TrimProse(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}
	s = s[start:]
	if end := strings.LastIndex(s, "}"); end >= 0 {
		s = s[:end+1]
	}
	return strings.TrimSpace(s)
}

func parseDirect(cleaned string) (map[string]interface{}, bool) {
	return decodeObject(TrimProse(StripFences(cleaned)))
}

func parseBalanced(cleaned string) (map[string]interface{}, bool) {
	spans, _ := BalancedSpans(cleaned)
	for _, span := range spans {
		if obj, ok := decodeObject(span); ok {
			return obj, true
		}
	}
	return nil, false
}

func parseRepaired(cleaned string) (map[string]interface{}, bool) {
	for _, candidate := range repairCandidates(StripFences(cleaned)) {
		if obj, ok := decodeObject(Repair(candidate)); ok {
			return obj, true
		}
	}
	return nil, false
}

// ExtractBalanced returns the first outermost {...} span whose braces
// balance, ignoring braces inside string literals.
func ExtractBalanced(s string) (string, bool) {
	spans, _ := BalancedSpans(s)
	if len(spans) == 0 {
		return "", false
	}
	return spans[0], true
}

// BalancedSpans returns every top-level {...} span whose braces balance, in
// order of appearance, and the unclosed tail that starts at a '{' never
// matched before the end of s. Braces inside string literals are ignored.
func BalancedSpans(s string) (spans []string, tail string) {
	depth, start := 0, -1
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				spans = append(spans, s[start:i+1])
				start = -1
			}
		}
	}
	if depth > 0 {
		tail = s[start:]
	}
	return spans, tail
}
