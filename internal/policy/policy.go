// Package policy keeps a designated value term out of lesson text and
// tops list fields up to their minimum sizes.
package policy

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

// Policy is the configurable stemming data.
type Policy struct {
	Stem struct {
		MinLength int      `yaml:"min_length"`
		Roots     []string `yaml:"roots"`
		Suffixes  []string `yaml:"suffixes"`
	} `yaml:"stem"`
	Phrases []string `yaml:"phrases"`
}

// ParsePolicy decodes YAML policy data. Missing sections keep their zero
// value; MinLength defaults to 3.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if p.Stem.MinLength <= 0 {
		p.Stem.MinLength = 3
	}
	return &p, nil
}

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() *Policy {
	p, err := ParsePolicy(defaultPolicyYAML)
	if err != nil {
		panic(err)
	}
	return p
}

// Engine applies a Policy. It is immutable and safe for concurrent use.
type Engine struct {
	minLength int
	roots     []string
	suffixes  []string
	phrases   [][]string
}

// NewEngine prepares p for matching. A nil p selects DefaultPolicy.
func NewEngine(p *Policy) *Engine {
	if p == nil {
		p = DefaultPolicy()
	}
	e := &Engine{minLength: p.Stem.MinLength}
	for _, r := range p.Stem.Roots {
		if r = textnorm.Fold(r); r != "" {
			e.roots = append(e.roots, r)
		}
	}
	for _, s := range p.Stem.Suffixes {
		if s = textnorm.Fold(s); s != "" {
			e.suffixes = append(e.suffixes, s)
		}
	}
	sort.SliceStable(e.suffixes, func(i, j int) bool {
		return len(e.suffixes[i]) > len(e.suffixes[j])
	})
	for _, ph := range p.Phrases {
		if words := strings.Fields(textnorm.Fold(ph)); len(words) > 0 {
			e.phrases = append(e.phrases, words)
		}
	}
	return e
}

// Stem reduces term to a folded root that prefixes its common derivations,
// e.g. "Puntualidad" to "puntual". Multi-word terms use their longest word.
// Roots shorter than the minimum length fall back to the folded term.
func (e *Engine) Stem(term string) string {
	v := longestWord(textnorm.Fold(term))
	if v == "" {
		return ""
	}
	for _, root := range e.roots {
		if strings.Contains(v, root) {
			return root
		}
	}
	w := v
	for _, sfx := range e.suffixes {
		if strings.HasSuffix(w, sfx) {
			w = strings.TrimSuffix(w, sfx)
			break
		}
	}
	if len([]rune(w)) < e.minLength {
		return v
	}
	return w
}

func longestWord(s string) string {
	best := ""
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > len([]rune(best)) {
			best = w
		}
	}
	return best
}
