package curriculum

import (
	"strings"
	"unicode"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

// Hints are free-form signals used to pick a competency when none is named.
type Hints struct {
	Capacidades []string
	Tema        string
}

// Match is the canonical curriculum triple for a request.
type Match struct {
	Area        string   `json:"area"`
	Competencia string   `json:"competencia"`
	Capacidades []string `json:"capacidades"`
}

// Lookup pins area, competency and capacities to the catalog. The competency
// comes from the hint when it resolves, otherwise from keyword overlap with
// the hints, otherwise the first one in table order. A miss is a
// PolicyViolation.
func (c *Catalog) Lookup(area, competencyHint string, h Hints) (Match, error) {
	a, ok := c.FindArea(area)
	if !ok {
		return Match{}, apperrors.NewPolicyViolationError("Área no válida según el currículo: " + strings.TrimSpace(area))
	}
	if len(a.Competencias) == 0 {
		return Match{}, apperrors.NewPolicyViolationError("El área no tiene competencias registradas: " + a.Name)
	}

	idx := -1
	if strings.TrimSpace(competencyHint) != "" {
		idx = matchName(competencyHint, a.competencyNames())
		if idx < 0 {
			return Match{}, apperrors.NewPolicyViolationError("Competencia no válida para el área " + a.Name + ": " + strings.TrimSpace(competencyHint))
		}
	} else {
		idx = c.bestCompetency(a, h)
	}

	comp := a.Competencias[idx]
	if len(comp.Capacidades) == 0 {
		return Match{}, apperrors.NewPolicyViolationError("La competencia no tiene capacidades registradas: " + comp.Name)
	}

	caps := FilterCapacidades(h.Capacidades, comp.Capacidades)
	if len(caps) == 0 {
		caps = append([]string(nil), comp.Capacidades...)
	} else {
		caps = inAllowOrder(caps, comp.Capacidades)
	}
	return Match{Area: a.Name, Competencia: comp.Name, Capacidades: caps}, nil
}

// bestCompetency scores every competency by the number of distinct hint
// keywords found in its name and capacities. Ties keep table order.
func (c *Catalog) bestCompetency(a *Area, h Hints) int {
	hint := c.keywords(h.Tema + " " + strings.Join(h.Capacidades, " "))
	if len(hint) == 0 {
		return 0
	}
	best, bestScore := 0, 0
	for i, comp := range a.Competencias {
		words := c.keywords(comp.Name + " " + strings.Join(comp.Capacidades, " "))
		score := 0
		for w := range hint {
			if words[w] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func (c *Catalog) keywords(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.FieldsFunc(textnorm.Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < 3 || c.stop[w] {
			continue
		}
		out[w] = true
	}
	return out
}

func normCap(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// FilterCapacidades keeps the items of got that appear in allowed, compared
// case- and whitespace-insensitively, returning the allowed spelling.
func FilterCapacidades(got, allowed []string) []string {
	canon := make(map[string]string, len(allowed))
	for _, a := range allowed {
		canon[normCap(a)] = a
	}
	out := make([]string, 0, len(got))
	seen := map[string]bool{}
	for _, g := range got {
		a, ok := canon[normCap(g)]
		if !ok || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

func inAllowOrder(items, allowed []string) []string {
	keep := make(map[string]bool, len(items))
	for _, it := range items {
		keep[it] = true
	}
	out := make([]string, 0, len(items))
	for _, a := range allowed {
		if keep[a] {
			out = append(out, a)
		}
	}
	return out
}
