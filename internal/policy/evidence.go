package policy

import (
	"regexp"
	"strings"

	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

var evidenceRewrites = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?i)^participaci[oó]n en\b`), "Participa en"},
	{regexp.MustCompile(`(?i)^dibujo( libre)?\b`), "Realiza un dibujo"},
	{regexp.MustCompile(`(?i)^hoja de trabajo:?\s*`), "Completa una hoja de trabajo: "},
	{regexp.MustCompile(`(?i)^producto:\s*`), "Elabora "},
}

// RewriteEvidenceLine turns a label-style evidence line into an action the
// student performs. Unmatched lines are returned trimmed.
func RewriteEvidenceLine(line string) string {
	t := strings.TrimSpace(line)
	for _, rw := range evidenceRewrites {
		t = rw.pattern.ReplaceAllString(t, rw.repl)
	}
	t = strings.TrimSpace(t)
	return strings.TrimSuffix(t, ":")
}

// RewriteEvidence applies RewriteEvidenceLine to every line of text and
// returns bulleted text.
func RewriteEvidence(text string) string {
	items := textnorm.CleanItems(textnorm.SplitLines(text))
	for i, it := range items {
		items[i] = RewriteEvidenceLine(it)
	}
	return textnorm.ToBulletedText(items)
}

// instrumentPatterns match assessment tools on folded text.
var instrumentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`lista\s+de\s+cotejo`),
	regexp.MustCompile(`observacion\s+directa`),
	regexp.MustCompile(`preguntas?\s+orales?`),
	regexp.MustCompile(`rubri?ca`),
	regexp.MustCompile(`registro\s+anec(d|t)otico`),
	regexp.MustCompile(`escala\s+de\s+valoracion`),
	regexp.MustCompile(`guia\s+de\s+observacion`),
}

// IsInstrument reports whether item names an assessment instrument.
func IsInstrument(item string) bool {
	f := textnorm.Fold(item)
	for _, rx := range instrumentPatterns {
		if rx.MatchString(f) {
			return true
		}
	}
	return false
}

// SplitInstrumentsFromEvidence moves items that name assessment instruments
// out of the evidence list. Order is preserved in both outputs.
func SplitInstrumentsFromEvidence(items []string) (evidence, instruments []string) {
	for _, it := range textnorm.CleanItems(items) {
		if IsInstrument(it) {
			instruments = append(instruments, it)
		} else {
			evidence = append(evidence, it)
		}
	}
	return evidence, instruments
}
