package policy

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

type token struct {
	text    string
	word    bool
	deleted bool
}

func tokenize(s string) []token {
	var toks []token
	var cur strings.Builder
	curWord := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, token{text: cur.String(), word: curWord})
			cur.Reset()
		}
	}
	for _, r := range s {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
		if cur.Len() > 0 && isWord != curWord {
			flush()
		}
		curWord = isWord
		cur.WriteRune(r)
	}
	flush()
	return toks
}

// Mentions reports whether text contains a word starting with the stem of term.
func (e *Engine) Mentions(text, term string) bool {
	stem := e.Stem(term)
	if stem == "" {
		return false
	}
	return mentionsStem(text, stem)
}

func mentionsStem(text, stem string) bool {
	for _, t := range tokenize(text) {
		if t.word && strings.HasPrefix(textnorm.Fold(t.text), stem) {
			return true
		}
	}
	return false
}

var (
	spaceRun        = regexp.MustCompile(`\s{2,}`)
	spaceBeforePunc = regexp.MustCompile(`\s+([,.;:!?)])`)
	emptyParens     = regexp.MustCompile(`\(\s*\)`)
)

// PurgeLine removes every word derived from the stem of term, together with
// templated lead-ins such as "importancia de ser", and tidies the spacing.
func (e *Engine) PurgeLine(line, term string) string {
	stem := e.Stem(term)
	if stem == "" {
		return line
	}
	return e.purgeLine(line, stem)
}

func (e *Engine) purgeLine(line, stem string) string {
	toks := tokenize(line)
	var words []int
	for i, t := range toks {
		if t.word {
			words = append(words, i)
		}
	}
	changed := false
	for wi, ti := range words {
		if !strings.HasPrefix(textnorm.Fold(toks[ti].text), stem) {
			continue
		}
		toks[ti].deleted = true
		changed = true
		e.dropLeadIn(toks, words, wi)
	}
	if !changed {
		return line
	}

	var b strings.Builder
	for _, t := range toks {
		if !t.deleted {
			b.WriteString(t.text)
		}
	}
	out := emptyParens.ReplaceAllString(b.String(), "")
	out = spaceRun.ReplaceAllString(out, " ")
	out = spaceBeforePunc.ReplaceAllString(out, "$1")
	out = strings.TrimSpace(out)
	if strings.IndexFunc(out, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) < 0 {
		return ""
	}
	return out
}

// dropLeadIn deletes a configured phrase that ends right before word wi.
func (e *Engine) dropLeadIn(toks []token, words []int, wi int) {
	for _, phrase := range e.phrases {
		n := len(phrase)
		if wi < n {
			continue
		}
		match := true
		for k := 0; k < n; k++ {
			ti := words[wi-n+k]
			if toks[ti].deleted || textnorm.Fold(toks[ti].text) != phrase[k] {
				match = false
				break
			}
			if k > 0 && !onlySpaceBetween(toks, words[wi-n+k-1], ti) {
				match = false
				break
			}
		}
		if !match || !onlySpaceBetween(toks, words[wi-1], words[wi]) {
			continue
		}
		for k := words[wi-n]; k < words[wi]; k++ {
			toks[k].deleted = true
		}
		return
	}
}

func onlySpaceBetween(toks []token, from, to int) bool {
	for i := from + 1; i < to; i++ {
		if strings.TrimSpace(toks[i].text) != "" {
			return false
		}
	}
	return true
}

// PurgeTerm purges every line of text. Lines left empty are dropped. Text
// that was a bulleted or multi-line list is re-rendered as bulleted text;
// a single plain line stays plain. Text without a mention is returned as is.
func (e *Engine) PurgeTerm(text, term string) string {
	stem := e.Stem(term)
	if stem == "" || !mentionsStem(text, stem) {
		return text
	}
	lines := textnorm.SplitLines(text)
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if c := e.purgeLine(l, stem); c != "" {
			kept = append(kept, c)
		}
	}
	if len(lines) == 1 && !strings.ContainsRune(text, '•') {
		if len(kept) == 0 {
			return ""
		}
		return kept[0]
	}
	return textnorm.ToBulletedText(kept)
}

// PurgeLayout purges text line by line, keeping each line's indentation and
// bullet, so titles and indented steps keep their shape. Lines left empty
// are dropped. Text without a mention is returned as is.
func (e *Engine) PurgeLayout(text, term string) string {
	stem := e.Stem(term)
	if stem == "" || !mentionsStem(text, stem) {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		body := strings.TrimLeft(l, " \t"+textnorm.Bullet)
		prefix := l[:len(l)-len(body)]
		if c := e.purgeLine(body, stem); c != "" {
			kept = append(kept, prefix+c)
		}
	}
	return strings.Join(kept, "\n")
}

// PurgeDeep applies PurgeTerm to every string leaf of a decoded JSON tree,
// leaving leaves under any of skipKeys untouched. Array elements purged to
// nothing are removed.
func (e *Engine) PurgeDeep(node interface{}, term string, skipKeys ...string) interface{} {
	if e.Stem(term) == "" {
		return node
	}
	skip := make(map[string]bool, len(skipKeys))
	for _, k := range skipKeys {
		skip[k] = true
	}
	return textnorm.WalkDropEmpty(node, func(key, s string) string {
		if skip[key] {
			return s
		}
		return e.PurgeTerm(s, term)
	})
}
