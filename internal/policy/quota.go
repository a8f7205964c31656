package policy

import (
	"fmt"
	"strings"

	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

// EnsureMinimum returns the lines of text as bulleted items, padded to at
// least min entries. Padding takes fallback entries by position and, once those run
// out, generic lines about topic.
func EnsureMinimum(text string, min int, fallback []string, topic string) string {
	items := textnorm.SplitLines(text)
	return textnorm.ToBulletedText(PadItems(items, min, fallback, topic))
}

// PadItems is EnsureMinimum over an item list. Duplicates are never added.
func PadItems(items []string, min int, fallback []string, topic string) []string {
	out := textnorm.CleanItems(items)
	present := make(map[string]bool, len(out))
	for _, it := range out {
		present[it] = true
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "el tema"
	}
	generic := 0
	for idx := len(out); len(out) < min; idx++ {
		var next string
		if idx < len(fallback) && strings.TrimSpace(fallback[idx]) != "" {
			next = strings.TrimSpace(fallback[idx])
		} else {
			generic++
			next = genericLine(topic, generic)
		}
		if present[next] {
			if idx >= len(fallback) {
				continue
			}
			generic++
			next = genericLine(topic, generic)
			if present[next] {
				continue
			}
		}
		present[next] = true
		out = append(out, next)
	}
	return out
}

func genericLine(topic string, n int) string {
	if n <= 1 {
		return fmt.Sprintf("Actividad sobre %s.", topic)
	}
	return fmt.Sprintf("Actividad %d sobre %s.", n, topic)
}
