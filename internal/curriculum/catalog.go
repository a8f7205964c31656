// Package curriculum resolves free-form area and competency names against the
// official curriculum table and the transversal-focus catalogue.
package curriculum

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

//go:embed curriculum.yaml
var defaultCatalogYAML []byte

// Competency is one competency and its allowed capacities.
type Competency struct {
	Name        string   `yaml:"name" json:"nombre"`
	Capacidades []string `yaml:"capacidades" json:"capacidades"`
}

// Area groups competencies.
type Area struct {
	Name         string       `yaml:"name" json:"area"`
	Competencias []Competency `yaml:"competencias" json:"competencias"`
}

// Enfoque is a transversal focus with its short description.
type Enfoque struct {
	Name        string `yaml:"name" json:"nombre"`
	Description string `yaml:"description" json:"descripcion"`
}

// Catalog is the reference data used to pin area, competency and capacities.
type Catalog struct {
	Areas     []Area    `yaml:"areas" json:"areas"`
	Enfoques  []Enfoque `yaml:"enfoques" json:"enfoques"`
	Valores   []string  `yaml:"valores" json:"valores"`
	Stopwords []string  `yaml:"stopwords" json:"-"`

	stop map[string]bool
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	if len(c.Areas) == 0 {
		return nil, fmt.Errorf("parse curriculum: no areas")
	}
	c.stop = make(map[string]bool, len(c.Stopwords))
	for _, w := range c.Stopwords {
		c.stop[textnorm.Fold(w)] = true
	}
	return &c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// AreaNames lists the areas in table order.
func (c *Catalog) AreaNames() []string {
	out := make([]string, 0, len(c.Areas))
	for _, a := range c.Areas {
		out = append(out, a.Name)
	}
	return out
}

// matchName returns the index of the name matching q: folded exact first,
// then prefix in either direction, then containment in either direction.
func matchName(q string, names []string) int {
	q = textnorm.FoldWords(q)
	if q == "" {
		return -1
	}
	folded := make([]string, len(names))
	for i, n := range names {
		folded[i] = textnorm.FoldWords(n)
		if folded[i] == q {
			return i
		}
	}
	for i, k := range folded {
		if strings.HasPrefix(k, q) || strings.HasPrefix(q, k) {
			return i
		}
	}
	for i, k := range folded {
		if strings.Contains(k, q) || strings.Contains(q, k) {
			return i
		}
	}
	return -1
}

// FindArea resolves a free-form area name.
func (c *Catalog) FindArea(name string) (*Area, bool) {
	i := matchName(name, c.AreaNames())
	if i < 0 {
		return nil, false
	}
	return &c.Areas[i], true
}

func (a *Area) competencyNames() []string {
	out := make([]string, 0, len(a.Competencias))
	for _, comp := range a.Competencias {
		out = append(out, comp.Name)
	}
	return out
}

// FindEnfoque resolves a free-form focus name such as "Enfoque inclusivo".
func (c *Catalog) FindEnfoque(name string) (Enfoque, bool) {
	names := make([]string, 0, len(c.Enfoques))
	for _, e := range c.Enfoques {
		names = append(names, e.Name)
	}
	i := matchName(name, names)
	if i < 0 {
		return Enfoque{}, false
	}
	return c.Enfoques[i], true
}

// Detail returns "Nombre: descripción" for a known focus, or name unchanged.
func (c *Catalog) Detail(name string) string {
	e, ok := c.FindEnfoque(name)
	if !ok {
		return strings.TrimSpace(name)
	}
	return e.Name + ": " + e.Description
}

// DetailList maps names to their detailed form, dropping duplicates of the
// same official focus and keeping input order.
func (c *Catalog) DetailList(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range textnorm.CleanItems(names) {
		key := n
		if e, ok := c.FindEnfoque(n); ok {
			key = e.Name
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c.Detail(n))
	}
	return out
}

// IsValor reports whether v is one of the listed values.
func (c *Catalog) IsValor(v string) bool {
	f := textnorm.Fold(v)
	for _, x := range c.Valores {
		if textnorm.Fold(x) == f {
			return true
		}
	}
	return false
}
