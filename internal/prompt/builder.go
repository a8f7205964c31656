// Package prompt renders the system and user messages sent to the model.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Corphon/LessonPlanner/internal/curriculum"
	"github.com/Corphon/LessonPlanner/internal/models"
)

//go:embed system.txt
var systemInicial string

// Prompt is a rendered pair of messages.
type Prompt struct {
	System string
	User   string
}

// Build renders the prompts for a validated request pinned to match.
func Build(req *models.LessonRequest, match curriculum.Match) Prompt {
	return Prompt{
		System: strings.TrimSpace(systemInicial) + "\n\n" + HardRules(match),
		User:   UserPrompt(req, match),
	}
}

// HardRules is the block that pins the model to the canonical curriculum.
func HardRules(match curriculum.Match) string {
	var b strings.Builder
	b.WriteString("REGLAS ESTRICTAS (NO INCUMPLIR):\n")
	fmt.Fprintf(&b, "- Área: %q (invariable)\n", match.Area)
	fmt.Fprintf(&b, "- Competencia: %q (exacta, no inventar otra)\n", match.Competencia)
	b.WriteString("- Capacidad(es) permitidas (usar solo de esta lista, no agregar otras):\n")
	for _, c := range match.Capacidades {
		b.WriteString("• " + c + "\n")
	}
	b.WriteString("- Si el usuario no selecciona capacidad, elige SOLO de esa lista.\n")
	b.WriteString("- No cambies nombres. No mezcles competencias de otras áreas.")
	return b.String()
}

// UserPrompt lists the request fields and closes with the allowed capacities.
func UserPrompt(req *models.LessonRequest, match curriculum.Match) string {
	var b strings.Builder
	b.WriteString("Genera una sesión para NIVEL INICIAL con estos datos del usuario (respétalos tal cual):\n")
	field := func(label, value string) {
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}
	field("Área", match.Area)
	field("Competencia", match.Competencia)
	field("Grado", req.Grado)
	field("Tema", req.Tema)
	field("Experiencia", req.Experiencia)
	field("Bimestre", req.Bimestre)
	field("Docente", req.Docente)
	field("Fecha", req.Fecha)
	field("Valor", req.Valor)
	field("Enfoques transversales", strings.Join(req.EnfoquesTransversales, ", "))
	field("Acciones observables", strings.Join(req.AccionesObservables, ", "))
	field("Sesión N°", fmt.Sprint(req.SessionNumber()))
	b.WriteString("\nContexto de recursos: aula de inicial con materiales simples (sin proyector por defecto; sí parlantes si aplica canción).\n")
	b.WriteString("\nDevuelve SOLO el JSON EXACTO con la estructura indicada en el mensaje del sistema.\n\n")
	b.WriteString("[CAPACIDADES PERMITIDAS – USAR SOLO ESTAS]\n")
	for _, c := range match.Capacidades {
		b.WriteString("- " + c + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
