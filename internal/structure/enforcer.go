// Package structure forces the three-phase shape of an Inicial lesson.
package structure

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

const (
	// PhaseStrategyLines is the exact number of strategy lines in inicio and cierre.
	PhaseStrategyLines = 3
	// DevelopmentActivities is the exact number of activities in desarrollo.
	DevelopmentActivities = 3
	// MinSteps is the minimum number of steps per activity.
	MinSteps = 3
)

var (
	InicioStrategies = []string{
		"Saludo lúdico: saludo en círculo con movimiento y rima corta.",
		"Motivación: mostrar imagen u objeto relacionado con el tema.",
		"Saberes/Exploración previa: preguntas simples sobre experiencias previas.",
	}
	CierreStrategies = []string{
		"Socialización: compartir qué fue lo que más les gustó o aprendieron.",
		"Refuerzo de lo aprendido: recordar en voz alta la idea principal del tema.",
		"Canción de despedida: rondita corta relacionada al tema.",
	}
	StepFillers = []string{
		"Seguir indicaciones simples de la docente.",
		"Repetir la acción con apoyo de la docente.",
		"Compartir lo realizado con un compañero.",
	}
	InicioMaterials     = []string{"Tarjetas/Láminas", "Pizarra y plumones"}
	DesarrolloMaterials = []string{"Papel bond/Crayolas", "Hojas impresas"}
	CierreMaterials     = []string{"Parlantes/Altavoz"}
)

const (
	minInicioMaterials     = 2
	minDesarrolloMaterials = 2
	minCierreMaterials     = 1
)

// heavyTech matches classroom technology the lesson must not rely on.
// Audio equipment is allowed.
var heavyTech = regexp.MustCompile(`\b(proyector(es)?|televisor(es)?|television|tele|tv|computador(a|as|es)?|pc|pcs|laptops?|proyeccion(es)?|videos?)\b`)

// FilterMaterials drops heavy-technology items, trims and deduplicates.
func FilterMaterials(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range textnorm.CleanItems(items) {
		if heavyTech.MatchString(textnorm.Fold(it)) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Enforce repairs m in place so that inicio and cierre have exactly three
// strategy lines, desarrollo has exactly three activities with at least three
// steps each, and every phase has its minimum of allowed materials.
func Enforce(m *models.Momentos, tema string) {
	tema = strings.TrimSpace(tema)
	if tema == "" {
		tema = "el tema"
	}

	m.Inicio.Estrategias = fixedLines(m.Inicio.Estrategias, InicioStrategies)
	m.Inicio.Materiales = materials(m.Inicio.Materiales, minInicioMaterials, InicioMaterials)

	m.Desarrollo.Estrategias = textnorm.CleanItems(m.Desarrollo.Estrategias)
	m.Desarrollo.Actividades = activities(m.Desarrollo.Actividades, tema)
	m.Desarrollo.Materiales = materials(m.Desarrollo.Materiales, minDesarrolloMaterials, DesarrolloMaterials)

	m.Cierre.Estrategias = fixedLines(m.Cierre.Estrategias, CierreStrategies)
	m.Cierre.Materiales = materials(m.Cierre.Materiales, minCierreMaterials, CierreMaterials)
}

// fixedLines keeps the first three lines when there are enough, otherwise
// replaces them with the template.
func fixedLines(lines, template []string) []string {
	lines = textnorm.CleanItems(lines)
	if len(lines) < PhaseStrategyLines {
		return append([]string(nil), template...)
	}
	return lines[:PhaseStrategyLines]
}

func materials(items []string, min int, fallback []string) []string {
	out := FilterMaterials(items)
	present := make(map[string]bool, len(out))
	for _, it := range out {
		present[textnorm.Fold(it)] = true
	}
	for _, fb := range fallback {
		if len(out) >= min {
			break
		}
		if !present[textnorm.Fold(fb)] {
			present[textnorm.Fold(fb)] = true
			out = append(out, fb)
		}
	}
	return out
}

func activities(acts []models.Actividad, tema string) []models.Actividad {
	out := make([]models.Actividad, 0, DevelopmentActivities)
	for i := 0; i < DevelopmentActivities; i++ {
		var a models.Actividad
		if i < len(acts) {
			a = acts[i]
		}
		a.Titulo = strings.TrimSpace(a.Titulo)
		if a.Titulo == "" {
			a.Titulo = fmt.Sprintf("Actividad %d: %s", i+1, tema)
		}
		a.Pasos = steps(a.Pasos)
		out = append(out, a)
	}
	return out
}

func steps(pasos []string) []string {
	out := textnorm.CleanItems(pasos)
	present := make(map[string]bool, len(out))
	for _, p := range out {
		present[p] = true
	}
	for _, f := range StepFillers {
		if len(out) >= MinSteps {
			break
		}
		if !present[f] {
			out = append(out, f)
		}
	}
	return out
}
