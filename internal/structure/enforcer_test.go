package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/LessonPlanner/internal/models"
)

func assertShape(t *testing.T, m *models.Momentos) {
	t.Helper()
	assert.Len(t, m.Inicio.Estrategias, PhaseStrategyLines)
	assert.Len(t, m.Cierre.Estrategias, PhaseStrategyLines)
	require.Len(t, m.Desarrollo.Actividades, DevelopmentActivities)
	for _, a := range m.Desarrollo.Actividades {
		assert.NotEmpty(t, a.Titulo)
		assert.GreaterOrEqual(t, len(a.Pasos), MinSteps)
		assert.Equal(t, len(a.Pasos), len(uniq(a.Pasos)), "steps must be unique: %v", a.Pasos)
	}
	assert.GreaterOrEqual(t, len(m.Inicio.Materiales), 2)
	assert.GreaterOrEqual(t, len(m.Desarrollo.Materiales), 2)
	assert.GreaterOrEqual(t, len(m.Cierre.Materiales), 1)
}

func uniq(items []string) map[string]bool {
	out := map[string]bool{}
	for _, it := range items {
		out[it] = true
	}
	return out
}

func TestEnforceEmptyMomentos(t *testing.T) {
	m := &models.Momentos{}
	Enforce(m, "El círculo")
	assertShape(t, m)

	assert.Equal(t, InicioStrategies, m.Inicio.Estrategias)
	assert.Equal(t, CierreStrategies, m.Cierre.Estrategias)
	assert.Equal(t, "Actividad 1: El círculo", m.Desarrollo.Actividades[0].Titulo)
	assert.Equal(t, "Actividad 3: El círculo", m.Desarrollo.Actividades[2].Titulo)
	assert.Equal(t, StepFillers, m.Desarrollo.Actividades[1].Pasos)
	assert.Equal(t, InicioMaterials, m.Inicio.Materiales)
	assert.Equal(t, CierreMaterials, m.Cierre.Materiales)
}

func TestEnforceTruncatesAndPads(t *testing.T) {
	m := &models.Momentos{
		Inicio: models.Momento{
			Estrategias: []string{"a", "b", "c", "d"},
			Materiales:  []string{"Proyector multimedia", "Parlante", "Laptop de la docente", "Pelotas"},
		},
		Desarrollo: models.Momento{
			Actividades: []models.Actividad{
				{Titulo: "Juego de formas", Pasos: []string{"Observar", "Observar", " "}},
				{Titulo: " ", Pasos: []string{"1", "2", "3", "4"}},
				{Titulo: "Tres"},
				{Titulo: "Cuatro"},
			},
			Materiales: []string{"Video educativo", "TV"},
		},
		Cierre: models.Momento{
			Estrategias: []string{"solo una"},
			Materiales:  []string{"Computadora"},
		},
	}
	Enforce(m, "Formas")
	assertShape(t, m)

	assert.Equal(t, []string{"a", "b", "c"}, m.Inicio.Estrategias)
	assert.Equal(t, []string{"Parlante", "Pelotas"}, m.Inicio.Materiales)
	assert.Equal(t, "Juego de formas", m.Desarrollo.Actividades[0].Titulo)
	assert.Equal(t, []string{"Observar", StepFillers[0], StepFillers[1]}, m.Desarrollo.Actividades[0].Pasos)
	assert.Equal(t, "Actividad 2: Formas", m.Desarrollo.Actividades[1].Titulo)
	assert.Equal(t, []string{"1", "2", "3", "4"}, m.Desarrollo.Actividades[1].Pasos)
	assert.Equal(t, "Tres", m.Desarrollo.Actividades[2].Titulo)
	assert.Equal(t, DesarrolloMaterials, m.Desarrollo.Materiales)
	assert.Equal(t, CierreStrategies, m.Cierre.Estrategias)
	assert.Equal(t, CierreMaterials, m.Cierre.Materiales)
}

func TestEnforceEmptyTopic(t *testing.T) {
	m := &models.Momentos{}
	Enforce(m, "  ")
	assert.Equal(t, "Actividad 1: el tema", m.Desarrollo.Actividades[0].Titulo)
}

func TestFilterMaterials(t *testing.T) {
	in := []string{"Proyector", "Televisión", "tele", "PC", "Laptop", "Proyección de imágenes",
		"Videos", "Parlantes/Altavoz", "Altavoz bluetooth", "Pictogramas", "Papel bond", "Papel bond"}
	assert.Equal(t, []string{"Parlantes/Altavoz", "Altavoz bluetooth", "Pictogramas", "Papel bond"}, FilterMaterials(in))
}

func TestTemplatesAreNotAliased(t *testing.T) {
	m := &models.Momentos{}
	Enforce(m, "x")
	m.Inicio.Estrategias[0] = "changed"
	assert.NotEqual(t, "changed", InicioStrategies[0])
}
