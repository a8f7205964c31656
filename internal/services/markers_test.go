package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/policy"
	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

func TestBuildMarkersEmptyDocument(t *testing.T) {
	m := NewMarkersBuilder(nil, nil).Build(&models.LessonDocument{}, nil)

	for _, k := range models.MarkerKeys {
		_, ok := m[k]
		assert.True(t, ok, "missing key %s", k)
	}
	assert.Equal(t, DefaultTituloSesion, m[models.MarkerTituloSesion])
	assert.Equal(t, "• "+DefaultInstrumento, m[models.MarkerInstrumento])
	assert.Equal(t, defaultCompetencia, m[models.MarkerCompetencia])
	assert.Equal(t, "", m[models.MarkerEnfoquesTransversales])
	assert.Equal(t,
		"• Elabora hoja de trabajo/dibujo terminado relacionado con el tema\n"+
			"• Participación observable en la dramatización o actividad principal",
		m[models.MarkerEvidenciaAprendizaje])
	assert.Len(t, textnorm.SplitLines(m[models.MarkerCriteriosEvaluacion]), 4)

	for _, k := range []string{
		models.MarkerCapacidades, models.MarkerDesempenos, models.MarkerInicio, models.MarkerInicioM,
		models.MarkerDesarrollo, models.MarkerDesarrolloM, models.MarkerCierre, models.MarkerCierreM,
	} {
		assert.NotEmpty(t, m[k], k)
	}
	assert.Contains(t, m[models.MarkerCapacidades], "el tema")
}

func TestBuildMarkersHeaderFallsBackToRequest(t *testing.T) {
	n := 3
	req := &models.LessonRequest{Grado: "5 años", Area: "Comunicación", Docente: "Ana", NumeroSesion: &n}
	doc := &models.LessonDocument{Datos: models.Datos{Grado: "4 años"}}

	m := NewMarkersBuilder(nil, nil).Build(doc, req)
	assert.Equal(t, "4 años", m[models.MarkerGrado])
	assert.Equal(t, "Comunicación", m[models.MarkerArea])
	assert.Equal(t, "Ana", m[models.MarkerDocente])
	assert.Equal(t, "3", m[models.MarkerSesionN])
	assert.Equal(t, "Se comunica oralmente en su lengua materna.", m[models.MarkerCompetencia])
}

func TestBuildMarkersPhaseText(t *testing.T) {
	doc := &models.LessonDocument{Filas: []models.Fila{{
		Momentos: models.Momentos{
			Desarrollo: models.Momento{
				Estrategias: []string{"Juego libre"},
				Actividades: []models.Actividad{
					{Titulo: "Actividad 1: Círculos", Pasos: []string{"Observa", " ", "Dibuja"}},
					{Pasos: []string{"Comparte"}},
				},
				Materiales: []string{"Crayolas", "Papel"},
			},
		},
	}}}

	m := NewMarkersBuilder(nil, nil).Build(doc, nil)
	assert.Equal(t,
		"• Juego libre\nActividad 1: Círculos\n  • Observa\n  • Dibuja\nActividad 2\n  • Comparte",
		m[models.MarkerDesarrollo])
	assert.Equal(t, "• Crayolas\n• Papel", m[models.MarkerDesarrolloM])
}

func TestBuildMarkersSplitsInstrumentsOutOfEvidence(t *testing.T) {
	doc := &models.LessonDocument{Filas: []models.Fila{{
		EvidenciaAprendizaje: []string{"Lista de cotejo", "Dibujo libre del círculo"},
		Instrumento:          []string{"Observación directa"},
	}}}

	m := NewMarkersBuilder(nil, nil).Build(doc, nil)
	assert.Equal(t, "• Realiza un dibujo del círculo", m[models.MarkerEvidenciaAprendizaje])
	assert.Equal(t, "• Observación directa\n• Lista de cotejo", m[models.MarkerInstrumento])
}

func TestBuildMarkersPurgesValueEverywhereButValor(t *testing.T) {
	req := &models.LessonRequest{
		Tema:                  "El reloj",
		Valor:                 "Puntualidad",
		EnfoquesTransversales: []string{"Enfoque inclusivo"},
	}
	doc := &models.LessonDocument{
		Datos: models.Datos{Competencia: "Convive con puntualidad"},
		Filas: []models.Fila{{
			TituloSesion: "El reloj y la puntualidad",
			Desempenos:   []string{"Llega puntual al aula", "Cuenta objetos"},
			Acciones:     []string{"Es puntual"},
		}},
	}

	engine := policy.NewEngine(nil)
	m := NewMarkersBuilder(engine, nil).Build(doc, req)

	assert.Equal(t, "Puntualidad", m[models.MarkerValor])
	assert.Equal(t, "El reloj y la", m[models.MarkerTituloSesion])
	assert.Equal(t, "Convive con", m[models.MarkerCompetencia])
	assert.Equal(t, "• Llega al aula\n• Cuenta objetos", m[models.MarkerDesempenos])
	assert.True(t, strings.HasPrefix(m[models.MarkerEnfoquesTransversales], "• Enfoque inclusivo o de atención a la diversidad: "))

	for k, v := range m {
		if k == models.MarkerValor {
			continue
		}
		assert.False(t, engine.Mentions(v, "Puntualidad"), "%s still mentions the value: %q", k, v)
	}
}

func TestBuildMarkersEnfoquesFromRequest(t *testing.T) {
	req := &models.LessonRequest{EnfoquesTransversales: []string{"Enfoque inclusivo"}}
	m := NewMarkersBuilder(nil, nil).Build(&models.LessonDocument{}, req)
	assert.True(t, strings.HasPrefix(m[models.MarkerEnfoquesTransversales], "• Enfoque inclusivo o de atención a la diversidad: "))
}

func TestBuildMarkersPurgeKeepsPhaseLayout(t *testing.T) {
	doc := &models.LessonDocument{Filas: []models.Fila{{
		Momentos: models.Momentos{
			Desarrollo: models.Momento{
				Estrategias: []string{"Juego libre"},
				Actividades: []models.Actividad{
					{Titulo: "Actividad 1: Llegamos puntuales", Pasos: []string{"Observa el reloj", "Llega puntual"}},
				},
			},
		},
	}}}

	m := NewMarkersBuilder(nil, nil).Build(doc, &models.LessonRequest{Valor: "Puntualidad"})
	assert.Equal(t,
		"• Juego libre\nActividad 1: Llegamos\n  • Observa el reloj\n  • Llega",
		m[models.MarkerDesarrollo])
}

func TestBuildMarkersPadsCriteria(t *testing.T) {
	doc := &models.LessonDocument{Filas: []models.Fila{{
		CriteriosEvaluacion: []string{"Reconoce círculos, cuadrados y triángulos"},
	}}}
	m := NewMarkersBuilder(nil, nil).Build(doc, &models.LessonRequest{Tema: "Figuras"})

	lines := textnorm.SplitLines(m[models.MarkerCriteriosEvaluacion])
	require.Len(t, lines, 4)
	assert.Equal(t, "Reconoce círculos, cuadrados y triángulos", lines[0])
	assert.Equal(t, "Muestra comprensión de “Figuras” con acciones/gestos o palabras.", lines[1])
}

func TestBuildMarkersRepairsEncoding(t *testing.T) {
	doc := &models.LessonDocument{Datos: models.Datos{Docente: "RamÃ³n"}}
	m := NewMarkersBuilder(nil, nil).Build(doc, nil)
	assert.Equal(t, "Ramón", m[models.MarkerDocente])
}

func TestFallbackCompetencia(t *testing.T) {
	tests := []struct{ area, want string }{
		{"Inglés", "Se comunica oralmente en inglés como lengua extranjera."},
		{"COMUNICACIÓN", "Se comunica oralmente en su lengua materna."},
		{"Personal Social", "Construye su identidad y convive y participa democráticamente."},
		{"Ciencia y Tecnología", "Indaga mediante acciones para construir sus conocimientos."},
		{"Psicomotriz", "Se desenvuelve de manera autónoma a través de su motricidad."},
		{"Matemática", defaultCompetencia},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FallbackCompetencia(tt.area), tt.area)
	}
}
