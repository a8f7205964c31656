package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLessonTolerantShapes(t *testing.T) {
	tree := map[string]interface{}{
		"datos": map[string]interface{}{
			"grado":        "4 años",
			"numeroSesion": 2.0,
			"capacidades":  "Comunica su comprensión; Usa estrategias",
			"valor":        " Respeto ",
		},
		"filas": []interface{}{
			map[string]interface{}{
				"tituloSesion":         "El círculo",
				"desempenosPrecisados": []interface{}{"Identifica círculos", ""},
				"instrumento":          "Lista de cotejo",
				"momentos": map[string]interface{}{
					"inicio": map[string]interface{}{
						"estrategias": []interface{}{"Saludo", "Saludo"},
					},
					"desarrollo": map[string]interface{}{
						"actividades": []interface{}{
							map[string]interface{}{"titulo": "Actividad 1", "pasos": []interface{}{"a", "b"}},
							"Actividad 2: juego libre",
							42.0,
						},
					},
					"cierre": "no es un objeto",
				},
			},
		},
	}

	doc := DecodeLesson(tree)
	assert.Equal(t, "4 años", doc.Datos.Grado)
	assert.Equal(t, "2", doc.Datos.NumeroSesion)
	assert.Equal(t, "Respeto", doc.Datos.Valor)
	assert.Equal(t, []string{"Comunica su comprensión", "Usa estrategias"}, doc.Datos.Capacidades)

	row := doc.Row()
	assert.Equal(t, "El círculo", row.TituloSesion)
	assert.Equal(t, []string{"Identifica círculos"}, row.Desempenos)
	assert.Equal(t, []string{"Lista de cotejo"}, row.Instrumento)
	assert.Equal(t, []string{"Saludo"}, row.Momentos.Inicio.Estrategias)
	require.Len(t, row.Momentos.Desarrollo.Actividades, 2)
	assert.Equal(t, Actividad{Titulo: "Actividad 1", Pasos: []string{"a", "b"}}, row.Momentos.Desarrollo.Actividades[0])
	assert.Equal(t, "Actividad 2: juego libre", row.Momentos.Desarrollo.Actividades[1].Titulo)
	assert.Empty(t, row.Momentos.Cierre.Estrategias)
}

func TestDecodeLessonAlternateRowKey(t *testing.T) {
	doc := DecodeLesson(map[string]interface{}{
		"fila":        map[string]interface{}{"tituloSesion": "Formas"},
		"capacidades": []interface{}{"Modela objetos"},
	})
	assert.Equal(t, "Formas", doc.Row().TituloSesion)
	assert.Equal(t, []string{"Modela objetos"}, doc.Datos.Capacidades)
}

func TestDecodeLessonEmpty(t *testing.T) {
	doc := DecodeLesson(map[string]interface{}{})
	require.Len(t, doc.Filas, 1)
	assert.Empty(t, doc.Row().Momentos.Desarrollo.Actividades)
}

func TestSessionNumber(t *testing.T) {
	r := &LessonRequest{}
	assert.Equal(t, 1, r.SessionNumber())
	n := 3
	r.NumeroSesion = &n
	assert.Equal(t, 3, r.SessionNumber())
}

func TestMarkerKeysArePlainOrBulleted(t *testing.T) {
	assert.Len(t, MarkerKeys, 23)
	assert.True(t, IsPlainMarker(MarkerCompetencia))
	assert.False(t, IsPlainMarker(MarkerInicio))
}
