// internal/models/lesson.go
package models

import (
	"strconv"
	"strings"

	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

// LessonDocument is the model's lesson after recovery, in typed form.
type LessonDocument struct {
	Datos Datos  `json:"datos"`
	Filas []Fila `json:"filas"`
}

// Datos holds the header block.
type Datos struct {
	TituloSesion          string   `json:"tituloSesion,omitempty"`
	Grado                 string   `json:"grado"`
	Bimestre              string   `json:"bimestre"`
	Area                  string   `json:"area"`
	Experiencia           string   `json:"experiencia"`
	Docente               string   `json:"docente"`
	Fecha                 string   `json:"fecha"`
	NumeroSesion          string   `json:"numeroSesion"`
	Competencia           string   `json:"competencia"`
	Capacidades           []string `json:"capacidades"`
	EnfoquesTransversales []string `json:"enfoquesTransversales"`
	Valor                 string   `json:"valor"`
	Acciones              []string `json:"acciones"`
	Desempenos            []string `json:"desempenos,omitempty"`
	EvidenciaAprendizaje  []string `json:"evidenciaAprendizaje,omitempty"`
	CriteriosEvaluacion   []string `json:"criteriosEvaluacion,omitempty"`
	Instrumento           []string `json:"instrumento,omitempty"`
}

// Fila is one row of the planning table.
type Fila struct {
	TituloSesion          string   `json:"tituloSesion"`
	Proposito             string   `json:"proposito,omitempty"`
	Capacidades           []string `json:"capacidades,omitempty"`
	Desempenos            []string `json:"desempenos"`
	EvidenciaAprendizaje  []string `json:"evidenciaAprendizaje"`
	CriteriosEvaluacion   []string `json:"criteriosEvaluacion"`
	Instrumento           []string `json:"instrumento"`
	EnfoquesTransversales []string `json:"enfoquesTransversales,omitempty"`
	Valor                 string   `json:"valor,omitempty"`
	Acciones              []string `json:"acciones,omitempty"`
	Momentos              Momentos `json:"momentos"`
}

// Momentos are the three lesson phases.
type Momentos struct {
	Inicio     Momento `json:"inicio"`
	Desarrollo Momento `json:"desarrollo"`
	Cierre     Momento `json:"cierre"`
}

// Momento is one phase: strategy lines, activities and materials.
type Momento struct {
	Estrategias []string    `json:"estrategias"`
	Actividades []Actividad `json:"actividades,omitempty"`
	Materiales  []string    `json:"materiales"`
}

// Actividad is a titled activity with ordered steps.
type Actividad struct {
	Titulo string   `json:"titulo"`
	Pasos  []string `json:"pasos"`
}

// Row returns the first row, creating it when the model sent none.
func (d *LessonDocument) Row() *Fila {
	if len(d.Filas) == 0 {
		d.Filas = append(d.Filas, Fila{})
	}
	return &d.Filas[0]
}

// DecodeLesson reads a loosely typed object into a LessonDocument. Scalars
// are stringified, single values become one-item lists and unknown keys are
// ignored. The first row comes from "filas[0]" or, failing that, "fila".
func DecodeLesson(tree map[string]interface{}) *LessonDocument {
	doc := &LessonDocument{}
	datos := asMap(tree["datos"])
	doc.Datos = decodeDatos(datos)
	if len(doc.Datos.Capacidades) == 0 {
		doc.Datos.Capacidades = asList(tree["capacidades"])
	}

	var row map[string]interface{}
	if filas, ok := tree["filas"].([]interface{}); ok && len(filas) > 0 {
		row = asMap(filas[0])
	}
	if row == nil {
		row = asMap(tree["fila"])
	}
	doc.Filas = []Fila{decodeFila(row)}
	return doc
}

func decodeDatos(m map[string]interface{}) Datos {
	return Datos{
		TituloSesion:          asString(m["tituloSesion"]),
		Grado:                 asString(m["grado"]),
		Bimestre:              asString(m["bimestre"]),
		Area:                  asString(m["area"]),
		Experiencia:           asString(m["experiencia"]),
		Docente:               asString(m["docente"]),
		Fecha:                 asString(m["fecha"]),
		NumeroSesion:          firstString(m["numeroSesion"], m["sesionN"]),
		Competencia:           asString(m["competencia"]),
		Capacidades:           asList(m["capacidades"]),
		EnfoquesTransversales: asList(m["enfoquesTransversales"]),
		Valor:                 asString(m["valor"]),
		Acciones:              asList(m["acciones"]),
		Desempenos:            asList(m["desempenos"]),
		EvidenciaAprendizaje:  asList(m["evidenciaAprendizaje"]),
		CriteriosEvaluacion:   asList(m["criteriosEvaluacion"]),
		Instrumento:           asList(m["instrumento"]),
	}
}

func decodeFila(m map[string]interface{}) Fila {
	desempenos := asList(m["desempenos"])
	if len(desempenos) == 0 {
		desempenos = asList(m["desempenosPrecisados"])
	}
	acciones := asList(m["acciones"])
	if len(acciones) == 0 {
		acciones = asList(m["accionesObservables"])
	}
	momentos := asMap(m["momentos"])
	return Fila{
		TituloSesion:          asString(m["tituloSesion"]),
		Proposito:             asString(m["proposito"]),
		Capacidades:           asList(m["capacidades"]),
		Desempenos:            desempenos,
		EvidenciaAprendizaje:  asList(m["evidenciaAprendizaje"]),
		CriteriosEvaluacion:   asList(m["criteriosEvaluacion"]),
		Instrumento:           asList(m["instrumento"]),
		EnfoquesTransversales: asList(m["enfoquesTransversales"]),
		Valor:                 asString(m["valor"]),
		Acciones:              acciones,
		Momentos: Momentos{
			Inicio:     decodeMomento(asMap(momentos["inicio"])),
			Desarrollo: decodeMomento(asMap(momentos["desarrollo"])),
			Cierre:     decodeMomento(asMap(momentos["cierre"])),
		},
	}
}

func decodeMomento(m map[string]interface{}) Momento {
	return Momento{
		Estrategias: asList(m["estrategias"]),
		Actividades: decodeActividades(m["actividades"]),
		Materiales:  asList(m["materiales"]),
	}
}

func decodeActividades(v interface{}) []Actividad {
	var items []interface{}
	switch t := v.(type) {
	case []interface{}:
		items = t
	case map[string]interface{}, string:
		items = []interface{}{t}
	default:
		return nil
	}
	out := make([]Actividad, 0, len(items))
	for _, it := range items {
		switch a := it.(type) {
		case map[string]interface{}:
			out = append(out, Actividad{
				Titulo: firstString(a["titulo"], a["nombre"]),
				Pasos:  asList(a["pasos"]),
			})
		case string:
			if s := strings.TrimSpace(a); s != "" {
				out = append(out, Actividad{Titulo: s})
			}
		}
	}
	return out
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		return strings.Join(textnorm.ToItemList(t), ", ")
	default:
		return ""
	}
}

func firstString(vs ...interface{}) string {
	for _, v := range vs {
		if s := asString(v); s != "" {
			return s
		}
	}
	return ""
}

func asList(v interface{}) []string {
	if _, ok := v.(map[string]interface{}); ok {
		return nil
	}
	items := textnorm.ToItemList(v)
	if len(items) == 0 {
		return nil
	}
	return items
}
