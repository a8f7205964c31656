// internal/models/markers.go
package models

// MarkersRecord is the flat output consumed by the document template. Keys
// are a fixed contract; see MarkerKeys.
type MarkersRecord map[string]string

const (
	MarkerTituloSesion          = "tituloSesion"
	MarkerGrado                 = "grado"
	MarkerBimestre              = "bimestre"
	MarkerArea                  = "area"
	MarkerExperiencia           = "experiencia"
	MarkerDocente               = "docente"
	MarkerFecha                 = "fecha"
	MarkerSesionN               = "sesionN"
	MarkerCompetencia           = "competencia"
	MarkerCapacidades           = "capacidades"
	MarkerDesempenos            = "desempenos"
	MarkerEvidenciaAprendizaje  = "evidenciaAprendizaje"
	MarkerCriteriosEvaluacion   = "criteriosEvaluacion"
	MarkerInstrumento           = "instrumento"
	MarkerEnfoquesTransversales = "enfoquesTransversales"
	MarkerValor                 = "valor"
	MarkerAcciones              = "acciones"
	MarkerInicio                = "inicio"
	MarkerInicioM               = "inicioM"
	MarkerDesarrollo            = "desarrollo"
	MarkerDesarrolloM           = "desarrolloM"
	MarkerCierre                = "cierre"
	MarkerCierreM               = "cierreM"
)

// MarkerKeys lists every key in template order.
var MarkerKeys = []string{
	MarkerTituloSesion, MarkerGrado, MarkerBimestre, MarkerArea, MarkerExperiencia,
	MarkerDocente, MarkerFecha, MarkerSesionN, MarkerCompetencia, MarkerCapacidades,
	MarkerDesempenos, MarkerEvidenciaAprendizaje, MarkerCriteriosEvaluacion,
	MarkerInstrumento, MarkerEnfoquesTransversales, MarkerValor, MarkerAcciones,
	MarkerInicio, MarkerInicioM, MarkerDesarrollo, MarkerDesarrolloM, MarkerCierre,
	MarkerCierreM,
}

// plainMarkers are single-line header fields rendered without bullets.
var plainMarkers = map[string]bool{
	MarkerTituloSesion: true,
	MarkerGrado:        true,
	MarkerBimestre:     true,
	MarkerArea:         true,
	MarkerExperiencia:  true,
	MarkerDocente:      true,
	MarkerFecha:        true,
	MarkerSesionN:      true,
	MarkerCompetencia:  true,
	MarkerValor:        true,
}

// IsPlainMarker reports whether key holds plain text rather than a bulleted list.
func IsPlainMarker(key string) bool {
	return plainMarkers[key]
}

// SessionRecord is the diagnostics snapshot written after each generation.
type SessionRecord struct {
	Success   bool            `json:"success"`
	RequestID string          `json:"requestId,omitempty"`
	Request   *LessonRequest  `json:"request,omitempty"`
	Data      *LessonDocument `json:"data"`
	Markers   MarkersRecord   `json:"markers"`
}
