// internal/models/request.go
package models

// Grades accepted for the Inicial level.
var Grades = []string{"3 años", "4 años", "5 años"}

// LessonRequest is a validated submission from the lesson form.
type LessonRequest struct {
	Nivel                 string   `json:"nivel,omitempty"`
	Area                  string   `json:"area" validate:"required,max=60"`
	Grado                 string   `json:"grado" validate:"required,oneof='3 años' '4 años' '5 años'"`
	Tema                  string   `json:"tema" validate:"required"`
	Docente               string   `json:"docente,omitempty"`
	Fecha                 string   `json:"fecha,omitempty"`
	Bimestre              string   `json:"bimestre,omitempty"`
	NumeroSesion          *int     `json:"numeroSesion,omitempty" validate:"omitempty,gt=0"`
	Experiencia           string   `json:"experiencia,omitempty"`
	Valor                 string   `json:"valor" validate:"required"`
	EnfoquesTransversales []string `json:"enfoquesTransversales" validate:"min=2,max=4,dive,required"`
	AccionesObservables   []string `json:"accionesObservables" validate:"min=2,max=4,dive,required"`

	// Optional curriculum hints.
	Competencia string   `json:"competencia,omitempty"`
	Capacidades []string `json:"capacidades,omitempty" validate:"omitempty,dive,required"`
}

// SessionNumber returns the requested session number, 1 when absent.
func (r *LessonRequest) SessionNumber() int {
	if r.NumeroSesion == nil {
		return 1
	}
	return *r.NumeroSesion
}
