// Package validation checks lesson requests against the closed request shape.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

// Validator validates decoded request payloads.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateJSON decodes body as a JSON object and validates it.
func (v *Validator) ValidateJSON(body []byte) (*models.LessonRequest, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return nil, apperrors.NewInvalidRequestError("invalid JSON body", []apperrors.FieldError{
			{Field: "", Rule: "json", Message: "body must be a JSON object"},
		})
	}
	return v.Validate(payload)
}

// Validate checks payload in strict mode and returns the normalized request.
// Every violated field yields its own FieldError.
func (v *Validator) Validate(payload map[string]interface{}) (*models.LessonRequest, error) {
	req := &models.LessonRequest{}
	var diags []apperrors.FieldError
	typeFailed := map[string]bool{}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := payload[key]
		if key == "grado" {
			if g, ok := NormalizeGrade(val); ok {
				val = g
			}
		}
		target := fieldTarget(req, key)
		if target == nil {
			diags = append(diags, apperrors.FieldError{Field: key, Rule: "unknown", Message: "field is not allowed"})
			continue
		}
		if val == nil {
			continue
		}
		raw, err := json.Marshal(val)
		if err == nil {
			err = json.Unmarshal(raw, target)
		}
		if err != nil {
			diags = append(diags, apperrors.FieldError{Field: key, Rule: "type", Message: typeMessage(target)})
			typeFailed[key] = true
		}
	}

	normalize(req)

	if err := v.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				d := toFieldError(fe)
				if typeFailed[strings.SplitN(d.Field, "[", 2)[0]] {
					continue
				}
				diags = append(diags, d)
			}
		} else {
			diags = append(diags, apperrors.FieldError{Field: "", Rule: "invalid", Message: err.Error()})
		}
	}

	if len(diags) > 0 {
		return nil, apperrors.NewInvalidRequestError("invalid lesson request", diags)
	}
	return req, nil
}

// NormalizeGrade maps "3", "3 años", "3ro" and similar onto the canonical
// grade by leading digit.
func NormalizeGrade(v interface{}) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = textnorm.Fold(t)
	case float64:
		s = fmt.Sprintf("%g", t)
	default:
		return "", false
	}
	if s == "" {
		return "", false
	}
	switch s[0] {
	case '3':
		return models.Grades[0], true
	case '4':
		return models.Grades[1], true
	case '5':
		return models.Grades[2], true
	}
	return "", false
}

func fieldTarget(req *models.LessonRequest, key string) interface{} {
	switch key {
	case "nivel":
		return &req.Nivel
	case "area":
		return &req.Area
	case "grado":
		return &req.Grado
	case "tema":
		return &req.Tema
	case "docente":
		return &req.Docente
	case "fecha":
		return &req.Fecha
	case "bimestre":
		return &req.Bimestre
	case "numeroSesion":
		return &req.NumeroSesion
	case "experiencia":
		return &req.Experiencia
	case "valor":
		return &req.Valor
	case "enfoquesTransversales":
		return &req.EnfoquesTransversales
	case "accionesObservables":
		return &req.AccionesObservables
	case "competencia":
		return &req.Competencia
	case "capacidades":
		return &req.Capacidades
	}
	return nil
}

func typeMessage(target interface{}) string {
	switch target.(type) {
	case *string:
		return "must be a string"
	case **int:
		return "must be an integer"
	case *[]string:
		return "must be an array of strings"
	}
	return "has the wrong type"
}

func normalize(req *models.LessonRequest) {
	req.Nivel = "Inicial"
	req.Area = strings.TrimSpace(req.Area)
	req.Tema = strings.TrimSpace(req.Tema)
	req.Valor = strings.TrimSpace(req.Valor)
	req.Docente = strings.TrimSpace(req.Docente)
	req.Fecha = strings.TrimSpace(req.Fecha)
	req.Bimestre = strings.TrimSpace(req.Bimestre)
	req.Experiencia = strings.TrimSpace(req.Experiencia)
	req.Competencia = strings.TrimSpace(req.Competencia)
	trimAll(req.EnfoquesTransversales)
	trimAll(req.AccionesObservables)
	trimAll(req.Capacidades)
}

func trimAll(items []string) {
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
}

func toFieldError(fe validator.FieldError) apperrors.FieldError {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return apperrors.FieldError{Field: ns, Rule: fe.Tag(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.Join(models.Grades, ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " items"
		}
		return "must have at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " items"
		}
		return "must have at most " + fe.Param() + " characters"
	case "gt":
		return "must be a positive integer"
	}
	return "failed " + fe.Tag() + " validation"
}
