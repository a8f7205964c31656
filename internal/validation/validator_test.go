package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
)

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"area":                  " Matemática ",
		"grado":                 "4 años",
		"tema":                  "El círculo",
		"valor":                 "Puntualidad",
		"enfoquesTransversales": []interface{}{"Enfoque ambiental", "Enfoque inclusivo"},
		"accionesObservables":   []interface{}{"Escucha", "Participa"},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.True(t, apperrors.IsInvalidRequest(err))
	out := map[string]string{}
	for _, f := range appErr.Details["fields"].([]apperrors.FieldError) {
		out[f.Field] = f.Rule
	}
	return out
}

func TestValidateAcceptsAndNormalizes(t *testing.T) {
	req, err := New().Validate(validPayload())
	require.NoError(t, err)
	assert.Equal(t, "Matemática", req.Area)
	assert.Equal(t, "Inicial", req.Nivel)
	assert.Equal(t, 1, req.SessionNumber())
	assert.Equal(t, []string{"Enfoque ambiental", "Enfoque inclusivo"}, req.EnfoquesTransversales)
}

func TestGradeCoercion(t *testing.T) {
	for in, want := range map[string]string{
		"3":      "3 años",
		"3 años": "3 años",
		"3ro":    "3 años",
		"4 anos": "4 años",
		" 5":     "5 años",
	} {
		p := validPayload()
		p["grado"] = in
		req, err := New().Validate(p)
		require.NoError(t, err, in)
		assert.Equal(t, want, req.Grado, in)
	}

	p := validPayload()
	p["grado"] = 4.0
	req, err := New().Validate(p)
	require.NoError(t, err)
	assert.Equal(t, "4 años", req.Grado)
}

func TestValidateReportsEveryField(t *testing.T) {
	p := validPayload()
	p["grado"] = "6 años"
	p["tema"] = "   "
	p["enfoquesTransversales"] = []interface{}{"solo uno"}
	p["accionesObservables"] = []interface{}{"a", "b", "c", "d", "e"}
	p["numeroSesion"] = 0
	p["provider"] = "cohere"
	delete(p, "valor")

	fields := fieldsOf(t, func() error { _, err := New().Validate(p); return err }())
	assert.Equal(t, map[string]string{
		"grado":                 "oneof",
		"tema":                  "required",
		"enfoquesTransversales": "min",
		"accionesObservables":   "max",
		"numeroSesion":          "gt",
		"provider":              "unknown",
		"valor":                 "required",
	}, fields)
}

func TestValidateTypeErrors(t *testing.T) {
	p := validPayload()
	p["numeroSesion"] = "dos"
	p["enfoquesTransversales"] = "Enfoque ambiental"
	_, err := New().Validate(p)
	fields := fieldsOf(t, err)
	assert.Equal(t, "type", fields["numeroSesion"])
	assert.Equal(t, "type", fields["enfoquesTransversales"])
}

func TestValidateAreaLength(t *testing.T) {
	p := validPayload()
	long := ""
	for i := 0; i < 61; i++ {
		long += "á"
	}
	p["area"] = long
	_, err := New().Validate(p)
	assert.Equal(t, "max", fieldsOf(t, err)["area"])
}

func TestValidateEmptyItemInsideArray(t *testing.T) {
	p := validPayload()
	p["accionesObservables"] = []interface{}{"Escucha", " "}
	_, err := New().Validate(p)
	assert.Equal(t, "required", fieldsOf(t, err)["accionesObservables[1]"])
}

func TestValidateJSON(t *testing.T) {
	_, err := New().ValidateJSON([]byte(`[1,2]`))
	assert.Equal(t, "json", fieldsOf(t, err)[""])

	req, err := New().ValidateJSON([]byte(`{"area":"Comunicación","grado":"5","tema":"Cuentos","valor":"Respeto",
		"enfoquesTransversales":["Enfoque de derechos","Enfoque intercultural"],
		"accionesObservables":["Escucha","Opina"],"numeroSesion":4}`))
	require.NoError(t, err)
	assert.Equal(t, "5 años", req.Grado)
	assert.Equal(t, 4, req.SessionNumber())
}
