package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/LessonPlanner/internal/models"
)

const sessionFile = `2025-01-01 INFO writing session
{
  "success": true,
  "request": {"area": "Matemática", "grado": "4 años", "tema": "El círculo", "valor": "Respeto"},
  "data": {
    "datos": {"area": "Matemática", "grado": "4 años", "competencia": "Resuelve problemas de forma, movimiento y localización"},
    "filas": [{
      "tituloSesion": "Conocemos el círculo",
      "momentos": {"inicio": {"estrategias": ["Saludo"]}}
    }]
  }
}
trailing noise`

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLoadSession(t *testing.T) {
	doc, req, err := loadSession([]byte(sessionFile))
	require.NoError(t, err)
	assert.Equal(t, "Conocemos el círculo", doc.Row().TituloSesion)
	require.NotNil(t, req)
	assert.Equal(t, "El círculo", req.Tema)

	tests := []struct {
		name string
		raw  string
	}{
		{"no object", "nothing here"},
		{"not successful", `{"success": false, "data": {}}`},
		{"missing data", `{"success": true}`},
		{"broken json", `{"success": true, "data": {]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := loadSession([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestBuildWritesMarkers(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "out-session.json")
	out := filepath.Join(dir, "nested", "markers.json")
	require.NoError(t, os.WriteFile(in, []byte(sessionFile), 0644))

	stdout, err := runCmd(t, "build", "--in", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "markers written to")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var markers models.MarkersRecord
	require.NoError(t, json.Unmarshal(raw, &markers))
	assert.Equal(t, "Conocemos el círculo", markers[models.MarkerTituloSesion])
	assert.Equal(t, "Respeto", markers[models.MarkerValor])
	assert.NotEmpty(t, markers[models.MarkerCriteriosEvaluacion])
	assert.Contains(t, markers[models.MarkerInicio], "Saludo")
}

func TestBuildMissingFile(t *testing.T) {
	_, err := runCmd(t, "build", "--in", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestInstrumentPrintsJSON(t *testing.T) {
	stdout, err := runCmd(t, "instrument", "--tipo", "Escala de valoración", "--tema", "Los colores",
		"--capacidad", "Resuelve problemas de regularidad, equivalencia y cambio")
	require.NoError(t, err)

	var instrument models.Instrument
	require.NoError(t, json.Unmarshal([]byte(stdout), &instrument))
	assert.Equal(t, "Escala de valoración", instrument.TipoInstrumento)
	assert.Equal(t, "Aplica la capacidad: Resuelve problemas de regularidad, equivalencia y cambio.", instrument.Indicadores[0])
	assert.Contains(t, instrument.Tabla, "Logrado")
}

func TestInstrumentRequiresTema(t *testing.T) {
	_, err := runCmd(t, "instrument")
	assert.Error(t, err)
}

func TestGenerateRequiresRequestFile(t *testing.T) {
	_, err := runCmd(t, "generate")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1,2]`), 0644))
	_, err = runCmd(t, "generate", "--request", bad)
	assert.Error(t, err)
}
