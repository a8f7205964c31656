package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/utils"
)

func TestIndicadores(t *testing.T) {
	got := Indicadores("Los colores", nil)
	require.Len(t, got, 6)
	assert.Equal(t, "Identifica elementos relacionados con Los colores.", got[0])

	got = Indicadores("Los colores", []string{"Explora colores.", "Explora colores.", "Nombra", "Mezcla", "Pinta"})
	require.Len(t, got, 6)
	assert.Equal(t, []string{
		"Aplica la capacidad: Explora colores.",
		"Aplica la capacidad: Nombra.",
		"Aplica la capacidad: Mezcla.",
	}, got[:3])
}

func TestInstrumentLayouts(t *testing.T) {
	svc := NewInstrumentService(utils.NewNopLogger())

	tests := []struct {
		tipo   string
		header string
		field  func(*models.Instrument) string
	}{
		{"Guía de observación", "N°\tIndicador\tSiempre\tA veces\tNunca", func(i *models.Instrument) string { return i.Tabla }},
		{"Lista de cotejo", "N°\tIndicador\tSí\tNo", func(i *models.Instrument) string { return i.Tabla }},
		{"Escala de valoración", "N°\tIndicador\tLogrado\tEn proceso\tEn inicio", func(i *models.Instrument) string { return i.Tabla }},
		{"Rúbrica analítica", "Criterio\tEn inicio (C)", func(i *models.Instrument) string { return i.Tabla }},
		{"Diario de campo", "Fecha\tSituación observada", func(i *models.Instrument) string { return i.Tabla }},
		{"Lista de verificación", "N°\tAspecto\tCumple", func(i *models.Instrument) string { return i.Tabla }},
		{"Registro anecdótico", "Datos\n", func(i *models.Instrument) string { return i.Bloques }},
		{"Ficha de seguimiento", "Niño/Niña:", func(i *models.Instrument) string { return i.Cuerpo }},
		{"Portafolio", "N°\tIndicador\tObservación", func(i *models.Instrument) string { return i.Tabla }},
	}
	for _, tt := range tests {
		t.Run(tt.tipo, func(t *testing.T) {
			in, err := svc.Generate(models.InstrumentRequest{Tipo: tt.tipo, Tema: "Las frutas"})
			require.NoError(t, err)
			assert.Equal(t, tt.tipo+" – Las frutas", in.TituloInstrumento)
			assert.Equal(t, "-", in.Fecha)
			assert.NotEmpty(t, in.InstruccionesInstrumento)
			assert.Len(t, in.Indicadores, 6)
			assert.True(t, strings.HasPrefix(tt.field(in), tt.header), tt.field(in))
		})
	}
}

func TestInstrumentTableRows(t *testing.T) {
	in, err := NewInstrumentService(nil).Generate(models.InstrumentRequest{
		Tipo: "Lista de cotejo", Tema: "Las frutas", Fecha: "2024-05-10",
	})
	require.NoError(t, err)
	rows := strings.Split(in.Tabla, "\n")
	require.Len(t, rows, 7)
	assert.Equal(t, "1\t"+in.Indicadores[0]+"\t\t", rows[1])
	assert.Equal(t, "2024-05-10", in.Fecha)

	blocks, err := NewInstrumentService(nil).Generate(models.InstrumentRequest{Tipo: "Registro anecdótico", Tema: "Juego"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(blocks.Bloques, "\n\n"), 3)
	assert.Empty(t, blocks.Tabla)
}

func TestInstrumentValidation(t *testing.T) {
	_, err := NewInstrumentService(nil).Generate(models.InstrumentRequest{Tipo: "x", Tema: " "})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidRequest(err))
}
