// internal/services/instrument_service.go
package services

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/textnorm"
	"github.com/Corphon/LessonPlanner/internal/utils"
)

const (
	maxIndicadores      = 6
	maxCapacityLines    = 3
	defaultInstrumentAt = "-"
)

// instrumentLayout renders one family of instruments.
type instrumentLayout struct {
	match        []string
	instructions string
	render       func(in *models.Instrument, tema string)
}

// layouts are tried in order against the folded tipo.
var layouts = []instrumentLayout{
	{
		match:        []string{"guia de observacion"},
		instructions: "Observe a cada niño o niña durante la actividad y marque con una X la frecuencia con que evidencia cada indicador.",
		render:       scaleTable("Siempre", "A veces", "Nunca"),
	},
	{
		match:        []string{"lista de cotejo"},
		instructions: "Marque Sí o No según el niño o la niña evidencie cada indicador.",
		render:       scaleTable("Sí", "No"),
	},
	{
		match:        []string{"escala de valoracion"},
		instructions: "Valore el nivel alcanzado en cada indicador marcando una sola columna.",
		render:       scaleTable("Logrado", "En proceso", "En inicio"),
	},
	{
		match:        []string{"rubrica"},
		instructions: "Ubique el desempeño del niño o la niña en el nivel que mejor lo describe para cada criterio.",
		render:       rubricTable,
	},
	{
		match:        []string{"diario de campo"},
		instructions: "Registre lo observado en la sesión, su interpretación y las acciones que tomará.",
		render:       fieldDiary,
	},
	{
		match:        []string{"lista de verificacion"},
		instructions: "Verifique el cumplimiento de cada aspecto y anote observaciones breves.",
		render:       checklistTable,
	},
	{
		match:        []string{"registro anecdotico", "registro anectotico"},
		instructions: "Describa de forma objetiva el hecho observado, luego su interpretación y el acompañamiento sugerido.",
		render:       anecdotalBlocks,
	},
	{
		match:        []string{"ficha de seguimiento"},
		instructions: "Complete la ficha con los avances y dificultades observados durante la secuencia de sesiones.",
		render:       followUpSheet,
	},
}

var defaultLayout = instrumentLayout{
	instructions: "Registre lo observado para cada indicador.",
	render:       scaleTable("Observación"),
}

// InstrumentService renders printable assessment instruments. It is
// deterministic and does not call the model.
type InstrumentService struct {
	logger *utils.Logger
}

func NewInstrumentService(logger *utils.Logger) *InstrumentService {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &InstrumentService{logger: logger}
}

// Generate validates req and renders the instrument for its tipo.
func (s *InstrumentService) Generate(req models.InstrumentRequest) (*models.Instrument, error) {
	tipo := strings.TrimSpace(req.Tipo)
	tema := strings.TrimSpace(req.Tema)

	var fields []apperrors.FieldError
	if len([]rune(tipo)) < 2 {
		fields = append(fields, apperrors.FieldError{Field: "tipo", Rule: "min", Message: "must have at least 2 characters"})
	}
	if len([]rune(tema)) < 2 {
		fields = append(fields, apperrors.FieldError{Field: "tema", Rule: "min", Message: "must have at least 2 characters"})
	}
	if len(fields) > 0 {
		return nil, apperrors.NewInvalidRequestError("invalid instrument request", fields)
	}

	fecha := strings.TrimSpace(req.Fecha)
	if fecha == "" {
		fecha = defaultInstrumentAt
	}

	layout := layoutFor(tipo)
	in := &models.Instrument{
		TituloInstrumento:        tipo + " – " + tema,
		TipoInstrumento:          tipo,
		InstruccionesInstrumento: layout.instructions,
		Fecha:                    fecha,
		Indicadores:              Indicadores(tema, req.Capacidades),
	}
	layout.render(in, tema)

	s.logger.Debug("instrument rendered", "tipo", tipo, "indicadores", len(in.Indicadores))
	return in, nil
}

func layoutFor(tipo string) instrumentLayout {
	f := textnorm.Fold(tipo)
	for _, l := range layouts {
		for _, m := range l.match {
			if strings.Contains(f, m) {
				return l
			}
		}
	}
	return defaultLayout
}

// Indicadores returns up to six indicators: capacity lines first, then the
// topic templates, without duplicates.
func Indicadores(tema string, capacidades []string) []string {
	caps := textnorm.CleanItems(capacidades)
	if len(caps) > maxCapacityLines {
		caps = caps[:maxCapacityLines]
	}
	items := make([]string, 0, len(caps)+7)
	for _, c := range caps {
		items = append(items, "Aplica la capacidad: "+strings.TrimSuffix(c, ".")+".")
	}
	items = append(items,
		fmt.Sprintf("Identifica elementos relacionados con %s.", tema),
		fmt.Sprintf("Nombra o señala características de %s.", tema),
		fmt.Sprintf("Sigue consignas simples durante las actividades sobre %s.", tema),
		fmt.Sprintf("Participa con interés en las actividades sobre %s.", tema),
		fmt.Sprintf("Expresa con palabras o gestos lo que aprendió sobre %s.", tema),
		"Trabaja en grupo respetando turnos.",
		fmt.Sprintf("Comunica su producción sobre %s de forma sencilla.", tema),
	)
	items = textnorm.CleanItems(items)
	if len(items) > maxIndicadores {
		items = items[:maxIndicadores]
	}
	return items
}

func tsv(rows [][]string) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r, "\t")
	}
	return strings.Join(lines, "\n")
}

// scaleTable numbers every indicator and leaves one empty cell per column.
func scaleTable(columns ...string) func(*models.Instrument, string) {
	return func(in *models.Instrument, _ string) {
		rows := [][]string{append([]string{"N°", "Indicador"}, columns...)}
		for i, ind := range in.Indicadores {
			row := []string{strconv.Itoa(i + 1), ind}
			for range columns {
				row = append(row, "")
			}
			rows = append(rows, row)
		}
		in.Tabla = tsv(rows)
	}
}

func rubricTable(in *models.Instrument, _ string) {
	rows := [][]string{{"Criterio", "En inicio (C)", "En proceso (B)", "Logro esperado (A)", "Logro destacado (AD)"}}
	for _, ind := range in.Indicadores {
		rows = append(rows, []string{
			ind,
			"Lo intenta con apoyo constante.",
			"Lo logra con apoyo ocasional.",
			"Lo logra de forma autónoma.",
			"Lo logra de forma autónoma y ayuda a otros.",
		})
	}
	in.Tabla = tsv(rows)
}

func fieldDiary(in *models.Instrument, _ string) {
	rows := [][]string{{"Fecha", "Situación observada", "Interpretación", "Acciones a seguir"}}
	for i := 0; i < 3; i++ {
		rows = append(rows, []string{in.Fecha, "", "", ""})
	}
	in.Tabla = tsv(rows)
}

func checklistTable(in *models.Instrument, _ string) {
	rows := [][]string{{"N°", "Aspecto", "Cumple", "No cumple", "Observaciones"}}
	for i, ind := range in.Indicadores {
		rows = append(rows, []string{strconv.Itoa(i + 1), ind, "", "", ""})
	}
	in.Tabla = tsv(rows)
}

func anecdotalBlocks(in *models.Instrument, tema string) {
	blocks := []string{
		fmt.Sprintf("Datos\nNiño/Niña: ____________________\nFecha: %s\nActividad: %s", in.Fecha, tema),
		"Descripción del hecho\n____________________________________________",
		"Interpretación y acompañamiento\n____________________________________________",
	}
	in.Bloques = strings.Join(blocks, "\n\n")
}

func followUpSheet(in *models.Instrument, tema string) {
	lines := []string{
		"Niño/Niña: ____________________",
		"Tema: " + tema,
		"Fecha: " + in.Fecha,
		"Indicadores observados:",
		textnorm.ToBulletedText(in.Indicadores),
		"Avances:",
		"Dificultades:",
		"Acciones de acompañamiento:",
	}
	in.Cuerpo = strings.Join(lines, "\n")
}
