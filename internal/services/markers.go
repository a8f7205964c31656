// internal/services/markers.go
package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Corphon/LessonPlanner/internal/curriculum"
	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/policy"
	"github.com/Corphon/LessonPlanner/internal/structure"
	"github.com/Corphon/LessonPlanner/internal/textnorm"
)

const (
	DefaultTituloSesion = "SESIÓN DE APRENDIZAJE"
	DefaultInstrumento  = "Evaluación cualitativa-Cuantitativa"
	minCriterios        = 4
)

var (
	DefaultEvidence = []string{
		"Producto: hoja de trabajo/dibujo terminado relacionado con el tema",
		"Participación observable en la dramatización o actividad principal",
	}
	DefaultInstruments = []string{"Lista de cotejo", "Observación directa"}

	developmentFallback = []string{
		"Actividad 1 con pasos claros.",
		"Actividad 2 con pasos claros.",
		"Actividad 3 con pasos claros.",
	}
)

// areaCompetencies picks a fallback competency by area keyword, in order.
var areaCompetencies = []struct{ keyword, competencia string }{
	{"ingl", "Se comunica oralmente en inglés como lengua extranjera."},
	{"comunica", "Se comunica oralmente en su lengua materna."},
	{"personal", "Construye su identidad y convive y participa democráticamente."},
	{"ciencia", "Indaga mediante acciones para construir sus conocimientos."},
	{"psicom", "Se desenvuelve de manera autónoma a través de su motricidad."},
}

const defaultCompetencia = "Explora, experimenta y describe su entorno a través del juego."

// FallbackCompetencia returns the generic competency for area.
func FallbackCompetencia(area string) string {
	f := textnorm.Fold(area)
	for _, ac := range areaCompetencies {
		if strings.Contains(f, ac.keyword) {
			return ac.competencia
		}
	}
	return defaultCompetencia
}

func capacidadesFallback(tema string) []string {
	return []string{
		fmt.Sprintf("Escucha y sigue consignas simples relacionadas con “%s”.", tema),
		fmt.Sprintf("Expresa ideas o gestos sobre “%s”.", tema),
	}
}

func desempenosFallback(tema string) []string {
	return []string{
		fmt.Sprintf("Participa activamente en actividades sobre “%s”.", tema),
		"Demuestra comprensión mediante acciones u oralidad simple.",
	}
}

func criteriosFallback(tema string) []string {
	return []string{
		"Participa y sigue consignas durante las actividades.",
		fmt.Sprintf("Muestra comprensión de “%s” con acciones/gestos o palabras.", tema),
		"Trabaja con autonomía progresiva y respeta turnos.",
		"Comunica su producción o idea final de forma simple.",
	}
}

// MarkersBuilder projects a repaired LessonDocument onto the template markers.
type MarkersBuilder struct {
	engine  *policy.Engine
	catalog *curriculum.Catalog
}

// NewMarkersBuilder returns a builder. Nil arguments select the defaults.
func NewMarkersBuilder(engine *policy.Engine, catalog *curriculum.Catalog) *MarkersBuilder {
	if engine == nil {
		engine = policy.NewEngine(nil)
	}
	if catalog == nil {
		catalog = curriculum.Default()
	}
	return &MarkersBuilder{engine: engine, catalog: catalog}
}

// Build assembles every marker key. req may be nil when rebuilding from a
// diagnostics file; header fields then come from the document alone.
func (b *MarkersBuilder) Build(doc *models.LessonDocument, req *models.LessonRequest) models.MarkersRecord {
	if doc == nil {
		doc = &models.LessonDocument{}
	}
	if req == nil {
		req = &models.LessonRequest{}
	}
	d := doc.Datos
	f := doc.Row()

	sesionN := d.NumeroSesion
	if sesionN == "" && req.NumeroSesion != nil {
		sesionN = strconv.Itoa(*req.NumeroSesion)
	}
	valor := first(req.Valor, d.Valor, f.Valor)
	tema := first(req.Tema, f.TituloSesion, "el tema")

	m := models.MarkersRecord{
		models.MarkerTituloSesion: first(f.TituloSesion, d.TituloSesion, DefaultTituloSesion),
		models.MarkerGrado:        first(d.Grado, req.Grado),
		models.MarkerBimestre:     first(d.Bimestre, req.Bimestre),
		models.MarkerArea:         first(d.Area, req.Area),
		models.MarkerExperiencia:  first(d.Experiencia, req.Experiencia),
		models.MarkerDocente:      first(d.Docente, req.Docente),
		models.MarkerFecha:        first(d.Fecha, req.Fecha),
		models.MarkerSesionN:      sesionN,
		models.MarkerCompetencia:  d.Competencia,
		models.MarkerCapacidades:  bullets(d.Capacidades, f.Capacidades),
		models.MarkerDesempenos:   bullets(f.Desempenos, d.Desempenos),
		models.MarkerValor:        valor,
		models.MarkerAcciones:     bullets(d.Acciones, f.Acciones, req.AccionesObservables),
		models.MarkerInicio:       phaseText(f.Momentos.Inicio),
		models.MarkerInicioM:      bullets(f.Momentos.Inicio.Materiales),
		models.MarkerDesarrollo:   phaseText(f.Momentos.Desarrollo),
		models.MarkerDesarrolloM:  bullets(f.Momentos.Desarrollo.Materiales),
		models.MarkerCierre:       phaseText(f.Momentos.Cierre),
		models.MarkerCierreM:      bullets(f.Momentos.Cierre.Materiales),
	}
	m[models.MarkerCriteriosEvaluacion] = bullets(f.CriteriosEvaluacion, d.CriteriosEvaluacion)

	// Evidence and instruments never mix.
	evidence, fromEvidence := policy.SplitInstrumentsFromEvidence(firstList(f.EvidenciaAprendizaje, d.EvidenciaAprendizaje))
	instruments := textnorm.CleanItems(append(firstList(f.Instrumento, d.Instrumento, []string{DefaultInstrumento}), fromEvidence...))
	if len(evidence) == 0 {
		evidence = DefaultEvidence
	}
	if len(instruments) == 0 {
		instruments = DefaultInstruments
	}
	m[models.MarkerEvidenciaAprendizaje] = textnorm.ToBulletedText(evidence)
	m[models.MarkerInstrumento] = textnorm.ToBulletedText(instruments)

	for _, k := range []string{models.MarkerDesempenos, models.MarkerEvidenciaAprendizaje, models.MarkerCriteriosEvaluacion} {
		m[k] = b.engine.PurgeTerm(m[k], valor)
	}
	for _, k := range phaseMarkers {
		m[k] = b.engine.PurgeLayout(m[k], valor)
	}
	m[models.MarkerCompetencia] = b.engine.PurgeLine(m[models.MarkerCompetencia], valor)
	m[models.MarkerEvidenciaAprendizaje] = policy.RewriteEvidence(m[models.MarkerEvidenciaAprendizaje])

	enfoques := firstList(d.EnfoquesTransversales, f.EnfoquesTransversales, req.EnfoquesTransversales)
	m[models.MarkerEnfoquesTransversales] = textnorm.ToBulletedText(b.catalog.DetailList(enfoques))

	fixEncoding(m)
	b.applyFallbacks(m, first(d.Area, req.Area), tema)
	b.finalPurge(m, valor)
	fixEncoding(m)
	return m
}

func (b *MarkersBuilder) applyFallbacks(m models.MarkersRecord, area, tema string) {
	fill := func(key string, items []string) {
		if strings.TrimSpace(m[key]) == "" {
			m[key] = textnorm.ToBulletedText(items)
		}
	}
	if strings.TrimSpace(m[models.MarkerCompetencia]) == "" {
		m[models.MarkerCompetencia] = FallbackCompetencia(area)
	}
	fill(models.MarkerCapacidades, capacidadesFallback(tema))
	fill(models.MarkerDesempenos, desempenosFallback(tema))
	m[models.MarkerCriteriosEvaluacion] = policy.EnsureMinimum(m[models.MarkerCriteriosEvaluacion], minCriterios, criteriosFallback(tema), tema)
	fill(models.MarkerInstrumento, DefaultInstruments)
	fill(models.MarkerInicio, structure.InicioStrategies)
	fill(models.MarkerInicioM, structure.InicioMaterials)
	fill(models.MarkerDesarrollo, developmentFallback)
	fill(models.MarkerDesarrolloM, structure.DesarrolloMaterials)
	fill(models.MarkerCierre, structure.CierreStrategies)
	fill(models.MarkerCierreM, structure.CierreMaterials)

	for _, k := range models.MarkerKeys {
		if _, ok := m[k]; !ok {
			m[k] = ""
		}
	}
}

// finalPurge removes the value term from every marker except valor. Plain
// header fields are purged as a single line so they never gain bullets.
func (b *MarkersBuilder) finalPurge(m models.MarkersRecord, valor string) {
	if strings.TrimSpace(valor) == "" {
		return
	}
	for k, v := range m {
		switch {
		case k == models.MarkerValor:
		case phaseMarker(k):
			m[k] = b.engine.PurgeLayout(v, valor)
		case models.IsPlainMarker(k):
			m[k] = b.engine.PurgeLine(v, valor)
		default:
			m[k] = b.engine.PurgeTerm(v, valor)
		}
	}
}

var phaseMarkers = []string{models.MarkerInicio, models.MarkerDesarrollo, models.MarkerCierre}

func phaseMarker(k string) bool {
	return k == models.MarkerInicio || k == models.MarkerDesarrollo || k == models.MarkerCierre
}

func fixEncoding(m models.MarkersRecord) {
	for k, v := range m {
		m[k] = textnorm.FixEncoding(v)
	}
}

// phaseText renders the bulleted strategies followed by each activity title
// and its indented steps.
func phaseText(mo models.Momento) string {
	var lines []string
	if s := textnorm.ToBulletedText(mo.Estrategias); s != "" {
		lines = append(lines, s)
	}
	for i, a := range mo.Actividades {
		title := strings.TrimSpace(a.Titulo)
		if title == "" {
			title = fmt.Sprintf("Actividad %d", i+1)
		}
		lines = append(lines, title)
		for _, p := range a.Pasos {
			if p = strings.TrimSpace(p); p != "" {
				lines = append(lines, "  "+textnorm.Bullet+" "+p)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func bullets(lists ...[]string) string {
	return textnorm.ToBulletedText(firstList(lists...))
}

func firstList(lists ...[]string) []string {
	for _, l := range lists {
		if c := textnorm.CleanItems(l); len(c) > 0 {
			return c
		}
	}
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
