// internal/models/instrument.go
package models

// InstrumentRequest asks for a printable assessment instrument.
type InstrumentRequest struct {
	Tipo        string   `json:"tipo" binding:"required,min=2"`
	Tema        string   `json:"tema" binding:"required,min=2"`
	Fecha       string   `json:"fecha,omitempty"`
	Capacidades []string `json:"capacidades,omitempty"`
}

// Instrument is a rendered instrument. Depending on the type, the body is in
// Tabla (tab-separated rows), Bloques or Cuerpo.
type Instrument struct {
	TituloInstrumento        string   `json:"tituloInstrumento"`
	TipoInstrumento          string   `json:"tipoInstrumento"`
	InstruccionesInstrumento string   `json:"instruccionesInstrumento"`
	Fecha                    string   `json:"fecha"`
	Indicadores              []string `json:"indicadores"`
	Tabla                    string   `json:"tabla"`
	Bloques                  string   `json:"bloques"`
	Cuerpo                   string   `json:"cuerpo"`
}
