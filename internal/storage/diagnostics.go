package storage

import (
	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/utils"
)

// SessionFile is the diagnostics file read by the offline markers tool.
const SessionFile = "out-session.json"

// DiagnosticsSink keeps the last processed session on disk.
type DiagnosticsSink struct {
	storage *FileStorage
	logger  *utils.Logger
}

// NewDiagnosticsSink writes into fs. A nil fs disables the sink.
func NewDiagnosticsSink(fs *FileStorage, logger *utils.Logger) *DiagnosticsSink {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &DiagnosticsSink{storage: fs, logger: logger}
}

// Enabled reports whether records are written.
func (d *DiagnosticsSink) Enabled() bool {
	return d != nil && d.storage != nil
}

// Write stores rec. Failures are logged and swallowed.
func (d *DiagnosticsSink) Write(rec *models.SessionRecord) {
	if !d.Enabled() || rec == nil {
		return
	}
	if err := d.storage.SaveJSON(SessionFile, rec); err != nil {
		d.logger.Warn("diagnostics write failed",
			"request_id", rec.RequestID,
			"path", d.storage.Path(SessionFile),
			"error", err)
	}
}

// Path returns where records go, or "" when disabled.
func (d *DiagnosticsSink) Path() string {
	if !d.Enabled() {
		return ""
	}
	return d.storage.Path(SessionFile)
}
