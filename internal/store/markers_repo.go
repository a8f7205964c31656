package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Corphon/LessonPlanner/internal/models"
)

// MarkersRepo is the key-value upsert for markers records.
type MarkersRepo struct{ DB *sql.DB }

func NewMarkersRepo(db *sql.DB) *MarkersRepo { return &MarkersRepo{DB: db} }

// Upsert stores markers under requestID, replacing any previous record.
func (r *MarkersRepo) Upsert(ctx context.Context, requestID, tema string, markers models.MarkersRecord) error {
	js, err := json.Marshal(markers)
	if err != nil {
		return fmt.Errorf("encode markers: %w", err)
	}
	const q = `
insert into lesson_markers(request_id, tema, markers)
values ($1,$2,$3)
on conflict (request_id)
do update set tema=excluded.tema, markers=excluded.markers, updated_at=now()`
	_, err = r.DB.ExecContext(ctx, q, requestID, tema, js)
	return err
}

// StoredMarkers is one persisted record.
type StoredMarkers struct {
	RequestID string
	Tema      string
	Markers   models.MarkersRecord
	UpdatedAt time.Time
}

// Find returns the record for requestID or sql.ErrNoRows.
func (r *MarkersRepo) Find(ctx context.Context, requestID string) (StoredMarkers, error) {
	const q = `select tema, markers, updated_at from lesson_markers where request_id=$1`
	var (
		out StoredMarkers
		js  []byte
	)
	if err := r.DB.QueryRowContext(ctx, q, requestID).Scan(&out.Tema, &js, &out.UpdatedAt); err != nil {
		return StoredMarkers{}, err
	}
	if err := json.Unmarshal(js, &out.Markers); err != nil {
		return StoredMarkers{}, fmt.Errorf("decode markers: %w", err)
	}
	out.RequestID = requestID
	return out, nil
}
