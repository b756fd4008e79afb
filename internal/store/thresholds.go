package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
)

// SetThreshold stores or replaces the threshold for t.CompoundID. Bounds are
// checked against the catalog by the caller.
func (db *DB) SetThreshold(t domain.Threshold) error {
	var maxMg sql.NullFloat64
	if t.MaxMg != nil {
		maxMg = sql.NullFloat64{Float64: *t.MaxMg, Valid: true}
	}
	_, err := db.Exec(`
		INSERT INTO thresholds (compound_id, min_mg, max_mg, alert_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(compound_id) DO UPDATE SET
			min_mg = excluded.min_mg,
			max_mg = excluded.max_mg,
			alert_enabled = excluded.alert_enabled,
			updated_at = excluded.updated_at
	`, t.CompoundID, t.MinMg, maxMg, t.AlertEnabled, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set threshold %s: %w", t.CompoundID, err)
	}
	return nil
}

// ListThresholds returns stored thresholds ordered by compound id.
func (db *DB) ListThresholds() ([]domain.Threshold, error) {
	rows, err := db.Query(`
		SELECT compound_id, min_mg, max_mg, alert_enabled
		FROM thresholds ORDER BY compound_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list thresholds: %w", err)
	}
	defer rows.Close()

	var out []domain.Threshold
	for rows.Next() {
		var t domain.Threshold
		var maxMg sql.NullFloat64
		if err := rows.Scan(&t.CompoundID, &t.MinMg, &maxMg, &t.AlertEnabled); err != nil {
			return nil, fmt.Errorf("scan threshold: %w", err)
		}
		if maxMg.Valid {
			v := maxMg.Float64
			t.MaxMg = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteThreshold drops a stored threshold so the compound default applies.
func (db *DB) DeleteThreshold(compoundID string) error {
	res, err := db.Exec(`DELETE FROM thresholds WHERE compound_id = ?`, compoundID)
	if err != nil {
		return fmt.Errorf("delete threshold %s: %w", compoundID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("threshold %s: %w", compoundID, domain.ErrNotFound)
	}
	return nil
}
