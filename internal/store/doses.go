package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/ledger"
)

const doseColumns = `id, compound_id, amount_mg, taken_at, notes`

// AddDose appends d to the persisted ledger.
func (db *DB) AddDose(d domain.DoseEvent) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := db.Exec(`
		INSERT INTO doses (id, compound_id, amount_mg, taken_at, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.CompoundID, d.AmountMg, d.Timestamp.UnixMilli(), d.Notes, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert dose: %w", err)
	}
	return nil
}

// GetDose returns the dose with the given id, or domain.ErrNotFound.
func (db *DB) GetDose(id string) (domain.DoseEvent, error) {
	row := db.QueryRow(`SELECT `+doseColumns+` FROM doses WHERE id = ?`, id)
	d, err := scanDose(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DoseEvent{}, fmt.Errorf("dose %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.DoseEvent{}, fmt.Errorf("get dose: %w", err)
	}
	return d, nil
}

// ListDoses returns every dose in the order it was logged.
func (db *DB) ListDoses() ([]domain.DoseEvent, error) {
	return db.queryDoses(`SELECT ` + doseColumns + ` FROM doses ORDER BY seq`)
}

// ListDosesByCompound returns the doses of one compound in logged order.
func (db *DB) ListDosesByCompound(compoundID string) ([]domain.DoseEvent, error) {
	return db.queryDoses(`SELECT `+doseColumns+` FROM doses WHERE compound_id = ? ORDER BY seq`, compoundID)
}

// ListDosesSince returns doses taken at or after since, in logged order.
func (db *DB) ListDosesSince(since time.Time) ([]domain.DoseEvent, error) {
	return db.queryDoses(`SELECT `+doseColumns+` FROM doses WHERE taken_at >= ? ORDER BY seq`, since.UnixMilli())
}

// UpdateDose writes the editable fields of d, its timestamp and notes, in
// one statement. Its position in the ledger is kept.
func (db *DB) UpdateDose(d domain.DoseEvent) error {
	if d.Timestamp.IsZero() {
		return &domain.InvalidParameterError{Subject: d.ID, Field: "taken_at", Reason: "must be set"}
	}
	return db.updateDose(d.ID, `UPDATE doses SET taken_at = ?, notes = ? WHERE id = ?`,
		d.Timestamp.UnixMilli(), d.Notes, d.ID)
}

// DeleteDose removes a dose, or returns domain.ErrNotFound.
func (db *DB) DeleteDose(id string) error {
	return db.updateDose(id, `DELETE FROM doses WHERE id = ?`, id)
}

// LoadLedger reads the full dose history into an in-memory ledger.
func (db *DB) LoadLedger() (ledger.Ledger, error) {
	doses, err := db.ListDoses()
	if err != nil {
		return ledger.Ledger{}, err
	}
	return ledger.New(doses...)
}

func (db *DB) updateDose(id, query string, args ...any) error {
	res, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update dose %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update dose %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("dose %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (db *DB) queryDoses(query string, args ...any) ([]domain.DoseEvent, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list doses: %w", err)
	}
	defer rows.Close()

	var doses []domain.DoseEvent
	for rows.Next() {
		d, err := scanDose(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dose: %w", err)
		}
		doses = append(doses, d)
	}
	return doses, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDose(s scanner) (domain.DoseEvent, error) {
	var d domain.DoseEvent
	var takenAt int64
	if err := s.Scan(&d.ID, &d.CompoundID, &d.AmountMg, &takenAt, &d.Notes); err != nil {
		return domain.DoseEvent{}, err
	}
	d.Timestamp = time.UnixMilli(takenAt).UTC()
	return d, nil
}
