package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
)

// GetSleepSchedule returns the stored schedule, or the default 22:00-06:00
// when none has been set.
func (db *DB) GetSleepSchedule() (domain.SleepSchedule, error) {
	return db.SleepScheduleOr(domain.DefaultSleepSchedule())
}

// SleepScheduleOr returns the stored schedule, or fallback when none has
// been set.
func (db *DB) SleepScheduleOr(fallback domain.SleepSchedule) (domain.SleepSchedule, error) {
	var start, end string
	err := db.QueryRow(`SELECT start_time, end_time FROM sleep_schedule WHERE id = 1`).Scan(&start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return domain.SleepSchedule{}, fmt.Errorf("get sleep schedule: %w", err)
	}
	return domain.NewSleepSchedule(start, end)
}

// SetSleepSchedule validates and stores s.
func (db *DB) SetSleepSchedule(s domain.SleepSchedule) error {
	if err := s.Validate(); err != nil {
		return err
	}
	_, err := db.Exec(`
		INSERT INTO sleep_schedule (id, start_time, end_time, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			updated_at = excluded.updated_at
	`, s.Start.String(), s.End.String(), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set sleep schedule: %w", err)
	}
	return nil
}

// Settings reads thresholds and the sleep schedule from the database, using
// DefaultSleep when no schedule has been stored.
type Settings struct {
	DB           *DB
	DefaultSleep domain.SleepSchedule
}

// ListThresholds returns the stored thresholds.
func (s Settings) ListThresholds() ([]domain.Threshold, error) {
	return s.DB.ListThresholds()
}

// GetSleepSchedule returns the stored schedule or DefaultSleep.
func (s Settings) GetSleepSchedule() (domain.SleepSchedule, error) {
	return s.DB.SleepScheduleOr(s.DefaultSleep)
}
