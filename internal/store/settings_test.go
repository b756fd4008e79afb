package store

import (
	"errors"
	"testing"

	"github.com/lazypower/neurodose/internal/domain"
)

func TestThresholds(t *testing.T) {
	db := openTestDB(t)

	got, err := db.ListThresholds()
	if err != nil {
		t.Fatalf("ListThresholds: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("fresh db has %d thresholds", len(got))
	}

	max := 300.0
	if err := db.SetThreshold(domain.Threshold{CompoundID: "rhodiola", MinMg: 20, AlertEnabled: true}); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	if err := db.SetThreshold(domain.Threshold{CompoundID: "caffeine", MinMg: 40, MaxMg: &max}); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	// replace
	if err := db.SetThreshold(domain.Threshold{CompoundID: "rhodiola", MinMg: 30, AlertEnabled: false}); err != nil {
		t.Fatalf("SetThreshold replace: %v", err)
	}

	got, err = db.ListThresholds()
	if err != nil {
		t.Fatalf("ListThresholds: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListThresholds len = %d, want 2", len(got))
	}
	if got[0].CompoundID != "caffeine" || got[0].MaxMg == nil || *got[0].MaxMg != 300 || got[0].AlertEnabled {
		t.Errorf("caffeine threshold = %+v", got[0])
	}
	if got[1].CompoundID != "rhodiola" || got[1].MinMg != 30 || got[1].MaxMg != nil {
		t.Errorf("rhodiola threshold = %+v", got[1])
	}

	if err := db.DeleteThreshold("caffeine"); err != nil {
		t.Fatalf("DeleteThreshold: %v", err)
	}
	if err := db.DeleteThreshold("caffeine"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second DeleteThreshold err = %v, want ErrNotFound", err)
	}
}

func TestSleepSchedule(t *testing.T) {
	db := openTestDB(t)

	s, err := db.GetSleepSchedule()
	if err != nil {
		t.Fatalf("GetSleepSchedule: %v", err)
	}
	if s != domain.DefaultSleepSchedule() {
		t.Errorf("unset schedule = %+v, want default", s)
	}

	want, err := domain.NewSleepSchedule("23:30", "07:00")
	if err != nil {
		t.Fatalf("NewSleepSchedule: %v", err)
	}
	if err := db.SetSleepSchedule(want); err != nil {
		t.Fatalf("SetSleepSchedule: %v", err)
	}
	s, err = db.GetSleepSchedule()
	if err != nil {
		t.Fatalf("GetSleepSchedule: %v", err)
	}
	if s != want {
		t.Errorf("GetSleepSchedule = %+v, want %+v", s, want)
	}

	bad := domain.SleepSchedule{Start: domain.MustClock("06:00"), End: domain.MustClock("06:30")}
	if err := db.SetSleepSchedule(bad); !domain.IsInvalidInput(err) {
		t.Errorf("SetSleepSchedule same hour err = %v, want configuration error", err)
	}
}

func TestSettingsFallback(t *testing.T) {
	db := openTestDB(t)

	fallback, _ := domain.NewSleepSchedule("01:00", "09:00")
	s := Settings{DB: db, DefaultSleep: fallback}

	got, err := s.GetSleepSchedule()
	if err != nil {
		t.Fatalf("GetSleepSchedule: %v", err)
	}
	if got != fallback {
		t.Errorf("unset schedule = %+v, want fallback %+v", got, fallback)
	}

	stored := domain.DefaultSleepSchedule()
	db.SetSleepSchedule(stored)
	if got, _ := s.GetSleepSchedule(); got != stored {
		t.Errorf("stored schedule = %+v, want %+v", got, stored)
	}
}
