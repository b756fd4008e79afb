package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/neurodose/internal/alerts"
	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/engine"
	"github.com/lazypower/neurodose/internal/ledger"
	"go.uber.org/zap"
)

func (s *Server) handleListCompounds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"compounds": s.engine.Catalog().List(),
	})
}

func (s *Server) handleGetCompound(w http.ResponseWriter, r *http.Request) {
	c, err := s.engine.Catalog().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStatus(w, http.StatusNotFound, "unknown_compound", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListDoses(w http.ResponseWriter, r *http.Request) {
	snap := s.doses.Snapshot()
	doses := []domain.DoseEvent{}
	if id := r.URL.Query().Get("compound"); id != "" {
		if !s.engine.Catalog().Has(id) {
			writeError(w, &domain.UnknownCompoundError{ID: id})
			return
		}
		for d := range snap.ForCompound(id) {
			doses = append(doses, d)
		}
	} else {
		doses = append(doses, snap.Doses()...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"doses": doses})
}

type addDoseRequest struct {
	CompoundID string     `json:"compound_id" validate:"required"`
	AmountMg   float64    `json:"amount_mg" validate:"gt=0"`
	TakenAt    *time.Time `json:"taken_at"`
	Notes      string     `json:"notes" validate:"max=500"`
}

func (s *Server) handleAddDose(w http.ResponseWriter, r *http.Request) {
	var req addDoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.metrics.DoseRejected("validation")
		writeError(w, err)
		return
	}
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		var err error
		if force, err = strconv.ParseBool(v); err != nil {
			badRequest(w, "force must be a boolean")
			return
		}
	}

	at := s.now()
	if req.TakenAt != nil {
		at = *req.TakenAt
	}
	d, err := domain.NewDose(req.CompoundID, req.AmountMg, at, req.Notes)
	if err != nil {
		s.metrics.DoseRejected("validation")
		writeError(w, err)
		return
	}

	_, err = s.doses.Update(func(l ledger.Ledger) (ledger.Ledger, error) {
		if !s.engine.Catalog().Has(d.CompoundID) {
			return l, &domain.UnknownCompoundError{ID: d.CompoundID}
		}
		if !force {
			if err := s.engine.CheckDailyMax(l, d); err != nil {
				return l, err
			}
		}
		next, err := l.Append(d)
		if err != nil {
			return l, err
		}
		if err := s.db.AddDose(d); err != nil {
			return l, err
		}
		return next, nil
	})
	if err != nil {
		_, kind := errorKind(err)
		s.metrics.DoseRejected(kind)
		writeError(w, err)
		return
	}

	s.metrics.DoseLogged()
	s.log.Info("dose logged",
		zap.String("id", d.ID),
		zap.String("compound", d.CompoundID),
		zap.Float64("amount_mg", d.AmountMg),
		zap.Time("taken_at", d.Timestamp),
		zap.Bool("forced", force),
	)
	writeJSON(w, http.StatusCreated, d)
}

type updateDoseRequest struct {
	TakenAt *time.Time `json:"taken_at"`
	Notes   *string    `json:"notes" validate:"omitempty,max=500"`
}

func (s *Server) handleUpdateDose(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateDoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}
	if req.TakenAt == nil && req.Notes == nil {
		badRequest(w, "taken_at or notes required")
		return
	}

	var updated domain.DoseEvent
	_, err := s.doses.Update(func(l ledger.Ledger) (ledger.Ledger, error) {
		d, ok := l.Get(id)
		if !ok {
			return l, domain.ErrNotFound
		}
		if req.TakenAt != nil {
			d = d.WithTimestamp(*req.TakenAt)
		}
		if req.Notes != nil {
			d.Notes = *req.Notes
		}
		next, _, err := l.Replace(d)
		if err != nil {
			return l, err
		}
		if err := s.db.UpdateDose(d); err != nil {
			return l, err
		}
		updated = d
		return next, nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDose(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	_, err := s.doses.Update(func(l ledger.Ledger) (ledger.Ledger, error) {
		next, ok := l.Remove(id)
		if !ok {
			return l, domain.ErrNotFound
		}
		if err := s.db.DeleteDose(id); err != nil {
			return l, err
		}
		return next, nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleConcentrations(w http.ResponseWriter, r *http.Request) {
	at, ok := s.queryTime(w, r, "at")
	if !ok {
		return
	}
	levels, err := s.engine.TotalConcentrationAllCompounds(at, s.doses.Snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"at": at, "levels": levels})
}

// maxSeriesSamples bounds one /series response; larger windows need a coarser step.
const maxSeriesSamples = 10000

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	var win engine.Window
	q := r.URL.Query()
	for key, dst := range map[string]*time.Time{"from": &win.Start, "to": &win.End} {
		if v := q.Get(key); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				badRequest(w, key+" must be RFC3339")
				return
			}
			*dst = t
		}
	}
	if v := q.Get("step"); v != "" {
		step, err := time.ParseDuration(v)
		if err != nil || step <= 0 {
			badRequest(w, "step must be a positive duration")
			return
		}
		win.Step = step
	}

	snap := s.doses.Snapshot()
	resolved, ok, err := win.Resolve(snap)
	if err != nil {
		writeError(w, err)
		return
	}
	if ok && resolved.Count() > maxSeriesSamples {
		writeError(w, &domain.InvalidParameterError{
			Subject: "window",
			Field:   "step",
			Value:   resolved.Step.Hours(),
			Reason:  fmt.Sprintf("window holds more than %d samples", maxSeriesSamples),
		})
		return
	}
	samples, err := s.engine.SampleAll(snap, win)
	if err != nil {
		writeError(w, err)
		return
	}
	if samples == nil {
		samples = []engine.Sample{}
	}

	resp := map[string]any{
		"samples": samples,
		"peaks":   engine.Peaks(samples),
	}
	if ok {
		resp["from"] = resolved.Start
		resp["to"] = resolved.End
		resp["step"] = resolved.Step.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	at, ok := s.queryTime(w, r, "at")
	if !ok {
		return
	}
	thresholds, err := s.effectiveThresholds()
	if err != nil {
		writeError(w, err)
		return
	}
	warnings, err := s.engine.EvaluateThresholds(s.doses.Snapshot(), thresholds, at)
	if err != nil {
		writeError(w, err)
		return
	}
	if warnings == nil {
		warnings = []engine.Warning{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"at": at, "warnings": warnings})
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	at, ok := s.queryTime(w, r, "at")
	if !ok {
		return
	}
	levels, err := s.engine.TotalConcentrationAllCompounds(at, s.doses.Snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	interactions := s.engine.Interactions(levels)
	if interactions == nil {
		interactions = []engine.InteractionWarning{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"at": at, "interactions": interactions})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	at, ok := s.queryTime(w, r, "at")
	if !ok {
		return
	}
	levels, err := s.engine.TotalConcentrationAllCompounds(at, s.doses.Snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	sleep, err := s.settings.GetSleepSchedule()
	if err != nil {
		writeError(w, err)
		return
	}
	scores, err := s.engine.Score(levels, at, sleep)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"at": at, "scores": scores})
}

func (s *Server) handleListThresholds(w http.ResponseWriter, r *http.Request) {
	thresholds, err := s.effectiveThresholds()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"thresholds": thresholds})
}

type thresholdRequest struct {
	MinMg        float64  `json:"min_mg" validate:"gte=0"`
	MaxMg        *float64 `json:"max_mg" validate:"omitempty,gt=0"`
	AlertEnabled *bool    `json:"alert_enabled"`
}

func (s *Server) handleSetThreshold(w http.ResponseWriter, r *http.Request) {
	c, err := s.engine.Catalog().Get(chi.URLParam(r, "compoundID"))
	if err != nil {
		writeErrorStatus(w, http.StatusNotFound, "unknown_compound", err)
		return
	}

	var req thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	th := domain.Threshold{CompoundID: c.ID, MinMg: req.MinMg, MaxMg: req.MaxMg, AlertEnabled: true}
	if req.AlertEnabled != nil {
		th.AlertEnabled = *req.AlertEnabled
	}
	if err := th.Validate(&c); err != nil {
		writeError(w, err)
		return
	}
	if err := s.db.SetThreshold(th); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, th)
}

func (s *Server) handleDeleteThreshold(w http.ResponseWriter, r *http.Request) {
	c, err := s.engine.Catalog().Get(chi.URLParam(r, "compoundID"))
	if err != nil {
		writeErrorStatus(w, http.StatusNotFound, "unknown_compound", err)
		return
	}
	if err := s.db.DeleteThreshold(c.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.DefaultThreshold(&c))
}

func (s *Server) handleGetSleep(w http.ResponseWriter, r *http.Request) {
	sleep, err := s.settings.GetSleepSchedule()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sleep)
}

type sleepRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

func (s *Server) handleSetSleep(w http.ResponseWriter, r *http.Request) {
	var req sleepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}
	sleep, err := domain.NewSleepSchedule(req.Start, req.End)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.db.SetSleepSchedule(sleep); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sleep)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	feed := []alerts.Notification{}
	var latest *alerts.Status
	if s.notifier != nil {
		feed = s.notifier.Feed()
		latest = s.notifier.Latest()
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		if n < len(feed) {
			feed = feed[:n]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": feed,
		"latest":        latest,
	})
}

func (s *Server) effectiveThresholds() ([]domain.Threshold, error) {
	stored, err := s.settings.ListThresholds()
	if err != nil {
		return nil, err
	}
	return s.engine.EffectiveThresholds(stored)
}

// queryTime parses an optional RFC3339 query parameter, defaulting to now.
// It writes a 400 and returns false on a malformed value.
func (s *Server) queryTime(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return s.now(), true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		badRequest(w, key+" must be RFC3339")
		return time.Time{}, false
	}
	return t, true
}
