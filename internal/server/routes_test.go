package server

import (
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/lazypower/neurodose/internal/alerts"
	"github.com/lazypower/neurodose/internal/catalog"
	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/engine"
	"github.com/lazypower/neurodose/internal/ledger"
	"github.com/lazypower/neurodose/internal/store"
)

func addDose(t *testing.T, srv http.Handler, compound string, mg float64, at time.Time) string {
	t.Helper()
	body := fmt.Sprintf(`{"compound_id":%q,"amount_mg":%g,"taken_at":%q}`, compound, mg, at.Format(time.RFC3339))
	w := do(t, srv, "POST", "/api/doses", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("add dose: status = %d; body: %s", w.Code, w.Body.String())
	}
	return decode(t, w)["id"].(string)
}

func TestCompounds(t *testing.T) {
	srv, _ := testServer(t)

	body := decode(t, do(t, srv, "GET", "/api/compounds", ""))
	list := body["compounds"].([]any)
	if len(list) != 5 {
		t.Fatalf("compounds = %d, want 5", len(list))
	}
	if first := list[0].(map[string]any); first["id"] != "caffeine" {
		t.Errorf("first compound = %v, want caffeine", first["id"])
	}

	w := do(t, srv, "GET", "/api/compounds/nicotine", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown compound status = %d, want 404", w.Code)
	}
	if decode(t, w)["kind"] != "unknown_compound" {
		t.Errorf("unknown compound kind = %v", decode(t, w)["kind"])
	}
}

func TestAddDosePersistsAndPublishes(t *testing.T) {
	srv, db := testServer(t)

	id := addDose(t, srv, "caffeine", 100, t0)

	stored, err := db.GetDose(id)
	if err != nil {
		t.Fatalf("GetDose: %v", err)
	}
	if stored.AmountMg != 100 {
		t.Errorf("stored amount = %v", stored.AmountMg)
	}

	body := decode(t, do(t, srv, "GET", "/api/doses", ""))
	if n := len(body["doses"].([]any)); n != 1 {
		t.Errorf("listed doses = %d, want 1", n)
	}
}

func TestAddDoseDefaultsToNow(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv, "POST", "/api/doses", `{"compound_id":"l-theanine","amount_mg":200}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["taken_at"]; got != t0.Format(time.RFC3339) {
		t.Errorf("taken_at = %v, want %v", got, t0.Format(time.RFC3339))
	}
}

func TestAddDoseErrors(t *testing.T) {
	srv, db := testServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"invalid json", `{`, http.StatusBadRequest, "bad_request"},
		{"missing compound", `{"amount_mg":10}`, http.StatusBadRequest, "validation"},
		{"zero amount", `{"compound_id":"caffeine","amount_mg":0}`, http.StatusBadRequest, "validation"},
		{"unknown compound", `{"compound_id":"nicotine","amount_mg":1}`, http.StatusBadRequest, "unknown_compound"},
		{"over daily max", `{"compound_id":"caffeine","amount_mg":450}`, http.StatusConflict, "daily_max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/doses", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, tt.status, w.Body.String())
			}
			if kind := decode(t, w)["kind"]; kind != tt.kind {
				t.Errorf("kind = %v, want %s", kind, tt.kind)
			}
		})
	}

	doses, _ := db.ListDoses()
	if len(doses) != 0 {
		t.Errorf("rejected doses were stored: %d", len(doses))
	}
}

func TestAddDoseForce(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv, "POST", "/api/doses?force=true", `{"compound_id":"caffeine","amount_mg":450}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("forced dose status = %d; body: %s", w.Code, w.Body.String())
	}
}

func TestDailyMaxCountsExistingLevel(t *testing.T) {
	srv, _ := testServer(t)

	addDose(t, srv, "caffeine", 300, t0)
	// ~222 mg remaining an hour later; another 200 projects past 400
	w := do(t, srv, "POST", "/api/doses",
		fmt.Sprintf(`{"compound_id":"caffeine","amount_mg":200,"taken_at":%q}`, t0.Add(time.Hour).Format(time.RFC3339)))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body: %s", w.Code, w.Body.String())
	}
	adv := decode(t, w)["advisory"].(map[string]any)
	if adv["max_daily_dose_mg"] != float64(400) {
		t.Errorf("advisory = %v", adv)
	}
}

func TestUpdateAndDeleteDose(t *testing.T) {
	srv, db := testServer(t)

	id := addDose(t, srv, "caffeine", 100, t0)
	moved := t0.Add(2 * time.Hour)

	w := do(t, srv, "PATCH", "/api/doses/"+id, fmt.Sprintf(`{"taken_at":%q,"notes":"late"}`, moved.Format(time.RFC3339)))
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d; body: %s", w.Code, w.Body.String())
	}
	stored, _ := db.GetDose(id)
	if !stored.Timestamp.Equal(moved) || stored.Notes != "late" {
		t.Errorf("stored dose after patch = %+v", stored)
	}

	// level at the original time is now zero
	body := decode(t, do(t, srv, "GET", "/api/concentrations?at="+t0.Add(time.Hour).Format(time.RFC3339), ""))
	if got := body["levels"].(map[string]any)["caffeine"]; got != float64(0) {
		t.Errorf("caffeine before moved dose = %v, want 0", got)
	}

	if w := do(t, srv, "PATCH", "/api/doses/"+id, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", w.Code)
	}
	if w := do(t, srv, "PATCH", "/api/doses/missing", `{"notes":"x"}`); w.Code != http.StatusNotFound {
		t.Errorf("patch missing status = %d, want 404", w.Code)
	}

	if w := do(t, srv, "DELETE", "/api/doses/"+id, ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/doses/"+id, ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
	if _, err := db.GetDose(id); err == nil {
		t.Error("deleted dose still stored")
	}
}

func TestUpdateDoseStorageFailureNotPublished(t *testing.T) {
	srv, db := testServer(t)

	id := addDose(t, srv, "caffeine", 100, t0)
	before := srv.doses.Version()
	db.Close()

	moved := t0.Add(2 * time.Hour)
	w := do(t, srv, "PATCH", "/api/doses/"+id, fmt.Sprintf(`{"taken_at":%q,"notes":"late"}`, moved.Format(time.RFC3339)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("patch on closed db status = %d, want 500", w.Code)
	}
	if srv.doses.Version() != before {
		t.Error("ledger published despite failed write")
	}
	d, _ := srv.doses.Snapshot().Get(id)
	if !d.Timestamp.Equal(t0) || d.Notes != "" {
		t.Errorf("snapshot dose = %+v, want unchanged", d)
	}
}

func TestListDosesByCompound(t *testing.T) {
	srv, _ := testServer(t)

	addDose(t, srv, "caffeine", 100, t0)
	addDose(t, srv, "ginseng", 200, t0)
	addDose(t, srv, "caffeine", 50, t0.Add(time.Hour))

	body := decode(t, do(t, srv, "GET", "/api/doses?compound=caffeine", ""))
	if n := len(body["doses"].([]any)); n != 2 {
		t.Errorf("caffeine doses = %d, want 2", n)
	}
	if w := do(t, srv, "GET", "/api/doses?compound=nicotine", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown filter status = %d, want 400", w.Code)
	}
}

func TestConcentrations(t *testing.T) {
	srv, _ := testServer(t)

	addDose(t, srv, "caffeine", 100, t0)
	body := decode(t, do(t, srv, "GET", "/api/concentrations?at="+t0.Add(30*time.Minute).Format(time.RFC3339), ""))
	got := body["levels"].(map[string]any)["caffeine"].(float64)
	if math.Abs(got-58.39) > 0.01 {
		t.Errorf("caffeine at 30m = %v, want 58.39", got)
	}

	if w := do(t, srv, "GET", "/api/concentrations?at=yesterday", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad at status = %d, want 400", w.Code)
	}
}

func TestSeries(t *testing.T) {
	srv, _ := testServer(t)

	body := decode(t, do(t, srv, "GET", "/api/series", ""))
	if n := len(body["samples"].([]any)); n != 0 {
		t.Errorf("empty ledger samples = %d, want 0", n)
	}

	addDose(t, srv, "caffeine", 100, t0)
	body = decode(t, do(t, srv, "GET", "/api/series", ""))
	if n := len(body["samples"].([]any)); n != 25 {
		t.Errorf("default samples = %d, want 25", n)
	}
	peak := body["peaks"].(map[string]any)["caffeine"].(map[string]any)
	if peak["time"] != t0.Add(time.Hour).Format(time.RFC3339) {
		t.Errorf("caffeine peak at %v, want 1h after dose", peak["time"])
	}

	to := t0.Add(2 * time.Hour).Format(time.RFC3339)
	body = decode(t, do(t, srv, "GET", "/api/series?to="+to+"&step=30m", ""))
	if n := len(body["samples"].([]any)); n != 5 {
		t.Errorf("2h at 30m samples = %d, want 5", n)
	}
	if body["step"] != "30m0s" {
		t.Errorf("step = %v", body["step"])
	}

	if w := do(t, srv, "GET", "/api/series?step=-1h", ""); w.Code != http.StatusBadRequest {
		t.Errorf("negative step status = %d, want 400", w.Code)
	}
	from := t0.Add(3 * time.Hour).Format(time.RFC3339)
	if w := do(t, srv, "GET", "/api/series?from="+from+"&to="+to, ""); w.Code != http.StatusBadRequest {
		t.Errorf("inverted window status = %d, want 400", w.Code)
	}
}

func TestSeriesSampleCap(t *testing.T) {
	srv, _ := testServer(t)
	addDose(t, srv, "caffeine", 100, t0)

	q := "from=2024-01-01T00:00:00Z&to=2024-01-31T00:00:00Z"
	w := do(t, srv, "GET", "/api/series?"+q+"&step=1ms", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("1ms over 30 days status = %d, want 400", w.Code)
	}
	if body := decode(t, w); body["kind"] != "invalid_parameter" {
		t.Errorf("kind = %v, want invalid_parameter", body["kind"])
	}

	// 30 days hourly is 721 samples, well under the cap
	if w := do(t, srv, "GET", "/api/series?"+q+"&step=1h", ""); w.Code != http.StatusOK {
		t.Errorf("hourly status = %d, want 200", w.Code)
	}
}

func TestWarningsAndThresholds(t *testing.T) {
	srv, _ := testServer(t)

	// Nothing taken: every compound is below its minimum.
	body := decode(t, do(t, srv, "GET", "/api/warnings", ""))
	if n := len(body["warnings"].([]any)); n != 5 {
		t.Fatalf("warnings on empty ledger = %d, want 5", n)
	}

	for _, id := range []string{"l-theanine", "ginseng", "magnesium", "rhodiola"} {
		w := do(t, srv, "PUT", "/api/thresholds/"+id, `{"min_mg":0,"alert_enabled":false}`)
		if w.Code != http.StatusOK {
			t.Fatalf("set threshold %s: status = %d; body: %s", id, w.Code, w.Body.String())
		}
	}
	w := do(t, srv, "PUT", "/api/thresholds/caffeine", `{"min_mg":10,"max_mg":50}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set caffeine threshold: status = %d; body: %s", w.Code, w.Body.String())
	}

	addDose(t, srv, "caffeine", 100, t0)
	at := t0.Add(time.Hour).Format(time.RFC3339)
	body = decode(t, do(t, srv, "GET", "/api/warnings?at="+at, ""))
	warnings := body["warnings"].([]any)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one above_maximum", warnings)
	}
	if kind := warnings[0].(map[string]any)["kind"]; kind != "above_maximum" {
		t.Errorf("kind = %v, want above_maximum", kind)
	}

	list := decode(t, do(t, srv, "GET", "/api/thresholds", ""))["thresholds"].([]any)
	if len(list) != 5 {
		t.Errorf("thresholds = %d, want one per compound", len(list))
	}

	if w := do(t, srv, "PUT", "/api/thresholds/caffeine", `{"min_mg":100,"max_mg":50}`); w.Code != http.StatusBadRequest {
		t.Errorf("min above max status = %d, want 400", w.Code)
	}
	if w := do(t, srv, "PUT", "/api/thresholds/caffeine", `{"min_mg":-1}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative min status = %d, want 400", w.Code)
	}
	if w := do(t, srv, "PUT", "/api/thresholds/nicotine", `{"min_mg":1}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown compound status = %d, want 404", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/thresholds/caffeine", ""); w.Code != http.StatusOK {
		t.Errorf("reset threshold status = %d", w.Code)
	}
}

func TestInteractionsAndScores(t *testing.T) {
	srv, _ := testServer(t)

	addDose(t, srv, "caffeine", 100, t0)
	addDose(t, srv, "ginseng", 200, t0)
	addDose(t, srv, "l-theanine", 200, t0)
	at := t0.Add(2 * time.Hour).Format(time.RFC3339)

	body := decode(t, do(t, srv, "GET", "/api/interactions?at="+at, ""))
	interactions := body["interactions"].([]any)
	if len(interactions) != 1 {
		t.Fatalf("interactions = %v, want caffeine/ginseng", interactions)
	}
	if other := interactions[0].(map[string]any)["other_id"]; other != "ginseng" {
		t.Errorf("other = %v, want ginseng", other)
	}

	scores := decode(t, do(t, srv, "GET", "/api/scores?at="+at, ""))["scores"].(map[string]any)
	if scores["synergy"] != float64(1) || scores["tolerance_risk"] != float64(0) || scores["circadian_alignment"] != float64(1) {
		t.Errorf("scores = %v", scores)
	}
}

func TestSleepSchedule(t *testing.T) {
	srv, _ := testServer(t)

	body := decode(t, do(t, srv, "GET", "/api/sleep", ""))
	if body["start"] != "22:00" || body["end"] != "06:00" {
		t.Errorf("default sleep = %v", body)
	}

	if w := do(t, srv, "PUT", "/api/sleep", `{"start":"23:00","end":"07:30"}`); w.Code != http.StatusOK {
		t.Fatalf("set sleep status = %d; body: %s", w.Code, w.Body.String())
	}
	body = decode(t, do(t, srv, "GET", "/api/sleep", ""))
	if body["start"] != "23:00" || body["end"] != "07:30" {
		t.Errorf("stored sleep = %v", body)
	}

	// 23:00 now falls inside the sleep window; 22:00 is the suboptimal hour
	// before it.
	for hour, want := range map[int]float64{23: 0, 22: 0.5, 21: 1} {
		at := time.Date(2026, 3, 1, hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
		scores := decode(t, do(t, srv, "GET", "/api/scores?at="+at, ""))["scores"].(map[string]any)
		if scores["circadian_alignment"] != want {
			t.Errorf("alignment at %02d:00 = %v, want %v", hour, scores["circadian_alignment"], want)
		}
	}

	for _, bad := range []string{`{"start":"23:00"}`, `{"start":"25:00","end":"07:00"}`, `{"start":"06:00","end":"06:45"}`} {
		if w := do(t, srv, "PUT", "/api/sleep", bad); w.Code != http.StatusBadRequest {
			t.Errorf("PUT %s status = %d, want 400", bad, w.Code)
		}
	}
}

func TestNotifications(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	eng := engine.New(catalog.Default())
	doses := ledger.NewStore(ledger.Ledger{})
	n := alerts.New(eng, doses, store.Settings{DB: db, DefaultSleep: domain.DefaultSleepSchedule()})
	srv := New(db, eng, doses, "test", WithNotifier(n))

	if err := n.Tick(t0); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	body := decode(t, do(t, srv, "GET", "/api/notifications", ""))
	if got := len(body["notifications"].([]any)); got != 5 {
		t.Errorf("notifications = %d, want 5", got)
	}
	if body["latest"] == nil {
		t.Error("latest status missing after a tick")
	}

	body = decode(t, do(t, srv, "GET", "/api/notifications?limit=2", ""))
	if got := len(body["notifications"].([]any)); got != 2 {
		t.Errorf("limited notifications = %d, want 2", got)
	}
}
