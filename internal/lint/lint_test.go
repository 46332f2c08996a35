package lint

import (
	"math"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/scoring"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testdata(t *testing.T, name string) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file location")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata", name)
}

func load(t *testing.T, name string) *catalog.Dataset {
	t.Helper()
	ds, err := catalog.Load(testdata(t, name))
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func findLevel(fs []Finding, path string) (Level, bool) {
	for _, f := range fs {
		if f.Path == path {
			return f.Level, true
		}
	}
	return "", false
}

func TestCheckCleanCatalog(t *testing.T) {
	fs := Check(load(t, "catalog"), now)
	if HasErrors(fs) {
		for _, f := range fs {
			t.Errorf("unexpected finding: %s (%s)", f, f.Level)
		}
	}
}

func TestCheckBrokenCatalog(t *testing.T) {
	fs := Check(load(t, "lint"), now)

	want := map[string]Level{
		"entries.yaml[1].id":                    LevelError,
		"entries.yaml[2].country":               LevelWarning,
		"entries.yaml[3].id":                    LevelError,
		"reservations.yaml[ghost]":              LevelError,
		"reservations.yaml[good][0].tier":       LevelError,
		"reservations.yaml[good][1].id":         LevelError,
		"reservations.yaml[good][1].amount":     LevelError,
		"reservations.yaml[good][2].date":       LevelError,
		"reservations.yaml[good][3].date":       LevelError,
		"reservations.yaml[good][4].severity":   LevelError,
		"signals.yaml[good][0].dimension":       LevelError,
		"signals.yaml[good][0].sourceUrl":       LevelWarning,
		"signals.yaml[good][1].amount":          LevelWarning,
		"metadata.yaml[good].baseClassOverride": LevelError,
		"pinned.yaml[ghost]":                    LevelError,
		"pinned.yaml[good]":                     LevelError,
	}
	for path, level := range want {
		got, ok := findLevel(fs, path)
		if !ok {
			t.Errorf("missing finding at %s", path)
			continue
		}
		if got != level {
			t.Errorf("%s: level = %s, want %s", path, got, level)
		}
	}
	if len(fs) != len(want) {
		for _, f := range fs {
			t.Logf("%s (%s)", f, f.Level)
		}
		t.Errorf("got %d findings, want %d", len(fs), len(want))
	}
	if !HasErrors(fs) {
		t.Error("expected errors")
	}
}

func TestCheckIsDeterministic(t *testing.T) {
	ds := load(t, "lint")
	a := Check(ds, now)
	b := Check(ds, now)
	if len(a) != len(b) {
		t.Fatalf("length differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("finding %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestInformationalReservationWithoutSeverity(t *testing.T) {
	ds := &catalog.Dataset{
		Entries: []scoring.Entry{{ID: "a", Name: "A", Country: "de"}},
		Reservations: map[string][]scoring.Reservation{
			"a": {{ID: "r", Text: "Note"}},
		},
	}
	fs := Check(ds, now)
	level, ok := findLevel(fs, "reservations.yaml[a][0]")
	if !ok || level != LevelWarning {
		t.Errorf("expected warning, got %v", fs)
	}
	if HasErrors(fs) {
		t.Errorf("unexpected errors: %v", fs)
	}
}

func TestNonFiniteValuesAreErrors(t *testing.T) {
	ds := &catalog.Dataset{
		Entries: []scoring.Entry{{ID: "a", Name: "A", Country: "de"}},
		Reservations: map[string][]scoring.Reservation{
			"a": {{ID: "r", Text: "Outage", Tier: scoring.DimensionSecurity, Amount: math.Inf(1)}},
		},
		Signals: map[string][]scoring.PositiveSignal{
			"a": {{ID: "s", Dimension: scoring.DimensionSecurity, Amount: math.Inf(1), SourceURL: "https://example.org/s"}},
		},
		Pinned: map[string]float64{"a": math.NaN()},
	}
	fs := Check(ds, now)
	for _, path := range []string{"reservations.yaml[a][0].amount", "signals.yaml[a][0].amount", "pinned.yaml[a]"} {
		if level, ok := findLevel(fs, path); !ok || level != LevelError {
			t.Errorf("expected error at %s, got %v", path, fs)
		}
	}
}

func TestCheckCountryCodes(t *testing.T) {
	ds := &catalog.Dataset{
		Entries: []scoring.Entry{
			{ID: "a", Name: "A", Country: "uk"},
			{ID: "b", Name: "B", Country: "xx"},
			{ID: "c", Name: "C", Country: "gb"},
		},
	}
	fs := Check(ds, now)
	for _, path := range []string{"entries.yaml[0].country", "entries.yaml[1].country"} {
		if level, ok := findLevel(fs, path); !ok || level != LevelWarning {
			t.Errorf("expected warning at %s, got %v", path, fs)
		}
	}
	if _, ok := findLevel(fs, "entries.yaml[2].country"); ok {
		t.Errorf("gb should be accepted: %v", fs)
	}
}

func TestCredentialsInEvidence(t *testing.T) {
	ds := &catalog.Dataset{
		Entries: []scoring.Entry{{ID: "a", Name: "A", Country: "de"}},
		Reservations: map[string][]scoring.Reservation{
			"a": {{ID: "r", Text: "Outage", Severity: scoring.SeverityMinor, SourceURL: "https://status.example.org/x?token=abc123"}},
		},
		Signals: map[string][]scoring.PositiveSignal{
			"a": {{ID: "s", Text: "Audit shared with password=hunter2", Dimension: scoring.DimensionSecurity, Amount: 2, SourceURL: "https://example.org/audit"}},
		},
	}
	fs := Check(ds, now)
	for _, path := range []string{"reservations.yaml[a][0].sourceUrl", "signals.yaml[a][0].text"} {
		if level, ok := findLevel(fs, path); !ok || level != LevelError {
			t.Errorf("expected error at %s, got %v", path, fs)
		}
	}
	for _, f := range fs {
		if strings.Contains(f.Message, "abc123") {
			t.Errorf("finding leaks the credential: %s", f)
		}
	}
}

func TestCount(t *testing.T) {
	fs := []Finding{
		{Level: LevelError}, {Level: LevelWarning}, {Level: LevelError},
	}
	errs, warns := Count(fs)
	if errs != 2 || warns != 1 {
		t.Errorf("Count = %d, %d; want 2, 1", errs, warns)
	}
}
