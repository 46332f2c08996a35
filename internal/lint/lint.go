// Package lint checks editorial data tables before they reach the engine.
// The engine tolerates every problem reported here; lint exists so editors
// see them at authoring time rather than as silently skipped evidence.
package lint

import (
	"fmt"
	"sort"
	"time"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/redact"
	"github.com/euroalt/trustscore/internal/scoring"
)

// Level is the severity of a finding.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Finding describes a single problem in the data tables.
type Finding struct {
	Path    string `json:"path"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func (f Finding) Error() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Message)
}

type findings []Finding

func (fs *findings) errorf(path, format string, args ...any) {
	*fs = append(*fs, Finding{Path: path, Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

func (fs *findings) warnf(path, format string, args ...any) {
	*fs = append(*fs, Finding{Path: path, Level: LevelWarning, Message: fmt.Sprintf(format, args...)})
}

// Check validates every table of ds. Dates are judged against now.
// Findings are ordered by table, then by entry id.
func Check(ds *catalog.Dataset, now time.Time) []Finding {
	var fs findings
	known := checkEntries(&fs, ds)

	for _, id := range sortedKeys(ds.Reservations) {
		prefix := fmt.Sprintf("%s[%s]", catalog.ReservationsFile, id)
		if !known[id] {
			fs.errorf(prefix, "unknown entry %q", id)
		}
		checkReservations(&fs, prefix, ds.Reservations[id], now)
	}

	for _, id := range sortedKeys(ds.Signals) {
		prefix := fmt.Sprintf("%s[%s]", catalog.SignalsFile, id)
		if !known[id] {
			fs.errorf(prefix, "unknown entry %q", id)
		}
		checkSignals(&fs, prefix, ds.Signals[id])
	}

	for _, id := range sortedKeys(ds.Metadata) {
		prefix := fmt.Sprintf("%s[%s]", catalog.MetadataFile, id)
		if !known[id] {
			fs.errorf(prefix, "unknown entry %q", id)
		}
		md := ds.Metadata[id]
		if md.BaseClassOverride != "" && !md.BaseClassOverride.Valid() {
			fs.errorf(prefix+".baseClassOverride", "invalid: %q", md.BaseClassOverride)
		}
	}

	for _, id := range sortedKeys(ds.Pinned) {
		prefix := fmt.Sprintf("%s[%s]", catalog.PinnedFile, id)
		if !known[id] {
			fs.errorf(prefix, "unknown entry %q", id)
		}
		if v := ds.Pinned[id]; !catalog.ValidPinned(v) {
			fs.errorf(prefix, "pinned score %v outside 0-%d", v, catalog.MaxPinned)
		}
	}

	return fs
}

func checkEntries(fs *findings, ds *catalog.Dataset) map[string]bool {
	known := make(map[string]bool, len(ds.Entries))
	for i, e := range ds.Entries {
		prefix := fmt.Sprintf("%s[%d]", catalog.EntriesFile, i)
		switch {
		case e.ID == "":
			fs.errorf(prefix+".id", "required")
		case known[e.ID]:
			fs.errorf(prefix+".id", "duplicate ID: %q", e.ID)
		default:
			known[e.ID] = true
		}
		if e.Name == "" {
			fs.warnf(prefix+".name", "required")
		}
		if e.OpenSourceLevel != "" && !e.OpenSourceLevel.Valid() {
			fs.errorf(prefix+".openSourceLevel", "invalid: %q", e.OpenSourceLevel)
		}
		// Overrides are reported against metadata.yaml; only the country matters here.
		_, flags := scoring.Classify(e, nil)
		for _, f := range flags {
			if f.Code == scoring.FlagUnknownCountry {
				fs.warnf(prefix+".country", "%s", f.Message)
			}
		}
	}
	return known
}

func checkReservations(fs *findings, prefix string, rs []scoring.Reservation, now time.Time) {
	ids := make(map[string]bool, len(rs))
	for i, r := range rs {
		p := fmt.Sprintf("%s[%d]", prefix, i)
		switch {
		case r.ID == "":
			fs.errorf(p+".id", "required")
		case ids[r.ID]:
			fs.errorf(p+".id", "duplicate ID: %q", r.ID)
		default:
			ids[r.ID] = true
		}
		if r.Text == "" {
			fs.errorf(p+".text", "required")
		}
		checkSecrets(fs, p, r.Text, r.SourceURL)
		if r.Severity != "" && !r.Severity.Valid() {
			fs.errorf(p+".severity", "invalid: %q", r.Severity)
		}

		if !r.HasPenalty() {
			if r.Severity == "" {
				fs.warnf(p, "informational reservation without severity is estimated as minor")
			}
			continue
		}
		if !r.Tier.Valid() {
			fs.errorf(p+".tier", "invalid: %q", r.Tier)
		}
		switch {
		case !scoring.ValidAmount(r.Amount):
			fs.errorf(p+".amount", "must be a positive finite number, got %v", r.Amount)
		case r.Amount > scoring.CumulativePenaltyCap:
			fs.warnf(p+".amount", "%v exceeds the cumulative penalty cap of %v", r.Amount, scoring.CumulativePenaltyCap)
		}
		if _, code := scoring.DefaultAge(r.Date, now); code != "" {
			fs.errorf(p+".date", "%s: %q", code, r.Date)
		}
	}
}

func checkSignals(fs *findings, prefix string, ss []scoring.PositiveSignal) {
	ids := make(map[string]bool, len(ss))
	for i, s := range ss {
		p := fmt.Sprintf("%s[%d]", prefix, i)
		switch {
		case s.ID == "":
			fs.errorf(p+".id", "required")
		case ids[s.ID]:
			fs.errorf(p+".id", "duplicate ID: %q", s.ID)
		default:
			ids[s.ID] = true
		}
		if !s.Dimension.Valid() {
			fs.errorf(p+".dimension", "invalid: %q", s.Dimension)
		}
		switch {
		case !scoring.ValidAmount(s.Amount):
			fs.errorf(p+".amount", "must be a positive finite number, got %v", s.Amount)
		case s.Dimension.Valid() && s.Amount > scoring.DimensionMaxes[s.Dimension]:
			fs.warnf(p+".amount", "%v exceeds the %s maximum of %v", s.Amount, s.Dimension, scoring.DimensionMaxes[s.Dimension])
		}
		if s.SourceURL == "" {
			fs.warnf(p+".sourceUrl", "vetted signals should cite a source")
		}
		checkSecrets(fs, p, s.Text, s.SourceURL)
	}
}

// checkSecrets rejects credentials pasted into published evidence.
func checkSecrets(fs *findings, prefix, text, sourceURL string) {
	if redact.HasSecret(text) {
		fs.errorf(prefix+".text", "contains what looks like a credential")
	}
	if redact.HasSecret(sourceURL) {
		fs.errorf(prefix+".sourceUrl", "contains credentials: %s", redact.URL(sourceURL))
	}
}

// HasErrors reports whether any finding is an error.
func HasErrors(fs []Finding) bool {
	for _, f := range fs {
		if f.Level == LevelError {
			return true
		}
	}
	return false
}

// Count returns the number of errors and warnings.
func Count(fs []Finding) (errs, warns int) {
	for _, f := range fs {
		switch f.Level {
		case LevelError:
			errs++
		case LevelWarning:
			warns++
		}
	}
	return errs, warns
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
