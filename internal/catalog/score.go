package catalog

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/euroalt/trustscore/internal/scoring"
	"github.com/euroalt/trustscore/internal/telemetry"
)

// Status reports whether a displayed score was assigned by an editor.
type Status string

const (
	StatusReady   Status = "ready"
	StatusPending Status = "pending"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusReady, StatusPending:
		return true
	}
	return false
}

// Scored is one catalog entry with its computed result.
type Scored struct {
	Entry  scoring.Entry  `json:"entry"`
	Status Status         `json:"status"`
	Score  float64        `json:"score"`
	Pinned *float64       `json:"pinnedScore"`
	Result scoring.Result `json:"result"`
}

// Report is the output of a scoring run.
type Report struct {
	DataHash    string    `json:"dataHash"`
	GeneratedAt time.Time `json:"generatedAt"`
	Entries     []Scored  `json:"entries"`
}

// Find returns the scored entry with the given id.
func (r *Report) Find(id string) (Scored, bool) {
	for _, s := range r.Entries {
		if s.Entry.ID == id {
			return s, true
		}
	}
	return Scored{}, false
}

// FlagCount returns the number of flags across all entries.
func (r *Report) FlagCount() int {
	n := 0
	for _, s := range r.Entries {
		n += len(s.Result.Flags)
	}
	return n
}

// Option configures a scoring run.
type Option func(*runConfig)

type runConfig struct {
	metrics telemetry.Metrics
	limit   int
}

// WithMetrics records per-entry and per-run telemetry.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *runConfig) { c.metrics = m }
}

// WithConcurrency bounds the number of entries scored at once.
func WithConcurrency(n int) Option {
	return func(c *runConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// MaxPinned is the upper bound of a human-assigned display score.
const MaxPinned = 10

// ValidPinned reports whether v is a usable display score. NaN is rejected.
func ValidPinned(v float64) bool {
	return v >= 0 && v <= MaxPinned
}

// ScoreOne scores a single entry and resolves its display status.
func ScoreOne(eng *scoring.Engine, ds *Dataset, e scoring.Entry, now time.Time) Scored {
	in := ds.Input(e)
	in.Now = now
	res := eng.Compute(in)

	s := Scored{Entry: e, Status: StatusPending, Score: res.Score, Result: res}
	p, ok := ds.Pinned[e.ID]
	switch {
	case !ok:
	case !ValidPinned(p):
		s.Result.Flags = append(s.Result.Flags, scoring.Flag{
			Code:    scoring.FlagInvalidPinned,
			Message: fmt.Sprintf("pinned score %v outside 0-%d ignored", p, MaxPinned),
		})
	default:
		s.Pinned = &p
		s.Status = StatusReady
		s.Score = p
	}
	return s
}

// ScoreAll scores every entry in ds. Results keep the dataset's entry order.
func ScoreAll(ctx context.Context, eng *scoring.Engine, ds *Dataset, now time.Time, opts ...Option) (*Report, error) {
	cfg := runConfig{limit: runtime.GOMAXPROCS(0)}
	for _, o := range opts {
		o(&cfg)
	}

	start := time.Now()
	out := make([]Scored, len(ds.Entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.limit)
	for i, e := range ds.Entries {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := ScoreOne(eng, ds, e, now)
			out[i] = s
			cfg.metrics.RecordEntry(gctx, string(s.Result.Breakdown.BaseClass), string(s.Status),
				s.Result.Breakdown.FinalScore100, s.Result.Breakdown.CapApplied != nil, flagCodes(s.Result.Flags))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("catalog.ScoreAll: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog.ScoreAll: %w", err)
	}
	cfg.metrics.RecordRun(ctx, len(out), time.Since(start))

	return &Report{DataHash: ds.Hash, GeneratedAt: now, Entries: out}, nil
}

func flagCodes(flags []scoring.Flag) []string {
	if len(flags) == 0 {
		return nil
	}
	codes := make([]string, len(flags))
	for i, f := range flags {
		codes[i] = string(f.Code)
	}
	return codes
}

// SortByScore orders entries by displayed score, highest first, then by id.
func SortByScore(entries []Scored) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Entry.ID < entries[j].Entry.ID
	})
}
