package scoring

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

// AdPredicate decides whether an entry's business model is funded by
// ad-driven surveillance.
type AdPredicate func(e Entry, md *Metadata) bool

// VettedPredicate decides whether an entry gets the vetted dimension baseline.
type VettedPredicate func(in Input) bool

// Policy holds the swappable rules of the engine.
type Policy struct {
	IsVetted               VettedPredicate
	IsAdSurveillanceFunded AdPredicate
	Age                    AgeFunc
	// EstimateUnvetted derives penalties and signals for unvetted entries
	// from reservation text and entry tags.
	EstimateUnvetted bool
}

// DefaultPolicy returns the rules the catalog ships with.
func DefaultPolicy() Policy {
	return Policy{
		IsVetted:               VettedByEvidence,
		IsAdSurveillanceFunded: AdSurveillanceFromMetadata,
		Age:                    DefaultAge,
		EstimateUnvetted:       true,
	}
}

// VettedByEvidence treats an entry as vetted once editors have recorded
// scoring metadata or at least one positive signal the aggregator accepts.
func VettedByEvidence(in Input) bool {
	if in.Metadata != nil {
		return true
	}
	for _, s := range in.Signals {
		if ValidSignal(s) {
			return true
		}
	}
	return false
}

// AdSurveillanceFromMetadata reads the editorial isAdSurveillance flag.
func AdSurveillanceFromMetadata(_ Entry, md *Metadata) bool {
	return md != nil && md.IsAdSurveillance
}

// AdSurveillanceByTags matches entries carrying any of the given tags.
func AdSurveillanceByTags(tags ...string) AdPredicate {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return func(e Entry, _ *Metadata) bool {
		for _, t := range e.Tags {
			if _, ok := want[strings.ToLower(strings.TrimSpace(t))]; ok {
				return true
			}
		}
		return false
	}
}

// AnyAd matches when any of the predicates match.
func AnyAd(preds ...AdPredicate) AdPredicate {
	return func(e Entry, md *Metadata) bool {
		return slices.ContainsFunc(preds, func(p AdPredicate) bool { return p != nil && p(e, md) })
	}
}

// Engine computes trust scores. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	policy Policy
	logger *slog.Logger
}

// New creates an engine. Nil policy fields fall back to DefaultPolicy and a
// nil logger discards diagnostics.
func New(policy Policy, logger *slog.Logger) *Engine {
	def := DefaultPolicy()
	if policy.IsVetted == nil {
		policy.IsVetted = def.IsVetted
	}
	if policy.IsAdSurveillanceFunded == nil {
		policy.IsAdSurveillanceFunded = def.IsAdSurveillanceFunded
	}
	if policy.Age == nil {
		policy.Age = def.Age
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{policy: policy, logger: logger}
}

// Policy returns the rules the engine was built with.
func (e *Engine) Policy() Policy { return e.policy }

// Compute scores one entry. It never fails: malformed evidence is skipped
// and reported through Result.Flags.
func (e *Engine) Compute(in Input) Result {
	class, flags := Classify(in.Entry, in.Metadata)
	vetted := e.policy.IsVetted(in)
	estimate := e.policy.EstimateUnvetted && !vetted

	signals := make([]SignalItem, 0, len(in.Signals))
	for _, s := range in.Signals {
		signals = append(signals, NewSignalItem(s, false))
	}
	if estimate {
		for _, s := range EstimateSignals(in.Entry) {
			signals = append(signals, NewSignalItem(s, true))
		}
	}

	reservations := make([]ReservationItem, 0, len(in.Reservations))
	for _, r := range in.Reservations {
		if r.HasPenalty() {
			reservations = append(reservations, NewReservationItem(r, false))
			continue
		}
		if estimate {
			est, _ := EstimatePenalty(r)
			reservations = append(reservations, NewReservationItem(est, true))
		}
	}

	dims := AggregateDimensions(signals, vetted)
	pen := NormalizePenalties(reservations, in.Now, e.policy.Age)
	ad := e.policy.IsAdSurveillanceFunded(in.Entry, in.Metadata)
	comp := Compose(class, dims.OperationalTotal, pen.Total, ad)

	flags = append(flags, dims.Flags...)
	flags = append(flags, pen.Flags...)
	for _, f := range flags {
		e.logger.Warn("trust score input needs review",
			"entry", in.Entry.ID,
			"code", string(f.Code),
			"item", f.ItemID,
			"detail", f.Message,
		)
	}

	return Result{
		Score:     DisplayScore(comp.FinalScore100),
		Breakdown: BuildBreakdown(class, vetted, ad, dims, pen, comp),
		Flags:     flags,
	}
}

// ComputeTrustScore scores one entry with the default policy.
func ComputeTrustScore(entry Entry, reservations []Reservation, signals []PositiveSignal, md *Metadata, now time.Time) Result {
	return New(DefaultPolicy(), nil).Compute(Input{
		Entry:        entry,
		Reservations: reservations,
		Signals:      signals,
		Metadata:     md,
		Now:          now,
	})
}
