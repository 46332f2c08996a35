package scoring

import (
	"fmt"
	"math"
)

// DimensionTotals is the output of the dimension aggregator.
type DimensionTotals struct {
	Dimensions       map[Dimension]DimensionBreakdown
	OperationalTotal float64
	SignalTotal      float64
	// Items are the accepted signals in input order.
	Items []SignalItem
	Flags []Flag
}

// Baseline returns the starting value of a dimension before signals.
func Baseline(d Dimension, vetted bool) float64 {
	b := DimensionMaxes[d] * vettedBaselineFraction
	if !vetted {
		b *= nonVettedBaselineFraction
	}
	return b
}

// NewSignalItem converts a positive signal into a breakdown item.
func NewSignalItem(s PositiveSignal, estimated bool) SignalItem {
	return SignalItem{
		ID:        s.ID,
		Text:      s.Text,
		TextDe:    s.TextDe,
		Dimension: s.Dimension,
		Amount:    s.Amount,
		SourceURL: s.SourceURL,
		Estimated: estimated,
	}
}

// AggregateDimensions adds signal evidence on top of the baseline of each
// dimension. Contributions beyond a dimension's max are absorbed. Signals
// with an unknown dimension or an invalid amount are skipped and flagged.
func AggregateDimensions(signals []SignalItem, vetted bool) DimensionTotals {
	sums := make(map[Dimension]float64, len(Dimensions))
	out := DimensionTotals{
		Dimensions: make(map[Dimension]DimensionBreakdown, len(Dimensions)),
	}

	for _, s := range signals {
		if !s.Dimension.Valid() {
			out.Flags = append(out.Flags, Flag{
				Code:    FlagUnknownDimension,
				ItemID:  s.ID,
				Message: fmt.Sprintf("signal has unknown dimension %q", s.Dimension),
			})
			continue
		}
		if !ValidAmount(s.Amount) {
			out.Flags = append(out.Flags, Flag{
				Code:    FlagInvalidAmount,
				ItemID:  s.ID,
				Message: fmt.Sprintf("signal amount must be a positive finite number, got %v", s.Amount),
			})
			continue
		}
		sums[s.Dimension] += s.Amount
		out.SignalTotal += s.Amount
		out.Items = append(out.Items, s)
	}

	for _, d := range Dimensions {
		ceil := DimensionMaxes[d]
		base := Baseline(d, vetted)
		eff := clamp(base+sums[d], 0, ceil)
		out.Dimensions[d] = DimensionBreakdown{
			Effective: eff,
			Max:       ceil,
			Baseline:  base,
			Signals:   sums[d],
		}
		out.OperationalTotal += eff
	}
	return out
}

// ValidAmount reports whether x is a usable evidence amount: positive and
// finite. NaN fails the comparison.
func ValidAmount(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// ValidSignal reports whether the aggregator would accept s.
func ValidSignal(s PositiveSignal) bool {
	return s.Dimension.Valid() && ValidAmount(s.Amount)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
