package scoring

import (
	"fmt"
	"sort"
	"time"
)

// AgeFunc returns the age in years of a reservation dated date, measured at
// now. A non-empty FlagCode marks a date that needs editorial review; the
// returned age is then whatever the policy decided to charge.
type AgeFunc func(date string, now time.Time) (float64, FlagCode)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// DefaultAge treats undated reservations as structural (age 0) and clamps
// malformed or future dates to age 0, which charges them at full weight.
func DefaultAge(date string, now time.Time) (float64, FlagCode) {
	if date == "" {
		return 0, ""
	}
	then, ok := parseDate(date)
	if !ok {
		return 0, FlagMalformedDate
	}
	if then.After(now) {
		return 0, FlagFutureDate
	}
	return now.Sub(then).Hours() / 24 / daysPerYear, ""
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RecencyMultiplier returns the multiplier of the first bracket whose
// MaxYears is at least ageYears.
func RecencyMultiplier(ageYears float64) float64 {
	for _, b := range RecencyBrackets {
		if ageYears <= b.MaxYears {
			return b.Multiplier
		}
	}
	return RecencyBrackets[len(RecencyBrackets)-1].Multiplier
}

// NewReservationItem converts a reservation into an undecayed breakdown item.
func NewReservationItem(r Reservation, estimated bool) ReservationItem {
	return ReservationItem{
		ID:        r.ID,
		Text:      r.Text,
		TextDe:    r.TextDe,
		Tier:      r.Tier,
		RawAmount: r.Amount,
		Date:      r.Date,
		SourceURL: r.SourceURL,
		Estimated: estimated,
	}
}

// PenaltyTotals is the output of the recency decay and penalty normalizer.
type PenaltyTotals struct {
	// Items are sorted by charged amount, largest first.
	Items    []ReservationItem
	RawTotal float64
	Scale    float64
	Total    float64
	ByTier   map[Dimension]float64
	Flags    []Flag
}

// NormalizePenalties decays every reservation by age and, when the decayed
// sum exceeds CumulativePenaltyCap, scales all of them by the same factor so
// the total lands exactly on the cap.
func NormalizePenalties(items []ReservationItem, now time.Time, age AgeFunc) PenaltyTotals {
	if age == nil {
		age = DefaultAge
	}
	out := PenaltyTotals{
		Scale:  1,
		ByTier: make(map[Dimension]float64, len(Dimensions)),
	}

	for _, it := range items {
		if !it.Tier.Valid() {
			out.Flags = append(out.Flags, Flag{
				Code:    FlagUnknownDimension,
				ItemID:  it.ID,
				Message: fmt.Sprintf("reservation has unknown tier %q", it.Tier),
			})
			continue
		}
		if !ValidAmount(it.RawAmount) {
			out.Flags = append(out.Flags, Flag{
				Code:    FlagInvalidAmount,
				ItemID:  it.ID,
				Message: fmt.Sprintf("reservation amount must be a positive finite number, got %v", it.RawAmount),
			})
			continue
		}
		years, code := age(it.Date, now)
		if code != "" {
			out.Flags = append(out.Flags, Flag{
				Code:    code,
				ItemID:  it.ID,
				Message: fmt.Sprintf("reservation date %q charged at full weight", it.Date),
			})
		}
		it.Multiplier = RecencyMultiplier(years)
		it.Decayed = it.RawAmount * it.Multiplier
		out.RawTotal += it.Decayed
		out.Items = append(out.Items, it)
	}

	if out.RawTotal > CumulativePenaltyCap {
		out.Scale = CumulativePenaltyCap / out.RawTotal
	}
	for i := range out.Items {
		out.Items[i].Amount = out.Items[i].Decayed * out.Scale
		out.ByTier[out.Items[i].Tier] += out.Items[i].Amount
	}
	out.Total = out.RawTotal
	if out.Total > CumulativePenaltyCap {
		out.Total = CumulativePenaltyCap
	}

	sort.SliceStable(out.Items, func(i, j int) bool {
		if out.Items[i].Amount != out.Items[j].Amount {
			return out.Items[i].Amount > out.Items[j].Amount
		}
		return out.Items[i].ID < out.Items[j].ID
	})
	return out
}
