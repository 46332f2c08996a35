package scoring

import "sort"

// BuildBreakdown projects the outputs of the other components into a
// Breakdown. It performs no arithmetic of its own.
func BuildBreakdown(c Classification, vetted, adSurveillance bool, dims DimensionTotals, pen PenaltyTotals, comp Composition) Breakdown {
	b := Breakdown{
		BaseClass:        c.Class,
		BaseScore:        c.BaseScore,
		ClassCap:         c.ClassCap,
		Vetted:           vetted,
		AdSurveillance:   adSurveillance,
		OperationalTotal: dims.OperationalTotal,
		SignalTotal:      dims.SignalTotal,
		RawPenaltyTotal:  pen.RawTotal,
		PenaltyScale:     pen.Scale,
		PenaltyTotal:     pen.Total,
		RawScore:         comp.RawScore,
		FinalScore100:    comp.FinalScore100,
		CapApplied:       comp.CapApplied,
		Dimensions:       make(map[Dimension]DimensionBreakdown, len(dims.Dimensions)),
		ReservationItems: append([]ReservationItem{}, pen.Items...),
		SignalItems:      append([]SignalItem{}, dims.Items...),
	}
	for d, db := range dims.Dimensions {
		db.Penalties = pen.ByTier[d]
		b.Dimensions[d] = db
	}
	sortSignalItems(b.SignalItems)
	return b
}

func sortSignalItems(items []SignalItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Amount != items[j].Amount {
			return items[i].Amount > items[j].Amount
		}
		return items[i].ID < items[j].ID
	})
}
