package scoring

import "math"

// Composition is the output of the score composer.
type Composition struct {
	RawScore      float64
	FinalScore100 float64
	// CapApplied is the cap that bound the result, or nil.
	CapApplied *float64
}

// Compose combines the base score, operational total and penalty total, then
// applies the ad-surveillance cap, the class cap and the [0,100] clamp.
func Compose(c Classification, operationalTotal, penaltyTotal float64, adSurveillance bool) Composition {
	raw := c.BaseScore + operationalTotal - penaltyTotal

	limit := c.ClassCap
	if adSurveillance && AdSurveillanceCap < limit {
		limit = AdSurveillanceCap
	}

	comp := Composition{RawScore: raw}
	capped := raw
	if raw > limit {
		capped = limit
		binding := limit
		comp.CapApplied = &binding
	}
	comp.FinalScore100 = clamp(capped, 0, 100)
	return comp
}

// DisplayScore converts a 0-100 score into the 0-10 score shown in the UI.
func DisplayScore(finalScore100 float64) float64 {
	return math.Round(finalScore100) / 10
}
