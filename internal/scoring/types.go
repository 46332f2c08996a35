// Package scoring implements the trust-score engine: classification, dimension
// aggregation, recency-decayed penalties, score composition and the auditable
// breakdown shown next to every catalog entry.
package scoring

import "time"

// Entry holds the classification attributes of a catalog entry.
type Entry struct {
	ID              string          `yaml:"id" json:"id"`
	Name            string          `yaml:"name" json:"name"`
	Country         string          `yaml:"country" json:"country"`
	IsOpenSource    bool            `yaml:"isOpenSource" json:"isOpenSource"`
	OpenSourceLevel OpenSourceLevel `yaml:"openSourceLevel,omitempty" json:"openSourceLevel,omitempty"`
	Category        string          `yaml:"category,omitempty" json:"category,omitempty"`
	Tags            []string        `yaml:"tags,omitempty" json:"tags,omitempty"`
	SelfHostable    bool            `yaml:"selfHostable,omitempty" json:"selfHostable,omitempty"`
}

// Reservation is a negative editorial finding about an entry.
// Tier and Amount are both empty on informational reservations.
type Reservation struct {
	ID        string    `yaml:"id" json:"id"`
	Text      string    `yaml:"text" json:"text"`
	TextDe    string    `yaml:"textDe,omitempty" json:"textDe,omitempty"`
	Severity  Severity  `yaml:"severity,omitempty" json:"severity,omitempty"`
	Tier      Dimension `yaml:"tier,omitempty" json:"tier,omitempty"`
	Amount    float64   `yaml:"amount,omitempty" json:"amount,omitempty"`
	Date      string    `yaml:"date,omitempty" json:"date,omitempty"`
	SourceURL string    `yaml:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
}

// HasPenalty reports whether the reservation carries a penalty at all.
func (r Reservation) HasPenalty() bool {
	return r.Tier != "" || r.Amount != 0
}

// PositiveSignal is a vetted piece of positive evidence.
type PositiveSignal struct {
	ID        string    `yaml:"id" json:"id"`
	Text      string    `yaml:"text" json:"text"`
	TextDe    string    `yaml:"textDe,omitempty" json:"textDe,omitempty"`
	Dimension Dimension `yaml:"dimension" json:"dimension"`
	Amount    float64   `yaml:"amount" json:"amount"`
	SourceURL string    `yaml:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
}

// Metadata carries editorial scoring overrides for an entry.
type Metadata struct {
	BaseClassOverride BaseClass `yaml:"baseClassOverride,omitempty" json:"baseClassOverride,omitempty"`
	IsAdSurveillance  bool      `yaml:"isAdSurveillance,omitempty" json:"isAdSurveillance,omitempty"`
}

// Input is everything one engine invocation may look at.
type Input struct {
	Entry        Entry
	Reservations []Reservation
	Signals      []PositiveSignal
	Metadata     *Metadata
	Now          time.Time
}

// DimensionBreakdown is the per-dimension part of a breakdown.
type DimensionBreakdown struct {
	Effective float64 `json:"effective"`
	Max       float64 `json:"max"`
	Baseline  float64 `json:"baseline"`
	Signals   float64 `json:"signals"`
	// Penalties is the share of penaltyTotal charged against this tier. It is
	// informational; penalties are subtracted from the composed score.
	Penalties float64 `json:"penalties"`
}

// ReservationItem is a reservation as it was actually charged.
type ReservationItem struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	TextDe     string    `json:"textDe,omitempty"`
	Tier       Dimension `json:"tier"`
	RawAmount  float64   `json:"rawAmount"`
	Multiplier float64   `json:"multiplier"`
	Decayed    float64   `json:"decayed"`
	Amount     float64   `json:"amount"`
	Date       string    `json:"date,omitempty"`
	SourceURL  string    `json:"sourceUrl,omitempty"`
	Estimated  bool      `json:"estimated,omitempty"`
}

// SignalItem is a positive signal as it was counted.
type SignalItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	TextDe    string    `json:"textDe,omitempty"`
	Dimension Dimension `json:"dimension"`
	Amount    float64   `json:"amount"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	Estimated bool      `json:"estimated,omitempty"`
}

// Breakdown is every intermediate value behind a score.
type Breakdown struct {
	BaseClass        BaseClass                        `json:"baseClass"`
	BaseScore        float64                          `json:"baseScore"`
	ClassCap         float64                          `json:"classCap"`
	Vetted           bool                             `json:"vetted"`
	AdSurveillance   bool                             `json:"adSurveillance"`
	OperationalTotal float64                          `json:"operationalTotal"`
	SignalTotal      float64                          `json:"signalTotal"`
	RawPenaltyTotal  float64                          `json:"rawPenaltyTotal"`
	PenaltyScale     float64                          `json:"penaltyScale"`
	PenaltyTotal     float64                          `json:"penaltyTotal"`
	RawScore         float64                          `json:"rawScore"`
	FinalScore100    float64                          `json:"finalScore100"`
	CapApplied       *float64                         `json:"capApplied"`
	Dimensions       map[Dimension]DimensionBreakdown `json:"dimensions"`
	ReservationItems []ReservationItem                `json:"reservationItems"`
	SignalItems      []SignalItem                     `json:"signalItems"`
}

// Flag is a diagnostic that asks for editorial review of the source data.
type Flag struct {
	Code    FlagCode `json:"code"`
	ItemID  string   `json:"itemId,omitempty"`
	Message string   `json:"message"`
}

// Result is the output of one engine invocation.
type Result struct {
	// Score is the displayed 0-10 score with one decimal.
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	Flags     []Flag    `json:"flags,omitempty"`
}
