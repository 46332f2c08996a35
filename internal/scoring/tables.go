package scoring

import "math"

const (
	// AdSurveillanceCap bounds entries funded by ad-driven surveillance.
	AdSurveillanceCap = 45.0
	// CumulativePenaltyCap is the most an entry can lose to reservations.
	CumulativePenaltyCap = 15.0

	vettedBaselineFraction    = 0.5
	nonVettedBaselineFraction = 0.5

	daysPerYear = 365.25
)

// BaseScores maps a base class to its starting score.
var BaseScores = map[BaseClass]float64{
	ClassFOSS:      80,
	ClassEU:        70,
	ClassNonEU:     65,
	ClassRest:      40,
	ClassUS:        20,
	ClassAutocracy: 10,
}

// ClassCaps maps a base class to its hard ceiling.
var ClassCaps = map[BaseClass]float64{
	ClassFOSS:      100,
	ClassEU:        97,
	ClassNonEU:     95,
	ClassRest:      70,
	ClassUS:        50,
	ClassAutocracy: 30,
}

// DimensionMaxes are the per-dimension ceilings; they sum to 32.
var DimensionMaxes = map[Dimension]float64{
	DimensionSecurity:    12,
	DimensionGovernance:  8,
	DimensionReliability: 6,
	DimensionContract:    6,
}

// RecencyBracket maps reservations up to MaxYears old to a multiplier.
type RecencyBracket struct {
	MaxYears   float64
	Multiplier float64
}

// RecencyBrackets is ordered by ascending age.
var RecencyBrackets = []RecencyBracket{
	{MaxYears: 1, Multiplier: 1.0},
	{MaxYears: 3, Multiplier: 0.5},
	{MaxYears: 5, Multiplier: 0.25},
	{MaxYears: math.Inf(1), Multiplier: 0.1},
}

var euMemberStates = setOf(
	"at", "be", "bg", "hr", "cy", "cz", "dk", "ee",
	"fi", "fr", "de", "gr", "hu", "ie", "it", "lv",
	"lt", "lu", "mt", "nl", "pl", "pt", "ro", "sk",
	"si", "es", "se",
)

var europeanNonEU = setOf("ch", "no", "gb", "is")

var autocracies = setOf("by", "cn", "cu", "er", "ir", "kp", "mm", "ru", "sy", "tm", "ve")

// Meta country codes used by the catalog for entries without one national home.
const (
	countryMetaEU  = "eu"
	countryMetaOSS = "oss"
	countryUS      = "us"
)

func setOf(codes ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

// IsEUMember reports whether a lower-case country code is an EU member state.
func IsEUMember(country string) bool {
	_, ok := euMemberStates[country]
	return ok
}

// IsEuropeanNonEU reports whether a lower-case country code is CH, NO, GB or IS.
func IsEuropeanNonEU(country string) bool {
	_, ok := europeanNonEU[country]
	return ok
}

// IsAutocracy reports whether a lower-case country code is on the autocracy list.
func IsAutocracy(country string) bool {
	_, ok := autocracies[country]
	return ok
}
