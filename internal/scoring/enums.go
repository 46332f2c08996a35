package scoring

// BaseClass is the coarse jurisdiction/openness bucket of an entry.
type BaseClass string

const (
	ClassFOSS      BaseClass = "foss"
	ClassEU        BaseClass = "eu"
	ClassNonEU     BaseClass = "nonEU"
	ClassRest      BaseClass = "rest"
	ClassUS        BaseClass = "us"
	ClassAutocracy BaseClass = "autocracy"
)

func (c BaseClass) Valid() bool {
	switch c {
	case ClassFOSS, ClassEU, ClassNonEU, ClassRest, ClassUS, ClassAutocracy:
		return true
	}
	return false
}

// Dimension is one of the four scored facets of trust. Reservations call it
// a tier; signals call it a dimension.
type Dimension string

const (
	DimensionSecurity    Dimension = "security"
	DimensionGovernance  Dimension = "governance"
	DimensionReliability Dimension = "reliability"
	DimensionContract    Dimension = "contract"
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{
	DimensionSecurity,
	DimensionGovernance,
	DimensionReliability,
	DimensionContract,
}

func (d Dimension) Valid() bool {
	switch d {
	case DimensionSecurity, DimensionGovernance, DimensionReliability, DimensionContract:
		return true
	}
	return false
}

// OpenSourceLevel describes how much of a product's source is published.
type OpenSourceLevel string

const (
	OpenSourceFull    OpenSourceLevel = "full"
	OpenSourcePartial OpenSourceLevel = "partial"
	OpenSourceNone    OpenSourceLevel = "none"
)

func (l OpenSourceLevel) Valid() bool {
	switch l {
	case OpenSourceFull, OpenSourcePartial, OpenSourceNone:
		return true
	}
	return false
}

// Severity is the editorial weight class of a reservation. It only drives
// the amount of estimated penalties.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeverityMajor:
		return true
	}
	return false
}

// FlagCode identifies the kind of editorial-review diagnostic.
type FlagCode string

const (
	FlagUnknownCountry   FlagCode = "unknown_country"
	FlagInvalidOverride  FlagCode = "invalid_override"
	FlagMalformedDate    FlagCode = "malformed_date"
	FlagFutureDate       FlagCode = "future_date"
	FlagUnknownDimension FlagCode = "unknown_dimension"
	FlagInvalidAmount    FlagCode = "invalid_amount"
	FlagInvalidPinned    FlagCode = "invalid_pinned"
)
