package scoring

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Classification is the output of the classifier.
type Classification struct {
	Class     BaseClass
	BaseScore float64
	ClassCap  float64
}

// Lookup returns the base score and class cap of a base class.
// Unknown classes resolve to ClassRest.
func Lookup(class BaseClass) Classification {
	if !class.Valid() {
		class = ClassRest
	}
	return Classification{
		Class:     class,
		BaseScore: BaseScores[class],
		ClassCap:  ClassCaps[class],
	}
}

// NormalizeCountry lower-cases and trims a country code.
func NormalizeCountry(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}

// IsFullyOpenSource treats an unset level on an open-source entry as full.
func IsFullyOpenSource(e Entry) bool {
	if e.OpenSourceLevel == "" {
		return e.IsOpenSource
	}
	return e.OpenSourceLevel == OpenSourceFull
}

// Classify assigns a base class. Overrides always win; unknown countries
// fall back to ClassRest with a flag rather than an error.
func Classify(e Entry, md *Metadata) (Classification, []Flag) {
	var flags []Flag
	if md != nil && md.BaseClassOverride != "" {
		if md.BaseClassOverride.Valid() {
			return Lookup(md.BaseClassOverride), nil
		}
		flags = append(flags, Flag{
			Code:    FlagInvalidOverride,
			ItemID:  e.ID,
			Message: fmt.Sprintf("ignoring unknown base class override %q", md.BaseClassOverride),
		})
	}

	if IsFullyOpenSource(e) {
		return Lookup(ClassFOSS), flags
	}

	country := NormalizeCountry(e.Country)
	switch {
	case IsEUMember(country), country == countryMetaEU:
		return Lookup(ClassEU), flags
	case IsEuropeanNonEU(country):
		return Lookup(ClassNonEU), flags
	case country == countryMetaOSS:
		return Lookup(ClassFOSS), flags
	case country == countryUS:
		return Lookup(ClassUS), flags
	case IsAutocracy(country):
		return Lookup(ClassAutocracy), flags
	}

	if !isCountryCode(country) {
		flags = append(flags, Flag{
			Code:    FlagUnknownCountry,
			ItemID:  e.ID,
			Message: fmt.Sprintf("unrecognized country code %q, classified as %s", e.Country, ClassRest),
		})
	}
	return Lookup(ClassRest), flags
}

// isCountryCode accepts current ISO 3166-1 alpha-2 country codes.
// Deprecated aliases such as "uk" and user-assigned codes are rejected.
func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	r, err := language.ParseRegion(s)
	if err != nil || !r.IsCountry() || r.IsPrivateUse() || r.String() == "ZZ" {
		return false
	}
	return strings.EqualFold(r.Canonicalize().String(), s)
}
