package scoring

import (
	"regexp"
	"strings"
)

// Tier patterns are tried in order; governance is the fallback.
var tierPatterns = []struct {
	tier    Dimension
	pattern *regexp.Regexp
}{
	{DimensionSecurity, regexp.MustCompile(`(?i)breach|vulnerab|cve|exploit|encrypt|tracker|unauthorized|injection|bypass|attack|malicious|phishing|2fa|mfa|credential|leak|compromise|security|audit|pentest|ddos|intercept`)},
	{DimensionReliability, regexp.MustCompile(`(?i)outage|incident|downtime|availab|status|deprecat|degrad|disrupt|suspend|latency|maintenance|uptime|infra`)},
	{DimensionContract, regexp.MustCompile(`(?i)lock-in|portab|cancel|terminat|pricing|renewal|arbitrat|subscript|fee|charge|billing|invoice|refund|unilateral|reserve|withhold|waiver|class-action|non-commercial|liability|indemnif|license|restriction|restrict|sublicens`)},
}

var severityAmounts = map[Severity]float64{
	SeverityMajor:    4,
	SeverityModerate: 2,
	SeverityMinor:    1,
}

// EstimateTier guesses the tier of a reservation from its text.
func EstimateTier(text string) Dimension {
	for _, tp := range tierPatterns {
		if tp.pattern.MatchString(text) {
			return tp.tier
		}
	}
	return DimensionGovernance
}

// EstimatePenalty fills in the tier and amount of a reservation that carries
// no penalty. Reservations that already have one are returned unchanged.
func EstimatePenalty(r Reservation) (Reservation, bool) {
	if r.HasPenalty() {
		return r, false
	}
	r.Tier = EstimateTier(r.Text)
	amount, ok := severityAmounts[r.Severity]
	if !ok {
		amount = severityAmounts[SeverityMinor]
	}
	r.Amount = amount
	return r, true
}

// EstimateSignals derives positive signals for an unvetted entry from its
// tags and openness. Estimated signals carry no source URL.
func EstimateSignals(e Entry) []PositiveSignal {
	tags := make(map[string]bool, len(e.Tags))
	for _, t := range e.Tags {
		tags[strings.ToLower(strings.TrimSpace(t))] = true
	}
	full := IsFullyOpenSource(e)

	var out []PositiveSignal
	add := func(id, text string, d Dimension, amount float64) {
		out = append(out, PositiveSignal{ID: id, Text: text, Dimension: d, Amount: amount})
	}

	if tags["encryption"] || tags["zero-knowledge"] {
		add("e2e-encryption-default", "End-to-end encryption", DimensionSecurity, 2)
	}
	if tags["privacy"] || tags["no-logs"] {
		add("data-minimization-verified", "Privacy / no-logs practices", DimensionSecurity, 1)
	}

	switch {
	case full:
		add("full-open-source", "Fully open-source", DimensionGovernance, 2)
	case e.OpenSourceLevel == OpenSourcePartial:
		add("partial-open-source", "Partially open-source", DimensionGovernance, 1)
	}
	if tags["gdpr"] {
		add("gdpr-dpa-documented", "GDPR compliance documented", DimensionGovernance, 1)
	}

	if tags["federated"] || tags["local"] || tags["offline"] {
		add("multi-region-infrastructure", "Federated/local resilience", DimensionReliability, 1)
	}

	if e.SelfHostable {
		add("self-hostable", "Self-hostable", DimensionContract, 2)
	}
	if full {
		add("open-standards-no-lock-in", "Open-source prevents lock-in", DimensionContract, 1)
	}
	return out
}
