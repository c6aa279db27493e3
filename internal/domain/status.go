package domain

import "strings"

// Urgency classifies how soon a material needs replenishment action.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

var urgencyRanks = map[Urgency]int{
	UrgencyCritical: 0,
	UrgencyHigh:     1,
	UrgencyMedium:   2,
	UrgencyLow:      3,
}

// Rank returns the sort rank of an urgency; critical sorts first.
// Unknown values sort last.
func (u Urgency) Rank() int {
	if rank, ok := urgencyRanks[u]; ok {
		return rank
	}

	return len(urgencyRanks)
}

// ParseUrgency returns the urgency for a given label (case-insensitive).
func ParseUrgency(label string) (Urgency, bool) {
	u := Urgency(strings.ToLower(strings.TrimSpace(label)))
	_, ok := urgencyRanks[u]

	return u, ok
}

// Confidence labels how reliable a rate estimate is, based on sample count.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ConfidenceForSamples maps a sample count to a confidence tier.
func ConfidenceForSamples(n int) Confidence {
	switch {
	case n >= 60:
		return ConfidenceHigh
	case n >= 30:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
