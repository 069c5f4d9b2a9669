package mutability

import (
	"mutafriches/internal/parcel"
	"mutafriches/pkg/numeric"
)

// Reliability says how much of the parcel was known when it was scored.
type Reliability struct {
	Note           float64 `json:"note"`
	Label          string  `json:"label"`
	Description    string  `json:"description"`
	CriteriaFilled int     `json:"criteriaFilled"`
	CriteriaTotal  int     `json:"criteriaTotal"`
}

type reliabilityLevel struct {
	min         float64
	label       string
	description string
}

// reliabilityLevels is ordered by decreasing threshold.
var reliabilityLevels = []reliabilityLevel{
	{9, "very reliable", "Nearly every criterion is documented; the ranking can be used as is."},
	{7, "reliable", "Most criteria are documented; the ranking is robust."},
	{5, "moderately reliable", "Several criteria are missing; confirm the leading usages on site."},
	{3, "unreliable", "Many criteria are missing; treat the ranking as indicative only."},
	{0, "very unreliable", "Too few criteria are documented to rank usages meaningfully."},
}

// EstimateReliability counts the known criteria of p and maps the resulting
// note (0 to 10 in steps of 0.5) to a label.
func EstimateReliability(p parcel.Parcel) Reliability {
	filled := 0
	for _, v := range p.Criteria() {
		if v.Known() {
			filled++
		}
	}
	note := numeric.RoundHalf(float64(filled) / parcel.CriteriaTotal * 10)

	level := reliabilityLevels[len(reliabilityLevels)-1]
	for _, l := range reliabilityLevels {
		if note >= l.min {
			level = l
			break
		}
	}
	return Reliability{
		Note:           note,
		Label:          level.label,
		Description:    level.description,
		CriteriaFilled: filled,
		CriteriaTotal:  parcel.CriteriaTotal,
	}
}

// Estimator adapts EstimateReliability to an injectable dependency.
type Estimator struct{}

func (Estimator) Estimate(p parcel.Parcel) Reliability { return EstimateReliability(p) }
