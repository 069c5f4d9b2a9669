// Package mutability scores how suitable a parcel is for each land use and how
// much the score can be trusted.
package mutability

// Usage is a target land-use category.
type Usage string

const (
	UsageResidential      Usage = "residential"
	UsagePublicFacilities Usage = "public_facilities"
	UsageOffices          Usage = "offices"
	UsageCultureTourism   Usage = "culture_tourism"
	UsageIndustry         Usage = "industry"
	UsageSolarFarm        Usage = "solar_farm"
	UsageRenaturation     Usage = "renaturation"
)

// UsageCount is the number of usage categories.
const UsageCount = 7

// Usages lists the categories in enumeration order. Ties in ranking keep this order.
var Usages = [UsageCount]Usage{
	UsageResidential,
	UsagePublicFacilities,
	UsageOffices,
	UsageCultureTourism,
	UsageIndustry,
	UsageSolarFarm,
	UsageRenaturation,
}

// Scores holds one raw score per usage, indexed like Usages.
// It is an array, so every assignment is a copy.
type Scores [UsageCount]float64

// For returns the score of usage u, or 0 for an unrecognised usage.
func (s Scores) For(u Usage) float64 {
	for i, x := range Usages {
		if x == u {
			return s[i]
		}
	}
	return 0
}
