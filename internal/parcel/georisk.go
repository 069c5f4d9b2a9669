package parcel

import "mutafriches/pkg/numeric"

// GeoRiskSource identifies one national hazard dataset.
type GeoRiskSource string

const (
	GeoRiskRGA             GeoRiskSource = "rga"
	GeoRiskCavities        GeoRiskSource = "cavities"
	GeoRiskCatNat          GeoRiskSource = "catnat"
	GeoRiskFloodTRI        GeoRiskSource = "flood_tri"
	GeoRiskFloodAZI        GeoRiskSource = "flood_azi"
	GeoRiskFloodPAPI       GeoRiskSource = "flood_papi"
	GeoRiskPPR             GeoRiskSource = "ppr"
	GeoRiskGroundMovements GeoRiskSource = "ground_movements"
	GeoRiskSeismicZoning   GeoRiskSource = "seismic_zoning"
	GeoRiskSIS             GeoRiskSource = "sis"
	GeoRiskICPE            GeoRiskSource = "icpe"
	GeoRiskNuclearSites    GeoRiskSource = "nuclear_sites"
	GeoRiskRadon           GeoRiskSource = "radon"
)

// GeoRiskSources lists the fixed set of sources in fan-out order.
var GeoRiskSources = []GeoRiskSource{
	GeoRiskRGA,
	GeoRiskCavities,
	GeoRiskCatNat,
	GeoRiskFloodTRI,
	GeoRiskFloodAZI,
	GeoRiskFloodPAPI,
	GeoRiskPPR,
	GeoRiskGroundMovements,
	GeoRiskSeismicZoning,
	GeoRiskSIS,
	GeoRiskICPE,
	GeoRiskNuclearSites,
	GeoRiskRadon,
}

// GeoRiskSourceCount is the denominator of the geo-risk reliability.
const GeoRiskSourceCount = 13

// Payload is a normalized provider answer. Schemas differ per source.
type Payload map[string]any

// GeoRiskResult bundles the raw geo-risk payloads of one parcel.
// Risks is nil when no source was used, which distinguishes "no data" from
// "sources answered with nothing notable".
type GeoRiskResult struct {
	Risks    map[GeoRiskSource]Payload `json:"risks,omitempty"`
	Metadata GeoRiskMetadata           `json:"metadata"`
}

// GeoRiskMetadata carries fan-out provenance.
type GeoRiskMetadata struct {
	SourcesUsed   []GeoRiskSource `json:"sourcesUsed"`
	SourcesFailed []GeoRiskSource `json:"sourcesFailed"`
	Reliability   float64         `json:"reliability"`
}

// GeoRiskReliability returns used/13*10 rounded to one decimal.
func GeoRiskReliability(used int) float64 {
	r, _ := numeric.Ratio(float64(used), GeoRiskSourceCount, 10, 1)
	return r
}
