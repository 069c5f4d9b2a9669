package parcel

// NaturalRiskLevel is the ordinal natural hazard level of a site.
type NaturalRiskLevel string

const (
	NaturalRiskNone   NaturalRiskLevel = "none"
	NaturalRiskLow    NaturalRiskLevel = "low"
	NaturalRiskMedium NaturalRiskLevel = "medium"
	NaturalRiskHigh   NaturalRiskLevel = "high"
)

// Rank orders levels from none (0) to high (3). Unrecognised levels rank -1.
func (l NaturalRiskLevel) Rank() int {
	switch l {
	case NaturalRiskNone:
		return 0
	case NaturalRiskLow:
		return 1
	case NaturalRiskMedium:
		return 2
	case NaturalRiskHigh:
		return 3
	default:
		return -1
	}
}

func (l NaturalRiskLevel) Valid() bool { return l.Rank() >= 0 }

// EnvironmentalZoning is the strongest environmental protection covering the site.
type EnvironmentalZoning string

const (
	EnvZoningNone              EnvironmentalZoning = "none"
	EnvZoningNatura2000        EnvironmentalZoning = "natura_2000"
	EnvZoningZnieff            EnvironmentalZoning = "znieff"
	EnvZoningRegionalPark      EnvironmentalZoning = "regional_natural_park"
	EnvZoningNationalPark      EnvironmentalZoning = "national_park"
	EnvZoningNatureReserve     EnvironmentalZoning = "nature_reserve"
	EnvZoningNearProtectedArea EnvironmentalZoning = "near_protected_area"
)

func (z EnvironmentalZoning) Valid() bool {
	switch z {
	case EnvZoningNone, EnvZoningNatura2000, EnvZoningZnieff, EnvZoningRegionalPark,
		EnvZoningNationalPark, EnvZoningNatureReserve, EnvZoningNearProtectedArea:
		return true
	}
	return false
}

// HeritageZoning reports listed-monument and remarkable-site perimeters.
type HeritageZoning string

const (
	HeritageZoningNone              HeritageZoning = "none"
	HeritageZoningMonumentPerimeter HeritageZoning = "monument_perimeter"
	HeritageZoningRemarkableSite    HeritageZoning = "remarkable_heritage_site"
	HeritageZoningListedSite        HeritageZoning = "listed_site"
)

func (z HeritageZoning) Valid() bool {
	switch z {
	case HeritageZoningNone, HeritageZoningMonumentPerimeter, HeritageZoningRemarkableSite, HeritageZoningListedSite:
		return true
	}
	return false
}

// RegulatoryZoning is the local urban plan zone type.
type RegulatoryZoning string

const (
	RegZoningUrban        RegulatoryZoning = "urban"
	RegZoningToUrbanize   RegulatoryZoning = "to_urbanize"
	RegZoningActivity     RegulatoryZoning = "activity"
	RegZoningNatural      RegulatoryZoning = "natural"
	RegZoningAgricultural RegulatoryZoning = "agricultural"
	RegZoningProtected    RegulatoryZoning = "protected_sector"
)

func (z RegulatoryZoning) Valid() bool {
	switch z {
	case RegZoningUrban, RegZoningToUrbanize, RegZoningActivity, RegZoningNatural,
		RegZoningAgricultural, RegZoningProtected:
		return true
	}
	return false
}

// GreenBlueCorridor is the ecological continuity status of the site.
type GreenBlueCorridor string

const (
	CorridorNone                  GreenBlueCorridor = "none"
	CorridorEcological            GreenBlueCorridor = "ecological_corridor"
	CorridorBiodiversityReservoir GreenBlueCorridor = "biodiversity_reservoir"
)

func (c GreenBlueCorridor) Valid() bool {
	switch c {
	case CorridorNone, CorridorEcological, CorridorBiodiversityReservoir:
		return true
	}
	return false
}

// Ownership is the owner structure declared by the user.
type Ownership string

const (
	OwnershipPublic   Ownership = "public"
	OwnershipPrivate  Ownership = "private"
	OwnershipMultiple Ownership = "multiple_owners"
)

func (o Ownership) Valid() bool {
	switch o {
	case OwnershipPublic, OwnershipPrivate, OwnershipMultiple:
		return true
	}
	return false
}

// BuildingCondition is the state of the buildings on site.
type BuildingCondition string

const (
	BuildingsGood       BuildingCondition = "good"
	BuildingsDegraded   BuildingCondition = "degraded"
	BuildingsRuined     BuildingCondition = "ruined"
	BuildingsDemolished BuildingCondition = "demolished"
	BuildingsNone       BuildingCondition = "no_buildings"
)

func (b BuildingCondition) Valid() bool {
	switch b {
	case BuildingsGood, BuildingsDegraded, BuildingsRuined, BuildingsDemolished, BuildingsNone:
		return true
	}
	return false
}

// PollutionStatus is the declared soil pollution status.
type PollutionStatus string

const (
	PollutionNone       PollutionStatus = "none"
	PollutionSuspected  PollutionStatus = "suspected"
	PollutionUntreated  PollutionStatus = "proven_untreated"
	PollutionRemediated PollutionStatus = "remediated"
)

func (p PollutionStatus) Valid() bool {
	switch p {
	case PollutionNone, PollutionSuspected, PollutionUntreated, PollutionRemediated:
		return true
	}
	return false
}

// Appeal grades architectural heritage value and landscape quality.
type Appeal string

const (
	AppealNone       Appeal = "none"
	AppealOrdinary   Appeal = "ordinary"
	AppealRemarkable Appeal = "remarkable"
)

func (a Appeal) Valid() bool {
	switch a {
	case AppealNone, AppealOrdinary, AppealRemarkable:
		return true
	}
	return false
}

// AccessRoadQuality describes how well the site is served by roads.
type AccessRoadQuality string

const (
	AccessGood     AccessRoadQuality = "accessible"
	AccessDegraded AccessRoadQuality = "degraded"
	AccessPoor     AccessRoadQuality = "poorly_accessible"
)

func (a AccessRoadQuality) Valid() bool {
	switch a {
	case AccessGood, AccessDegraded, AccessPoor:
		return true
	}
	return false
}
