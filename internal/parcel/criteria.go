package parcel

import "strconv"

// Criterion names one scorable characteristic of a parcel.
type Criterion string

const (
	CriterionSiteArea            Criterion = "siteArea"
	CriterionBuiltArea           Criterion = "builtArea"
	CriterionTownCenter          Criterion = "townCenter"
	CriterionDistanceToRoad      Criterion = "distanceToRoad"
	CriterionDistanceToTransit   Criterion = "distanceToTransit"
	CriterionAmenitiesNearby     Criterion = "amenitiesNearby"
	CriterionDistanceToGrid      Criterion = "distanceToGrid"
	CriterionVacancyRate         Criterion = "vacancyRate"
	CriterionTechnologicalRisk   Criterion = "technologicalRisk"
	CriterionNaturalRisk         Criterion = "naturalRisk"
	CriterionEnvironmentalZoning Criterion = "environmentalZoning"
	CriterionHeritageZoning      Criterion = "heritageZoning"
	CriterionRegulatoryZoning    Criterion = "regulatoryZoning"
	CriterionGreenBlueCorridor   Criterion = "greenBlueCorridor"

	CriterionOwnership         Criterion = "ownership"
	CriterionWaterConnection   Criterion = "waterConnection"
	CriterionBuildingCondition Criterion = "buildingCondition"
	CriterionPollution         Criterion = "pollution"
	CriterionHeritageValue     Criterion = "heritageValue"
	CriterionLandscapeQuality  Criterion = "landscapeQuality"
	CriterionAccessRoadQuality Criterion = "accessRoadQuality"
)

// CriteriaTotal is the number of criteria counted by the reliability estimate.
const CriteriaTotal = 21

// Value is one criterion read off a parcel. Key holds the canonical enum key
// (booleans as "true"/"false"); Number holds measurable values.
type Value struct {
	Criterion Criterion
	State     State
	Key       string
	Number    float64
	Numeric   bool
}

// Known reports whether the criterion carries usable data.
func (v Value) Known() bool { return v.State == StateKnown }

// Criteria lists every scorable criterion, enriched first then user answers,
// in a fixed order.
func (p Parcel) Criteria() []Value {
	a := p.Answers
	return []Value{
		number(CriterionSiteArea, p.SiteArea),
		number(CriterionBuiltArea, p.BuiltArea),
		boolean(CriterionTownCenter, p.TownCenter),
		number(CriterionDistanceToRoad, p.DistanceToRoad),
		number(CriterionDistanceToTransit, p.DistanceToTransit),
		boolean(CriterionAmenitiesNearby, p.AmenitiesNearby),
		number(CriterionDistanceToGrid, p.DistanceToGrid),
		number(CriterionVacancyRate, p.VacancyRate),
		boolean(CriterionTechnologicalRisk, p.TechnologicalRisk),
		key(CriterionNaturalRisk, p.NaturalRisk),
		key(CriterionEnvironmentalZoning, p.EnvironmentalZoning),
		key(CriterionHeritageZoning, p.HeritageZoning),
		key(CriterionRegulatoryZoning, p.RegulatoryZoning),
		key(CriterionGreenBlueCorridor, p.GreenBlueCorridor),

		key(CriterionOwnership, a.Ownership),
		boolean(CriterionWaterConnection, a.WaterConnection),
		key(CriterionBuildingCondition, a.BuildingCondition),
		key(CriterionPollution, a.Pollution),
		key(CriterionHeritageValue, a.HeritageValue),
		key(CriterionLandscapeQuality, a.LandscapeQuality),
		key(CriterionAccessRoadQuality, a.AccessRoadQuality),
	}
}

func number(c Criterion, f Field[float64]) Value {
	v, _ := f.Get()
	return Value{Criterion: c, State: f.State(), Number: v, Numeric: true}
}

func boolean(c Criterion, f Field[bool]) Value {
	out := Value{Criterion: c, State: f.State()}
	if v, ok := f.Get(); ok {
		out.Key = strconv.FormatBool(v)
	}
	return out
}

func key[T ~string](c Criterion, f Field[T]) Value {
	v, _ := f.Get()
	return Value{Criterion: c, State: f.State(), Key: string(v)}
}
