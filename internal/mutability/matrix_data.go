package mutability

import (
	"math"

	"mutafriches/internal/parcel"
)

// sc builds Scores in usage order: residential, public facilities, offices,
// culture/tourism, industry, solar farm, renaturation.
func sc(r, e, b, c, i, p, n float64) Scores {
	return Scores{r, e, b, c, i, p, n}
}

func boolRule(yes, no Scores) EnumRule {
	return NewEnumRule(map[string]Scores{"true": yes, "false": no})
}

var inf = math.Inf(1)

// DefaultMatrix returns the built-in scoring matrix covering all criteria.
func DefaultMatrix() *Matrix {
	m, err := NewMatrix(defaultEntries())
	if err != nil {
		panic("mutability: invalid default matrix: " + err.Error())
	}
	return m
}

func defaultEntries() map[parcel.Criterion]Entry {
	return map[parcel.Criterion]Entry{
		parcel.CriterionSiteArea: {Weight: 2, Rule: NewBucketRule(
			Bucket{Below: 2000, Label: "< 2,000 m²", Scores: sc(2, 1, 1, 1, -1, -2, -1)},
			Bucket{Below: 10000, Label: "2,000 - 10,000 m²", Scores: sc(1, 1, 1, 1, 0.5, -1, 0)},
			Bucket{Below: 50000, Label: "1 - 5 ha", Scores: sc(0.5, 0.5, 0.5, 0.5, 1, 1, 1)},
			Bucket{Below: inf, Label: "> 5 ha", Scores: sc(-1, -0.5, -0.5, 0, 2, 2, 2)},
		)},
		parcel.CriterionBuiltArea: {Weight: 1, Rule: NewBucketRule(
			Bucket{Below: 100, Label: "< 100 m²", Scores: sc(-0.5, -0.5, -0.5, -0.5, -0.5, 1, 1)},
			Bucket{Below: 1000, Label: "100 - 1,000 m²", Scores: sc(1, 1, 1, 1, 0, 0, 0)},
			Bucket{Below: 5000, Label: "1,000 - 5,000 m²", Scores: sc(1, 1, 1, 1, 1, -1, -1)},
			Bucket{Below: inf, Label: "> 5,000 m²", Scores: sc(0.5, 1, 1, 1, 2, -2, -2)},
		)},
		parcel.CriterionTownCenter: {Weight: 1.5, Rule: boolRule(
			sc(2, 2, 2, 2, -1, -2, 0),
			sc(-1, -1, -1, -0.5, 1, 1, 0.5),
		)},
		parcel.CriterionDistanceToRoad: {Weight: 1, Rule: NewBucketRule(
			Bucket{Below: 100, Label: "< 100 m", Scores: sc(1, 1, 1, 1, 2, 0, 0)},
			Bucket{Below: 500, Label: "100 - 500 m", Scores: sc(0.5, 0.5, 0.5, 0.5, 1, 0.5, 0.5)},
			Bucket{Below: inf, Label: "> 500 m", Scores: sc(-1, -1, -1, -0.5, -2, 0, 1)},
		)},
		parcel.CriterionDistanceToTransit: {Weight: 1, Rule: NewBucketRule(
			Bucket{Below: 500, Label: "< 500 m", Scores: sc(2, 2, 2, 1, 0, 0, 0)},
			Bucket{Below: 2000, Label: "500 m - 2 km", Scores: sc(0.5, 0.5, 0.5, 0.5, 0.5, 0, 0)},
			Bucket{Below: inf, Label: "> 2 km", Scores: sc(-1, -1, -1, -0.5, 0, 0.5, 0.5)},
		)},
		parcel.CriterionAmenitiesNearby: {Weight: 1, Rule: boolRule(
			sc(2, 1, 1, 1, 0, -1, 0),
			sc(-1, 0, -0.5, 0, 0.5, 1, 0.5),
		)},
		parcel.CriterionDistanceToGrid: {Weight: 1, Rule: NewBucketRule(
			Bucket{Below: 1000, Label: "< 1 km", Scores: sc(0, 0, 0, 0, 1, 2, 0)},
			Bucket{Below: inf, Label: "> 1 km", Scores: sc(0, 0, 0, 0, -0.5, -2, 0)},
		)},
		parcel.CriterionVacancyRate: {Weight: 1, Rule: NewBucketRule(
			Bucket{Below: 5, Label: "< 5 %", Scores: sc(2, 1, 1, 0.5, 0, 0, -0.5)},
			Bucket{Below: 10, Label: "5 - 10 %", Scores: sc(0.5, 0.5, 0.5, 0.5, 0, 0, 0)},
			Bucket{Below: inf, Label: "> 10 %", Scores: sc(-2, -0.5, -1, 0, 0, 0.5, 1)},
		)},
		parcel.CriterionTechnologicalRisk: {Weight: 1.5, Rule: boolRule(
			sc(-2, -2, -1, -1, 1, 1, -0.5),
			sc(1, 1, 0.5, 0.5, 0, 0, 0.5),
		)},
		parcel.CriterionNaturalRisk: {Weight: 1.5, Rule: NewEnumRule(map[string]Scores{
			string(parcel.NaturalRiskNone):   sc(1, 1, 1, 1, 1, 1, 0),
			string(parcel.NaturalRiskLow):    sc(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0),
			string(parcel.NaturalRiskMedium): sc(-1, -1, -0.5, -0.5, -0.5, 0, 1),
			string(parcel.NaturalRiskHigh):   sc(-2, -2, -2, -1, -1, -0.5, 2),
		})},
		parcel.CriterionEnvironmentalZoning: {Weight: 1, Rule: NewEnumRule(map[string]Scores{
			string(parcel.EnvZoningNone):              sc(0.5, 0.5, 0.5, 0.5, 1, 1, -0.5),
			string(parcel.EnvZoningNatura2000):        sc(-1, -1, -1, 0, -2, -2, 2),
			string(parcel.EnvZoningZnieff):            sc(-1, -0.5, -1, 0.5, -2, -1, 2),
			string(parcel.EnvZoningRegionalPark):      sc(-0.5, 0, -0.5, 1, -1, -1, 1),
			string(parcel.EnvZoningNationalPark):      sc(-2, -1, -2, 0.5, -2, -2, 2),
			string(parcel.EnvZoningNatureReserve):     sc(-2, -2, -2, 0, -2, -2, 2),
			string(parcel.EnvZoningNearProtectedArea): sc(0, 0, 0, 0.5, -0.5, -0.5, 1),
		})},
		parcel.CriterionHeritageZoning: {Weight: 1, Rule: NewEnumRule(map[string]Scores{
			string(parcel.HeritageZoningNone):              sc(0, 0, 0, 0, 0.5, 0.5, 0),
			string(parcel.HeritageZoningMonumentPerimeter): sc(-0.5, 0, -0.5, 1, -1, -2, 0),
			string(parcel.HeritageZoningRemarkableSite):    sc(-0.5, 0.5, -0.5, 2, -2, -2, 0),
			string(parcel.HeritageZoningListedSite):        sc(-1, 0, -1, 1, -2, -2, 0.5),
		})},
		parcel.CriterionRegulatoryZoning: {Weight: 2, Rule: NewEnumRule(map[string]Scores{
			string(parcel.RegZoningUrban):        sc(2, 2, 2, 1, 0, -1, -1),
			string(parcel.RegZoningToUrbanize):   sc(1, 1, 1, 0.5, 0.5, -0.5, -1),
			string(parcel.RegZoningActivity):     sc(-1, 0, 1, 0, 2, 1, -1),
			string(parcel.RegZoningNatural):      sc(-2, -1, -2, 0.5, -2, 0.5, 2),
			string(parcel.RegZoningAgricultural): sc(-2, -2, -2, -1, -1, 0.5, 1),
			string(parcel.RegZoningProtected):    sc(-1, 0, -1, 1, -2, -2, 1),
		})},
		parcel.CriterionGreenBlueCorridor: {Weight: 1, Rule: NewEnumRule(map[string]Scores{
			string(parcel.CorridorNone):                  sc(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, -0.5),
			string(parcel.CorridorEcological):            sc(-1, -0.5, -1, 0, -1, -1, 2),
			string(parcel.CorridorBiodiversityReservoir): sc(-2, -1, -2, 0, -2, -2, 2),
		})},

		parcel.CriterionOwnership: {Weight: 1, Rule: NewEnumRule(map[string]Scores{
			string(parcel.OwnershipPublic):   sc(1, 2, 1, 2, 1, 1, 2),
			string(parcel.OwnershipPrivate):  sc(1, 0, 1, 0, 1, 1, 0),
			string(parcel.OwnershipMultiple): sc(-1, -1, -1, -1, -1, -1, -0.5),
		})},
		parcel.CriterionWaterConnection: {Weight: 0.5, Rule: boolRule(
			sc(1, 1, 1, 1, 1, 0, 0),
			sc(-1, -1, -1, -1, -1, 0, 0.5),
		)},
		parcel.CriterionBuildingCondition: {Weight: 1, Rule: NewEnumRule(map[string]Scores{
			string(parcel.BuildingsGood):       sc(2, 2, 2, 2, 1, -2, -2),
			string(parcel.BuildingsDegraded):   sc(0.5, 0.5, 0.5, 1, 0.5, -1, -1),
			string(parcel.BuildingsRuined):     sc(-1, -1, -1, -0.5, -1, 0, 0),
			string(parcel.BuildingsDemolished): sc(0.5, 0.5, 0.5, 0, 1, 1, 1),
			string(parcel.BuildingsNone):       sc(1, 1, 1, 0, 1, 2, 2),
		})},
		parcel.CriterionPollution: {Weight: 2, Rule: NewEnumRule(map[string]Scores{
			string(parcel.PollutionNone):       sc(2, 2, 1, 1, 0.5, 0, 2),
			string(parcel.PollutionSuspected):  sc(-1, -1, -0.5, -0.5, 0, 0.5, -1),
			string(parcel.PollutionUntreated):  sc(-2, -2, -1, -1, 0.5, 1, -2),
			string(parcel.PollutionRemediated): sc(0.5, 0.5, 0.5, 0.5, 1, 0.5, 0.5),
		})},
		parcel.CriterionHeritageValue: {Weight: 1, Rule: NewEnumRule(map[string]Scores{
			string(parcel.AppealNone):       sc(0.5, 0, 0.5, -1, 1, 1, 0.5),
			string(parcel.AppealOrdinary):   sc(0.5, 0.5, 0.5, 0.5, 0, 0, 0),
			string(parcel.AppealRemarkable): sc(0, 1, 0.5, 2, -2, -2, -1),
		})},
		parcel.CriterionLandscapeQuality: {Weight: 1, Rule: NewEnumRule(map[string]Scores{
			string(parcel.AppealNone):       sc(-1, -0.5, 0, -1, 1, 1, 0),
			string(parcel.AppealOrdinary):   sc(0, 0, 0, 0, 0, 0, 0.5),
			string(parcel.AppealRemarkable): sc(2, 1, 1, 2, -2, -2, 2),
		})},
		parcel.CriterionAccessRoadQuality: {Weight: 1, Rule: NewEnumRule(map[string]Scores{
			string(parcel.AccessGood):     sc(1, 1, 1, 1, 2, 0.5, 0),
			string(parcel.AccessDegraded): sc(-0.5, -0.5, -0.5, -0.5, -1, 0, 0),
			string(parcel.AccessPoor):     sc(-1, -1, -1, -1, -2, 0, 0.5),
		})},
	}
}
