// Package parcel holds the cadastral parcel record shared by enrichment and scoring.
package parcel

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"mutafriches/pkg/geo"
)

// IdentifierLength is the length of a national cadastral parcel identifier:
// INSEE code (5), prefix (3), section (2), number (4).
const IdentifierLength = 14

var identifierPattern = regexp.MustCompile(`^(?:\d{5}|2[AB]\d{3})\d{3}[0-9A-Z]{2}\d{4}$`)

// ErrInvalidIdentifier is returned for malformed cadastral identifiers.
var ErrInvalidIdentifier = errors.New("invalid cadastral identifier")

// NormalizeIdentifier trims and upper-cases an identifier, then checks its format.
func NormalizeIdentifier(raw string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(raw))
	if len(id) != IdentifierLength || !identifierPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return id, nil
}

// InseeCode returns the commune code embedded in a valid identifier.
func InseeCode(identifier string) string {
	if len(identifier) < 5 {
		return ""
	}
	return identifier[:5]
}

// Parcel is an enriched cadastral parcel plus the answers supplied by the user.
// Enriched fields are written by the enrichment pipeline only; Answers is set by
// the caller through WithAnswers.
type Parcel struct {
	Identifier  string      `json:"identifier"`
	InseeCode   string      `json:"inseeCode"`
	Commune     string      `json:"commune"`
	Coordinates *geo.Point  `json:"coordinates,omitempty"`
	Polygon     geo.Polygon `json:"polygon,omitempty"`

	SiteArea          Field[float64] `json:"siteArea"`
	BuiltArea         Field[float64] `json:"builtArea"`
	TownCenter        Field[bool]    `json:"townCenter"`
	DistanceToRoad    Field[float64] `json:"distanceToRoad"`
	DistanceToTransit Field[float64] `json:"distanceToTransit"`
	AmenitiesNearby   Field[bool]    `json:"amenitiesNearby"`
	DistanceToGrid    Field[float64] `json:"distanceToGrid"`
	VacancyRate       Field[float64] `json:"vacancyRate"`
	TechnologicalRisk Field[bool]    `json:"technologicalRisk"`

	NaturalRisk         Field[NaturalRiskLevel]    `json:"naturalRisk"`
	EnvironmentalZoning Field[EnvironmentalZoning] `json:"environmentalZoning"`
	HeritageZoning      Field[HeritageZoning]      `json:"heritageZoning"`
	RegulatoryZoning    Field[RegulatoryZoning]    `json:"regulatoryZoning"`
	GreenBlueCorridor   Field[GreenBlueCorridor]   `json:"greenBlueCorridor"`

	Answers  UserAnswers    `json:"answers"`
	GeoRisks *GeoRiskResult `json:"geoRisks,omitempty"`
}

// New returns an empty parcel for a normalized identifier.
func New(identifier string) *Parcel {
	return &Parcel{Identifier: identifier, InseeCode: InseeCode(identifier)}
}

// UserAnswers are the site characteristics only the user can provide.
// Unknown answers are excluded from scoring and bypass the evaluation cache.
type UserAnswers struct {
	Ownership         Field[Ownership]         `json:"ownership"`
	WaterConnection   Field[bool]              `json:"waterConnection"`
	BuildingCondition Field[BuildingCondition] `json:"buildingCondition"`
	Pollution         Field[PollutionStatus]   `json:"pollution"`
	HeritageValue     Field[Appeal]            `json:"heritageValue"`
	LandscapeQuality  Field[Appeal]            `json:"landscapeQuality"`
	AccessRoadQuality Field[AccessRoadQuality] `json:"accessRoadQuality"`
}

// HasUnknown reports whether any answer is explicitly unknown.
func (a UserAnswers) HasUnknown() bool {
	return a.Ownership.IsUnknown() ||
		a.WaterConnection.IsUnknown() ||
		a.BuildingCondition.IsUnknown() ||
		a.Pollution.IsUnknown() ||
		a.HeritageValue.IsUnknown() ||
		a.LandscapeQuality.IsUnknown() ||
		a.AccessRoadQuality.IsUnknown()
}

// Equal compares answers field for field, state included.
func (a UserAnswers) Equal(b UserAnswers) bool {
	return a == b
}

// Validate rejects enum values outside their allowed set.
func (a UserAnswers) Validate() error {
	return errors.Join(
		checkEnum("ownership", a.Ownership),
		checkEnum("buildingCondition", a.BuildingCondition),
		checkEnum("pollution", a.Pollution),
		checkEnum("heritageValue", a.HeritageValue),
		checkEnum("landscapeQuality", a.LandscapeQuality),
		checkEnum("accessRoadQuality", a.AccessRoadQuality),
	)
}

// WithAnswers returns a copy of p carrying the given answers.
func (p Parcel) WithAnswers(a UserAnswers) Parcel {
	out := p.Clone()
	out.Answers = a
	return out
}

// Clone copies the parcel so the result shares no slices or pointers with p.
// Geo-risk payloads are copied shallowly; they are treated as read-only.
func (p Parcel) Clone() Parcel {
	out := p
	if p.Coordinates != nil {
		c := *p.Coordinates
		out.Coordinates = &c
	}
	out.Polygon = slices.Clone(p.Polygon)
	if p.GeoRisks != nil {
		g := *p.GeoRisks
		g.Risks = maps.Clone(p.GeoRisks.Risks)
		g.Metadata.SourcesUsed = slices.Clone(p.GeoRisks.Metadata.SourcesUsed)
		g.Metadata.SourcesFailed = slices.Clone(p.GeoRisks.Metadata.SourcesFailed)
		out.GeoRisks = &g
	}
	return out
}

// Validate checks a caller-supplied parcel before it is scored.
func (p Parcel) Validate() error {
	if _, err := NormalizeIdentifier(p.Identifier); err != nil {
		return err
	}
	if p.Coordinates != nil && !p.Coordinates.Valid() {
		return fmt.Errorf("coordinates out of range: %+v", *p.Coordinates)
	}
	return errors.Join(
		checkEnum("naturalRisk", p.NaturalRisk),
		checkEnum("environmentalZoning", p.EnvironmentalZoning),
		checkEnum("heritageZoning", p.HeritageZoning),
		checkEnum("regulatoryZoning", p.RegulatoryZoning),
		checkEnum("greenBlueCorridor", p.GreenBlueCorridor),
		p.Answers.Validate(),
	)
}

type enum interface {
	comparable
	Valid() bool
}

func checkEnum[T enum](name string, f Field[T]) error {
	if v, ok := f.Get(); ok && !v.Valid() {
		return fmt.Errorf("%s: unsupported value %v", name, v)
	}
	return nil
}
