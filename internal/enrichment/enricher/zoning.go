package enricher

import (
	"context"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// EnvironmentClient returns the environmental protections and ecological
// continuity status intersecting a polygon.
type EnvironmentClient interface {
	EnvironmentalZoning(ctx context.Context, poly geo.Polygon) (parcel.EnvironmentalZoning, parcel.GreenBlueCorridor, error)
}

// HeritageClient returns the heritage protection intersecting a polygon.
type HeritageClient interface {
	HeritageZoning(ctx context.Context, poly geo.Polygon) (parcel.HeritageZoning, error)
}

// UrbanPlanClient returns the urban plan zone type covering a polygon.
type UrbanPlanClient interface {
	ZoneType(ctx context.Context, inseeCode string, poly geo.Polygon) (parcel.RegulatoryZoning, error)
}

// Zoning resolves environmental, heritage and regulatory zoning concurrently.
type Zoning struct {
	environment EnvironmentClient
	heritage    HeritageClient
	urbanPlan   UrbanPlanClient
	config
}

func NewZoning(environment EnvironmentClient, heritage HeritageClient, urbanPlan UrbanPlanClient, opts ...Option) *Zoning {
	return &Zoning{environment: environment, heritage: heritage, urbanPlan: urbanPlan, config: newConfig(opts)}
}

func (e *Zoning) Name() string { return "zoning" }

func (e *Zoning) Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome {
	envFields := []string{
		field(parcel.CriterionEnvironmentalZoning),
		field(parcel.CriterionGreenBlueCorridor),
	}
	heritageField := field(parcel.CriterionHeritageZoning)
	regulatoryField := field(parcel.CriterionRegulatoryZoning)
	if len(p.Polygon) == 0 || p.InseeCode == "" {
		return models.Skipped(append(envFields, heritageField, regulatoryField)...)
	}
	poly := p.Polygon
	insee := p.InseeCode

	var (
		env      parcel.EnvironmentalZoning
		corridor parcel.GreenBlueCorridor
		heritage parcel.HeritageZoning
		zone     parcel.RegulatoryZoning
	)
	errs := gather(ctx,
		func(ctx context.Context) (err error) {
			env, corridor, err = e.environment.EnvironmentalZoning(ctx, poly)
			return err
		},
		func(ctx context.Context) (err error) {
			heritage, err = e.heritage.HeritageZoning(ctx, poly)
			return err
		},
		func(ctx context.Context) (err error) {
			zone, err = e.urbanPlan.ZoneType(ctx, insee, poly)
			return err
		},
	)

	var b models.OutcomeBuilder
	if errs[0] != nil {
		e.softFailure(ctx, e.Name(), SourceEnvironment, errs[0])
		b.Failed(SourceEnvironment, envFields...)
	} else {
		b.Used(SourceEnvironment)
		setEnum(&b, &p.EnvironmentalZoning, env, envFields[0])
		setEnum(&b, &p.GreenBlueCorridor, corridor, envFields[1])
	}
	if errs[1] != nil {
		e.softFailure(ctx, e.Name(), SourceHeritage, errs[1])
		b.Failed(SourceHeritage, heritageField)
	} else {
		b.Used(SourceHeritage)
		setEnum(&b, &p.HeritageZoning, heritage, heritageField)
	}
	if errs[2] != nil {
		e.softFailure(ctx, e.Name(), SourceUrbanPlan, errs[2])
		b.Failed(SourceUrbanPlan, regulatoryField)
	} else {
		b.Used(SourceUrbanPlan)
		setEnum(&b, &p.RegulatoryZoning, zone, regulatoryField)
	}
	return b.Build()
}

// setEnum stores v when the provider returned a recognised value and reports
// the field missing otherwise.
func setEnum[T interface {
	~string
	Valid() bool
}](b *models.OutcomeBuilder, dst *parcel.Field[T], v T, name string) {
	if !v.Valid() {
		b.Missing(name)
		return
	}
	*dst = parcel.Known(v)
}
