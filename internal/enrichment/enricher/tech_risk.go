package enricher

import (
	"context"

	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// InstallationRiskDistance is the distance to a classified installation at or
// under which a site carries technological risk.
const InstallationRiskDistance = 500.0

// installationSearchRadius bounds the ICPE query; nothing further matters.
const installationSearchRadius = 2000.0

// PollutedSiteClient reports whether a point lies in a regulated polluted-soil site (SIS).
type PollutedSiteClient interface {
	InPollutedSite(ctx context.Context, p geo.Point) (bool, error)
}

// InstallationClient lists classified industrial installations (ICPE) around a point.
type InstallationClient interface {
	InstallationsAround(ctx context.Context, p geo.Point, radius float64) ([]geo.Point, error)
}

// ComputeTechnologicalRisk is true when the site is in a regulated polluted
// site or the nearest classified installation is within 500 m inclusive. A nil
// argument means that signal is unavailable.
func ComputeTechnologicalRisk(inPollutedSite *bool, installationDistance *float64) bool {
	if inPollutedSite != nil && *inPollutedSite {
		return true
	}
	return installationDistance != nil && *installationDistance <= InstallationRiskDistance
}

// TechnologicalRisk queries SIS and ICPE concurrently. Either answer suffices.
type TechnologicalRisk struct {
	sites         PollutedSiteClient
	installations InstallationClient
	config
}

func NewTechnologicalRisk(sites PollutedSiteClient, installations InstallationClient, opts ...Option) *TechnologicalRisk {
	return &TechnologicalRisk{sites: sites, installations: installations, config: newConfig(opts)}
}

func (e *TechnologicalRisk) Name() string { return "technological_risk" }

func (e *TechnologicalRisk) Enrich(ctx context.Context, p *parcel.Parcel) models.Outcome {
	riskField := field(parcel.CriterionTechnologicalRisk)
	if p.Coordinates == nil {
		return models.Skipped(riskField)
	}
	origin := *p.Coordinates

	var (
		inSite        bool
		installations []geo.Point
	)
	errs := gather(ctx,
		func(ctx context.Context) (err error) {
			inSite, err = e.sites.InPollutedSite(ctx, origin)
			return err
		},
		func(ctx context.Context) (err error) {
			installations, err = e.installations.InstallationsAround(ctx, origin, installationSearchRadius)
			return err
		},
	)

	var (
		b        models.OutcomeBuilder
		sis      *bool
		distance *float64
	)
	if errs[0] != nil {
		e.softFailure(ctx, e.Name(), SourcePollutedSite, errs[0])
		b.Failed(SourcePollutedSite)
	} else {
		b.Used(SourcePollutedSite)
		sis = &inSite
	}
	if errs[1] != nil {
		e.softFailure(ctx, e.Name(), SourceInstallation, errs[1])
		b.Failed(SourceInstallation)
	} else {
		b.Used(SourceInstallation)
		if d, ok := nearest(origin, installations); ok {
			d = roundMetres(d)
			distance = &d
		}
	}

	if errs[0] != nil && errs[1] != nil {
		b.Missing(riskField)
		return b.Build()
	}
	p.TechnologicalRisk = parcel.Known(ComputeTechnologicalRisk(sis, distance))
	return b.Build()
}
