package httpapi

import (
	"context"

	"mutafriches/internal/enrichment/enricher"
	"mutafriches/pkg/geo"
)

// Clay reads the shrink-swell clay exposure at a point.
type Clay struct{ c JSONGetter }

func NewClay(c JSONGetter) *Clay { return &Clay{c: c} }

func (a *Clay) ClayExposure(ctx context.Context, p geo.Point) (enricher.ClayExposure, error) {
	var resp struct {
		Exposure string `json:"exposure"`
	}
	if err := a.c.GetJSON(ctx, "/rga", around(p, 0), &resp); err != nil {
		return "", err
	}
	exposure := enricher.ClayExposure(resp.Exposure)
	if resp.Exposure == "" {
		return "", badData(a.c, "missing exposure")
	}
	if _, ok := enricher.ClayRiskLevel(exposure); !ok {
		return "", badData(a.c, "unrecognized exposure "+resp.Exposure)
	}
	return exposure, nil
}

// Cavities lists underground cavities.
type Cavities struct{ c JSONGetter }

func NewCavities(c JSONGetter) *Cavities { return &Cavities{c: c} }

func (a *Cavities) CavitiesAround(ctx context.Context, p geo.Point, radius float64) ([]geo.Point, error) {
	var resp pointList
	if err := a.c.GetJSON(ctx, "/cavites", around(p, radius), &resp); err != nil {
		return nil, err
	}
	return resp.points(), nil
}

// PollutedSites checks the regulated polluted-soil sectors.
type PollutedSites struct{ c JSONGetter }

func NewPollutedSites(c JSONGetter) *PollutedSites { return &PollutedSites{c: c} }

func (a *PollutedSites) InPollutedSite(ctx context.Context, p geo.Point) (bool, error) {
	var resp struct {
		InSite *bool `json:"in_site"`
	}
	if err := a.c.GetJSON(ctx, "/sis", around(p, 0), &resp); err != nil {
		return false, err
	}
	if resp.InSite == nil {
		return false, badData(a.c, "missing in_site")
	}
	return *resp.InSite, nil
}

// Installations lists classified industrial installations.
type Installations struct{ c JSONGetter }

func NewInstallations(c JSONGetter) *Installations { return &Installations{c: c} }

func (a *Installations) InstallationsAround(ctx context.Context, p geo.Point, radius float64) ([]geo.Point, error) {
	var resp pointList
	if err := a.c.GetJSON(ctx, "/installations_classees", around(p, radius), &resp); err != nil {
		return nil, err
	}
	return resp.points(), nil
}
