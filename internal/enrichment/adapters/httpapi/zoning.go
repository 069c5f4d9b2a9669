package httpapi

import (
	"context"
	"net/url"
	"strings"

	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

// Environment reads protected natural areas and ecological corridors.
type Environment struct{ c JSONGetter }

func NewEnvironment(c JSONGetter) *Environment { return &Environment{c: c} }

func (a *Environment) EnvironmentalZoning(ctx context.Context, poly geo.Polygon) (parcel.EnvironmentalZoning, parcel.GreenBlueCorridor, error) {
	var resp struct {
		Zoning   string `json:"zoning"`
		Corridor string `json:"corridor"`
	}
	if err := a.c.GetJSON(ctx, "/zones", url.Values{"geom": {geometry(poly)}}, &resp); err != nil {
		return "", "", err
	}
	if resp.Zoning == "" {
		return "", "", badData(a.c, "missing zoning")
	}
	corridor := parcel.GreenBlueCorridor(resp.Corridor)
	if corridor == "" {
		corridor = parcel.CorridorNone
	}
	return parcel.EnvironmentalZoning(resp.Zoning), corridor, nil
}

// Heritage reads heritage protections.
type Heritage struct{ c JSONGetter }

func NewHeritage(c JSONGetter) *Heritage { return &Heritage{c: c} }

func (a *Heritage) HeritageZoning(ctx context.Context, poly geo.Polygon) (parcel.HeritageZoning, error) {
	var resp struct {
		Zoning string `json:"zoning"`
	}
	if err := a.c.GetJSON(ctx, "/servitudes", url.Values{"geom": {geometry(poly)}}, &resp); err != nil {
		return "", err
	}
	if resp.Zoning == "" {
		return "", badData(a.c, "missing zoning")
	}
	return parcel.HeritageZoning(resp.Zoning), nil
}

// UrbanPlan reads the local urban plan zone.
type UrbanPlan struct{ c JSONGetter }

func NewUrbanPlan(c JSONGetter) *UrbanPlan { return &UrbanPlan{c: c} }

func (a *UrbanPlan) ZoneType(ctx context.Context, inseeCode string, poly geo.Polygon) (parcel.RegulatoryZoning, error) {
	var resp struct {
		ZoneType string `json:"typezone"`
		Label    string `json:"libelle"`
	}
	q := url.Values{"code_insee": {inseeCode}, "geom": {geometry(poly)}}
	if err := a.c.GetJSON(ctx, "/zone-urba", q, &resp); err != nil {
		return "", err
	}
	if resp.ZoneType == "" {
		return "", badData(a.c, "missing typezone")
	}
	return RegulatoryZone(resp.ZoneType, resp.Label), nil
}

// RegulatoryZone maps an urban plan zone type and label to a zoning value.
// Unrecognised types are returned verbatim and rejected downstream.
func RegulatoryZone(zoneType, label string) parcel.RegulatoryZoning {
	label = strings.ToUpper(strings.TrimSpace(label))
	switch t := strings.ToUpper(strings.TrimSpace(zoneType)); {
	case t == "U" && (strings.HasPrefix(label, "UX") || strings.HasPrefix(label, "UE") || strings.HasPrefix(label, "UI")):
		return parcel.RegZoningActivity
	case t == "U":
		return parcel.RegZoningUrban
	case strings.HasPrefix(t, "AU"):
		return parcel.RegZoningToUrbanize
	case t == "A":
		return parcel.RegZoningAgricultural
	case t == "N" && strings.HasPrefix(label, "NP"):
		return parcel.RegZoningProtected
	case t == "N":
		return parcel.RegZoningNatural
	default:
		return parcel.RegulatoryZoning(zoneType)
	}
}
