package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML strings such as "15s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Provider configures one external data provider.
type Provider struct {
	BaseURL       string   `yaml:"base_url"`
	Timeout       Duration `yaml:"timeout"`
	RatePerSecond float64  `yaml:"rate_per_second"`
	Burst         int      `yaml:"burst"`
}

// Providers maps a provider name to its settings.
type Providers map[string]Provider

// Provider names known to the adapters.
const (
	ProviderCadastre     = "cadastre"
	ProviderBuildings    = "bdnb"
	ProviderGrid         = "enedis"
	ProviderTransit      = "transport_stops"
	ProviderTownHalls    = "town_halls"
	ProviderRoads        = "ign_roads"
	ProviderHousing      = "lovac"
	ProviderAmenities    = "bpe"
	ProviderClay         = "rga"
	ProviderCavities     = "cavities"
	ProviderPollutedSite = "sis"
	ProviderInstallation = "icpe"
	ProviderGeoRisks     = "georisques"
	ProviderEnvironment  = "nature_zones"
	ProviderHeritage     = "heritage"
	ProviderUrbanPlan    = "gpu"
)

const (
	apiCarto    = "https://apicarto.ign.fr/api"
	georisques  = "https://georisques.gouv.fr/api/v1"
	geoPlatform = "https://data.geopf.fr"
)

// DefaultProviders are used for any provider the file does not mention.
func DefaultProviders() Providers {
	d := func(s int) Duration { return Duration(time.Duration(s) * time.Second) }
	return Providers{
		ProviderCadastre:     {BaseURL: apiCarto + "/cadastre", Timeout: d(10), RatePerSecond: 10, Burst: 5},
		ProviderBuildings:    {BaseURL: "https://api.bdnb.io/v1/bdnb", Timeout: d(10), RatePerSecond: 5, Burst: 5},
		ProviderGrid:         {BaseURL: "https://data.enedis.fr/api/explore/v2.1", Timeout: d(10), RatePerSecond: 5, Burst: 5},
		ProviderTransit:      {BaseURL: "https://transport.data.gouv.fr/api", Timeout: d(10), RatePerSecond: 5, Burst: 5},
		ProviderTownHalls:    {BaseURL: "https://api-lannuaire.service-public.fr/api", Timeout: d(10), RatePerSecond: 5, Burst: 5},
		ProviderRoads:        {BaseURL: geoPlatform + "/wfs", Timeout: d(15), RatePerSecond: 5, Burst: 5},
		ProviderHousing:      {BaseURL: "https://api.lovac.beta.gouv.fr", Timeout: d(10), RatePerSecond: 5, Burst: 5},
		ProviderAmenities:    {BaseURL: "https://api.insee.fr/bpe", Timeout: d(10), RatePerSecond: 5, Burst: 5},
		ProviderClay:         {BaseURL: georisques, Timeout: d(10), RatePerSecond: 10, Burst: 10},
		ProviderCavities:     {BaseURL: georisques, Timeout: d(15), RatePerSecond: 10, Burst: 10},
		ProviderPollutedSite: {BaseURL: georisques, Timeout: d(15), RatePerSecond: 10, Burst: 10},
		ProviderInstallation: {BaseURL: georisques, Timeout: d(30), RatePerSecond: 10, Burst: 10},
		ProviderGeoRisks:     {BaseURL: georisques, Timeout: d(15), RatePerSecond: 20, Burst: 13},
		ProviderEnvironment:  {BaseURL: apiCarto + "/nature", Timeout: d(15), RatePerSecond: 5, Burst: 5},
		ProviderHeritage:     {BaseURL: apiCarto + "/gpu", Timeout: d(15), RatePerSecond: 5, Burst: 5},
		ProviderUrbanPlan:    {BaseURL: apiCarto + "/gpu", Timeout: d(15), RatePerSecond: 5, Burst: 5},
	}
}

// LoadProviders reads path over DefaultProviders. An empty path or a missing
// file yields the defaults. Fields left empty in the file keep their default.
func LoadProviders(path string) (Providers, error) {
	out := DefaultProviders()
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	var file struct {
		Providers Providers `yaml:"providers"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse providers file: %w", err)
	}
	for name, p := range file.Providers {
		out[name] = merge(out[name], p)
	}
	return out, nil
}

func merge(base, override Provider) Provider {
	if override.BaseURL != "" {
		base.BaseURL = override.BaseURL
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	if override.RatePerSecond > 0 {
		base.RatePerSecond = override.RatePerSecond
	}
	if override.Burst > 0 {
		base.Burst = override.Burst
	}
	return base
}
