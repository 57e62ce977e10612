package simulator

import (
	"math"

	"github.com/kilianp07/autosampler/core/model"
)

// BiomeBand maps a latitude range to a biome name.
type BiomeBand struct {
	Name   string  `yaml:"name"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
}

// Body is a celestial body the vessels can be around.
type Body struct {
	Name            string  `yaml:"name"`
	AtmosphereDepth float64 `yaml:"atmosphere_depth"`
	FlyingHighAlt   float64 `yaml:"flying_high_alt"`
	SpaceHighAlt    float64 `yaml:"space_high_alt"`
	// Multipliers scale experiment values per situation name.
	Multipliers map[string]float64 `yaml:"multipliers"`
	Biomes      []BiomeBand        `yaml:"biomes"`
}

// Situation classifies a vessel that is neither landed nor splashed.
func (b Body) Situation(altitude float64) model.Situation {
	if altitude < b.AtmosphereDepth {
		if altitude < b.FlyingHighAlt {
			return model.FlyingLow
		}
		return model.FlyingHigh
	}
	if altitude < b.SpaceHighAlt {
		return model.InSpaceLow
	}
	return model.InSpaceHigh
}

// Multiplier returns the value multiplier for sit, 1 when unset.
func (b Body) Multiplier(sit model.Situation) float64 {
	if m, ok := b.Multipliers[sit.String()]; ok {
		return m
	}
	return 1
}

// Biome returns the band containing lat, or "" if none does.
func (b Body) Biome(lat float64) string {
	lat = math.Max(-90, math.Min(90, lat))
	for _, band := range b.Biomes {
		if lat >= band.MinLat && lat <= band.MaxLat {
			return band.Name
		}
	}
	return ""
}

// DefaultBodies returns a small home system.
func DefaultBodies() []Body {
	return []Body{
		{
			Name:            "Kerbin",
			AtmosphereDepth: 70000,
			FlyingHighAlt:   18000,
			SpaceHighAlt:    250000,
			Multipliers: map[string]float64{
				"SrfLanded": 0.3, "SrfSplashed": 0.4, "FlyingLow": 0.7,
				"FlyingHigh": 0.9, "InSpaceLow": 1, "InSpaceHigh": 1.5,
			},
			Biomes: []BiomeBand{
				{Name: "NorthernIceShelf", MinLat: 70, MaxLat: 90},
				{Name: "Tundra", MinLat: 50, MaxLat: 70},
				{Name: "Grasslands", MinLat: -50, MaxLat: 50},
				{Name: "SouthernIceShelf", MinLat: -90, MaxLat: -50},
			},
		},
		{
			Name:         "Mun",
			SpaceHighAlt: 60000,
			Multipliers: map[string]float64{
				"SrfLanded": 4, "InSpaceLow": 4, "InSpaceHigh": 3,
			},
			Biomes: []BiomeBand{
				{Name: "Highlands", MinLat: 20, MaxLat: 90},
				{Name: "Midlands", MinLat: -20, MaxLat: 20},
				{Name: "Lowlands", MinLat: -90, MaxLat: -20},
			},
		},
	}
}
