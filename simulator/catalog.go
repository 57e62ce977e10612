package simulator

import "github.com/kilianp07/autosampler/core/model"

const (
	allSituations = model.SrfLanded | model.SrfSplashed | model.FlyingLow |
		model.FlyingHigh | model.InSpaceLow | model.InSpaceHigh
	surface = model.SrfLanded | model.SrfSplashed
)

// DefaultDefinitions returns the stock experiment roles.
func DefaultDefinitions() []model.Definition {
	return []model.Definition{
		{ID: "crewReport", Title: "Crew Report", SituationMask: allSituations, BiomeMask: surface | model.FlyingLow, BaseValue: 5, DataScale: 1, ScienceCap: 5},
		{ID: "evaReport", Title: "EVA Report", SituationMask: allSituations, BiomeMask: surface, BaseValue: 8, DataScale: 1, ScienceCap: 8},
		{ID: "surfaceSample", Title: "Surface Sample", SituationMask: surface, BiomeMask: surface, BaseValue: 30, DataScale: 1, ScienceCap: 40, RequiredTech: "scienceTech"},
		{ID: "mysteryGoo", Title: "Mystery Goo Observation", SituationMask: allSituations, BiomeMask: surface, BaseValue: 10, DataScale: 1, ScienceCap: 13},
		{ID: "temperatureScan", Title: "Temperature Scan", SituationMask: surface | model.FlyingLow | model.FlyingHigh, BiomeMask: surface, BaseValue: 8, DataScale: 1, ScienceCap: 8},
		{ID: "barometerScan", Title: "Atmospheric Pressure Scan", SituationMask: model.SrfLanded | model.FlyingLow | model.FlyingHigh, BiomeMask: model.SrfLanded | model.FlyingLow, BaseValue: 12, DataScale: 1, ScienceCap: 12},
		{ID: "seismicScan", Title: "Seismic Scan", SituationMask: model.SrfLanded, BiomeMask: model.SrfLanded, BaseValue: 20, DataScale: 2.5, ScienceCap: 22, RequiredTech: "electronics"},
		{ID: "gravityScan", Title: "Gravity Scan", SituationMask: model.SrfLanded | model.SrfSplashed | model.InSpaceLow | model.InSpaceHigh, BiomeMask: surface | model.InSpaceLow | model.InSpaceHigh, BaseValue: 20, DataScale: 3, ScienceCap: 22, RequiredTech: "electronics"},
	}
}

// FindDefinition returns a copy of the definition with id.
func FindDefinition(defs []model.Definition, id string) (*model.Definition, bool) {
	for i := range defs {
		if defs[i].ID == id {
			d := defs[i]
			return &d, true
		}
	}
	return nil, false
}
