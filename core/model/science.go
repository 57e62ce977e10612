package model

// ScienceData is a single stored result.
type ScienceData struct {
	SubjectID string  `json:"subject_id" yaml:"subject_id"`
	Title     string  `json:"title" yaml:"title"`
	Amount    float64 `json:"amount" yaml:"amount"`
	LabValue  float64 `json:"lab_value" yaml:"lab_value"`
}

// Subject identifies what a result is about: the experiment's scientific role
// combined with the situation it was collected in. Duplicate accounting is
// keyed on ID, never on the experiment identity.
type Subject struct {
	ID           string
	Title        string
	ExperimentID string
	Situation    Situation
	Body         string
	Biome        string
}

// Definition is the static description of an experiment role.
type Definition struct {
	ID            string    `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	SituationMask Situation `json:"situation_mask" yaml:"situation_mask"`
	BiomeMask     Situation `json:"biome_mask" yaml:"biome_mask"`
	BaseValue     float64   `json:"base_value" yaml:"base_value"`
	DataScale     float64   `json:"data_scale" yaml:"data_scale"`
	ScienceCap    float64   `json:"science_cap" yaml:"science_cap"`
	RequiredTech  string    `json:"required_tech" yaml:"required_tech"`
}

// ScienceOracle answers situational and value questions on behalf of the host.
// Implementations must be pure for a given vessel snapshot. Diminish must be
// non-increasing in count.
type ScienceOracle interface {
	Situation(v Vessel) Situation
	Available(def *Definition, sit Situation, body string) bool
	BiomeRelevant(def *Definition, sit Situation) bool
	Biome(body string, lat, lon float64) string
	LandedAtBiome(landedAt string) string
	Subject(def *Definition, sit Situation, body, biome string) *Subject
	Unlocked(def *Definition) bool
	BaseValue(def *Definition, subject *Subject) float64
	Diminish(subject *Subject, base float64, count int) float64
}
