package model

import "math"

// CategoryRef is one node of a record's category path. Level grows with
// depth: the deepest category carries the highest level.
type CategoryRef struct {
	Name  string `json:"name"`
	Level int    `json:"level,omitempty"`
}

// SpecPair is a single title/body specification entry.
type SpecPair struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Specifications struct {
	KeySpecs     []SpecPair `json:"key_specs,omitempty"`
	GeneralSpecs []SpecPair `json:"general_specs,omitempty"`
}

// Record is one externally sourced product record. A record without a
// title or without a categories key is invalid and skipped before matching.
type Record struct {
	Title          string          `json:"title"`
	Categories     []CategoryRef   `json:"categories"`
	Brand          string          `json:"brand,omitempty"`
	Specifications *Specifications `json:"specifications,omitempty"`
}

func (r Record) Valid() bool {
	return r.Title != "" && r.Categories != nil
}

// Options control one reconciliation run.
type Options struct {
	UserID int64 `json:"user_id"`

	// Fuzzy thresholds for entity resolution, compared with a strict >.
	CategoryThreshold float64 `json:"category_threshold"`
	BrandThreshold    float64 `json:"brand_threshold"`

	// Product fuzzy matching: a title needs at least MinFuzzyWords
	// meaningful words to be eligible, a candidate needs at least
	// CandidateFloor shared words to be considered and the best candidate
	// is accepted only at AcceptScore or above.
	MinFuzzyWords  int `json:"min_fuzzy_words"`
	CandidateFloor int `json:"candidate_floor"`
	AcceptScore    int `json:"accept_score"`

	// DryRun skips every store write; would-be creates and links are
	// still counted.
	DryRun bool `json:"dry_run"`
}

func DefaultOptions(userID int64) Options {
	return Options{
		UserID:            userID,
		CategoryThreshold: 85,
		BrandThreshold:    85,
		MinFuzzyWords:     3,
		CandidateFloor:    2,
		AcceptScore:       3,
	}
}

// WithDefaults fills zero-valued knobs with the defaults above.
func (o Options) WithDefaults() Options {
	def := DefaultOptions(o.UserID)
	if o.CategoryThreshold == 0 {
		o.CategoryThreshold = def.CategoryThreshold
	}
	if o.BrandThreshold == 0 {
		o.BrandThreshold = def.BrandThreshold
	}
	if o.MinFuzzyWords == 0 {
		o.MinFuzzyWords = def.MinFuzzyWords
	}
	if o.CandidateFloor == 0 {
		o.CandidateFloor = def.CandidateFloor
	}
	if o.AcceptScore == 0 {
		o.AcceptScore = def.AcceptScore
	}
	return o
}

// Stats accumulates counters over one run.
type Stats struct {
	Processed         int     `json:"processed"`
	Matched           int     `json:"matched"`
	NotFound          int     `json:"not_found"`
	Invalid           int     `json:"invalid"`
	CategoriesCreated int     `json:"categories_created"`
	BrandsCreated     int     `json:"brands_created"`
	BrandsAssigned    int     `json:"brands_assigned"`
	SuccessRate       float64 `json:"success_rate"`
	ProcessedTitles   int     `json:"processed_titles"`
}

// Finalize computes the derived fields at run end. processedTitles is the
// size of the run's claim set.
func (s *Stats) Finalize(processedTitles int) {
	s.ProcessedTitles = processedTitles
	if s.Processed > 0 {
		s.SuccessRate = math.Round(float64(s.Matched)/float64(s.Processed)*100*100) / 100
	} else {
		s.SuccessRate = 0
	}
}
