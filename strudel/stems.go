package strudel

import (
	"context"

	"github.com/acoustlab/strudelize/logging"
)

// StemSignal is one isolated instrument track delivered by the separation
// collaborator
type StemSignal struct {
	Label  string      `json:"label"` // Collaborator-defined, e.g. vocals/drums/bass/other
	Signal AudioSignal `json:"signal"`
}

// SeparationResult is the outcome of stem separation. Unavailability is a
// state of the result, not an error: a failed or absent collaborator sets
// Unavailable with a reason and the pipeline carries on main-mix-only.
type SeparationResult struct {
	Stems       []StemSignal `json:"stems"`
	Unavailable bool         `json:"unavailable"`
	Reason      string       `json:"reason,omitempty"`
}

// SeparationUnavailable builds the degraded result
func SeparationUnavailable(reason string) *SeparationResult {
	return &SeparationResult{Unavailable: true, Reason: reason}
}

// StemSeparator is the source-separation collaborator. Implementations
// fold their own failures into an unavailable SeparationResult rather than
// returning an error.
type StemSeparator interface {
	Separate(ctx context.Context, audioPath string) *SeparationResult
}

// StemFeatureSet is the per-instrument analysis of one separated track
type StemFeatureSet struct {
	Label    string      `json:"label"`
	Features *FeatureSet `json:"features"`
	Notes    []NoteEvent `json:"notes"`
}

// StemAnalyzer reapplies feature extraction and note mapping to each
// separated track. An unavailable separation yields zero stem feature
// sets, and a stem that fails analysis is dropped without affecting its
// siblings.
type StemAnalyzer struct {
	extractor *FeatureExtractor
	notes     *NoteMapper
	logger    logging.Logger
}

// NewStemAnalyzer creates a stem analyzer; a nil logger disables logging
func NewStemAnalyzer(logger logging.Logger) *StemAnalyzer {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &StemAnalyzer{
		extractor: NewFeatureExtractor(),
		notes:     NewNoteMapper(),
		logger:    logger,
	}
}

// Analyze builds one StemFeatureSet per usable stem. Order follows the
// separation result so output is deterministic for identical input.
func (sa *StemAnalyzer) Analyze(sep *SeparationResult) []StemFeatureSet {
	if sep == nil || sep.Unavailable {
		reason := ""
		if sep != nil {
			reason = sep.Reason
		}
		sa.logger.Warn("stem separation unavailable, continuing main-mix-only", logging.Fields{
			"reason": reason,
		})
		return []StemFeatureSet{}
	}

	results := make([]StemFeatureSet, 0, len(sep.Stems))
	for _, stem := range sep.Stems {
		features, err := sa.extractor.Extract(stem.Signal)
		if err != nil {
			sa.logger.Warn("stem analysis failed, dropping stem", logging.Fields{
				"stem":  stem.Label,
				"error": err.Error(),
			})
			continue
		}

		results = append(results, StemFeatureSet{
			Label:    stem.Label,
			Features: features,
			Notes:    sa.notes.Map(features.PitchContour, stem.Signal.SampleRate, features.OnsetTimes),
		})
	}

	return results
}
