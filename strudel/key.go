package strudel

import (
	"github.com/acoustlab/strudelize/algorithms/common"
)

// pitchClassNames are the 12 chroma row labels, C through B
var pitchClassNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// KeyEstimator reduces a chroma energy matrix to one dominant pitch class
type KeyEstimator struct{}

// NewKeyEstimator creates a key estimator
func NewKeyEstimator() *KeyEstimator {
	return &KeyEstimator{}
}

// DominantPitchClass averages each pitch class row across time and returns
// the name of the strongest one. Ties resolve to the lowest class index.
// A chroma matrix with no frames defaults to "C".
func (ke *KeyEstimator) DominantPitchClass(chromagram [][]float64) string {
	if len(chromagram) == 0 {
		return pitchClassNames[0]
	}

	means := make([]float64, 0, len(chromagram))
	hasFrames := false
	for _, row := range chromagram {
		if len(row) > 0 {
			hasFrames = true
		}
		means = append(means, common.Mean(row))
	}
	if !hasFrames {
		return pitchClassNames[0]
	}

	idx := common.ArgMax(means)
	if idx < 0 || idx >= len(pitchClassNames) {
		return pitchClassNames[0]
	}
	return pitchClassNames[idx]
}
