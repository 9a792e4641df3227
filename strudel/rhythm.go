package strudel

import (
	"math"
)

// DefaultGridSize is one 4-beat cycle at sixteenth-note resolution
const DefaultGridSize = 16

// StepPattern is a fixed-length cyclic sequence of slots, each either a hit
// (true) or a rest (false). Its length always equals the configured grid
// size, whatever the input looked like.
type StepPattern []bool

// Hits returns the number of hit slots
func (p StepPattern) Hits() int {
	n := 0
	for _, hit := range p {
		if hit {
			n++
		}
	}
	return n
}

// Tokens renders the pattern using the given hit and rest tokens
func (p StepPattern) Tokens(hit, rest string) []string {
	tokens := make([]string, len(p))
	for i, h := range p {
		if h {
			tokens[i] = hit
		} else {
			tokens[i] = rest
		}
	}
	return tokens
}

// RhythmGridMapper quantizes onset times onto a cyclic step grid anchored
// to the tempo
type RhythmGridMapper struct {
	grid int
}

// NewRhythmGridMapper creates a mapper with the given grid size; sizes
// below 1 fall back to the default
func NewRhythmGridMapper(grid int) *RhythmGridMapper {
	if grid < 1 {
		grid = DefaultGridSize
	}
	return &RhythmGridMapper{grid: grid}
}

// Map projects each onset onto the grid. The grid represents one 4-beat
// cycle; an onset at beat position b lands on step round(b mod 4 / 4 * grid)
// mod grid. Multiple onsets on one step collapse to a single hit. A
// non-positive tempo or an empty onset list yields an all-rest pattern of
// exactly grid slots.
func (rm *RhythmGridMapper) Map(onsetTimes []float64, tempo float64) StepPattern {
	pattern := make(StepPattern, rm.grid)
	if tempo <= 0 || len(onsetTimes) == 0 {
		return pattern
	}

	secondsPerBeat := 60.0 / tempo
	for _, onset := range onsetTimes {
		beatPosition := onset / secondsPerBeat
		step := int(math.Round(math.Mod(beatPosition, 4.0)/4.0*float64(rm.grid))) % rm.grid
		if step < 0 {
			step += rm.grid
		}
		pattern[step] = true
	}

	return pattern
}
