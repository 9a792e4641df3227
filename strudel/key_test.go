package strudel

import (
	"testing"
)

// chromaWithDominantRow builds a 12-row chromagram where one row carries
// all the energy
func chromaWithDominantRow(row, frames int) [][]float64 {
	m := make([][]float64, 12)
	for i := range m {
		m[i] = make([]float64, frames)
		if i == row {
			for f := range m[i] {
				m[i][f] = 1.0
			}
		}
	}
	return m
}

func TestDominantPitchClass(t *testing.T) {
	tests := []struct {
		row  int
		want string
	}{
		{0, "C"},
		{4, "E"},
		{7, "G"},
		{11, "B"},
	}

	ke := NewKeyEstimator()
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := ke.DominantPitchClass(chromaWithDominantRow(tt.row, 8))
			if got != tt.want {
				t.Errorf("DominantPitchClass(row %d) = %q, want %q", tt.row, got, tt.want)
			}
		})
	}
}

func TestDominantPitchClassEmpty(t *testing.T) {
	ke := NewKeyEstimator()

	if got := ke.DominantPitchClass(nil); got != "C" {
		t.Errorf("nil chromagram = %q, want C", got)
	}
	if got := ke.DominantPitchClass([][]float64{}); got != "C" {
		t.Errorf("empty chromagram = %q, want C", got)
	}

	// 12 rows, zero frames
	empty := make([][]float64, 12)
	for i := range empty {
		empty[i] = []float64{}
	}
	if got := ke.DominantPitchClass(empty); got != "C" {
		t.Errorf("zero-frame chromagram = %q, want C", got)
	}
}

func TestDominantPitchClassTieBreaksLow(t *testing.T) {
	// Equal energy in D and A resolves to the lower class index, D
	m := make([][]float64, 12)
	for i := range m {
		m[i] = []float64{0.1}
	}
	m[2] = []float64{0.9}
	m[9] = []float64{0.9}

	ke := NewKeyEstimator()
	if got := ke.DominantPitchClass(m); got != "D" {
		t.Errorf("tie = %q, want D", got)
	}
}

func TestDominantPitchClassColumnOrderInvariant(t *testing.T) {
	// Row means ignore frame order, so permuting columns changes nothing
	ke := NewKeyEstimator()

	a := [][]float64{}
	b := [][]float64{}
	for i := 0; i < 12; i++ {
		row := []float64{float64(i), 1, 0.5, float64(i) * 0.25}
		a = append(a, row)
		b = append(b, []float64{row[3], row[1], row[0], row[2]})
	}

	if got, want := ke.DominantPitchClass(b), ke.DominantPitchClass(a); got != want {
		t.Errorf("column permutation changed result: %q vs %q", got, want)
	}
}
