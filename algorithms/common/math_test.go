package common

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{3}, 3},
		{"mixed", []float64{1, 2, 3, 4}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.data); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Mean = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArgMax(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want int
	}{
		{"empty", nil, -1},
		{"single", []float64{5}, 0},
		{"last is max", []float64{1, 2, 3}, 2},
		{"tie resolves low", []float64{1, 3, 3, 1}, 1},
		{"all equal", []float64{2, 2, 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArgMax(tt.data); got != tt.want {
				t.Errorf("ArgMax = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRMS(t *testing.T) {
	if got := RMS([]float64{3, 4}); math.Abs(got-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("RMS = %v", got)
	}
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS of empty = %v, want 0", got)
	}
}

func TestNormalizePeak(t *testing.T) {
	data := []float64{0.5, -2.0, 1.0}
	NormalizePeak(data)
	want := []float64{0.25, -1.0, 0.5}
	for i := range data {
		if math.Abs(data[i]-want[i]) > 1e-12 {
			t.Errorf("data[%d] = %v, want %v", i, data[i], want[i])
		}
	}

	zeros := []float64{0, 0, 0}
	NormalizePeak(zeros)
	for i, v := range zeros {
		if v != 0 {
			t.Errorf("zeros[%d] = %v after normalizing all-zero input", i, v)
		}
	}
}

func TestStandardDeviation(t *testing.T) {
	if got := StandardDeviation([]float64{5}); got != 0 {
		t.Errorf("single-element std = %v, want 0", got)
	}
	// Sample std of {2, 4, 4, 4, 5, 5, 7, 9} is ~2.138
	got := StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2.1381) > 1e-3 {
		t.Errorf("std = %v, want ~2.138", got)
	}
}
