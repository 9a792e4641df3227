package temporal

import (
	"math"
	"testing"
)

// periodicEnvelope builds an onset strength envelope with one impulse every
// periodFrames frames
func periodicEnvelope(frames, periodFrames int) []float64 {
	envelope := make([]float64, frames)
	for i := 0; i < frames; i += periodFrames {
		envelope[i] = 1.0
	}
	return envelope
}

func TestEstimateTempoPeriodic(t *testing.T) {
	// At 44100 Hz with a 512 hop, one frame is ~11.61 ms. A 43-frame
	// period is ~0.499 s per beat, ~120 BPM.
	te := NewTempoEstimator()
	envelope := periodicEnvelope(860, 43)

	tempo := te.EstimateFromEnvelope(envelope, 44100, 512)
	if math.Abs(tempo-120.0) > 5.0 {
		t.Errorf("tempo = %v, want ~120", tempo)
	}
}

func TestEstimateTempoSlower(t *testing.T) {
	// 86-frame period is ~1 s per beat, ~60 BPM
	te := NewTempoEstimator()
	envelope := periodicEnvelope(860, 86)

	tempo := te.EstimateFromEnvelope(envelope, 44100, 512)
	if math.Abs(tempo-60.0) > 3.0 {
		t.Errorf("tempo = %v, want ~60", tempo)
	}
}

func TestEstimateTempoDegenerate(t *testing.T) {
	te := NewTempoEstimator()

	tests := []struct {
		name       string
		envelope   []float64
		sampleRate int
		hopSize    int
	}{
		{"empty", nil, 44100, 512},
		{"too short", []float64{1, 0, 1}, 44100, 512},
		{"silent", make([]float64, 200), 44100, 512},
		{"zero sample rate", periodicEnvelope(200, 43), 0, 512},
		{"zero hop", periodicEnvelope(200, 43), 44100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := te.EstimateFromEnvelope(tt.envelope, tt.sampleRate, tt.hopSize); got != 0 {
				t.Errorf("tempo = %v, want 0", got)
			}
		})
	}
}

func TestEstimateTempoInRange(t *testing.T) {
	// Whatever the input, a nonzero estimate stays inside the search range
	te := NewTempoEstimator()
	params := DefaultTempoParams()

	for _, period := range []int{20, 43, 60, 86, 120} {
		tempo := te.EstimateFromEnvelope(periodicEnvelope(1000, period), 44100, 512)
		if tempo == 0 {
			continue
		}
		// Peak picking can land on a harmonic of the true period, so allow
		// the range bounds with a little slack
		if tempo < params.MinTempo-1 || tempo > params.MaxTempo+1 {
			t.Errorf("period %d: tempo %v outside [%v, %v]", period, tempo, params.MinTempo, params.MaxTempo)
		}
	}
}
