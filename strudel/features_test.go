package strudel

import (
	"math"
	"testing"
)

func TestExtractEmptySignal(t *testing.T) {
	fe := NewFeatureExtractor()

	tests := []struct {
		name string
		sig  AudioSignal
	}{
		{"empty", AudioSignal{}},
		{"nil samples", AudioSignal{SampleRate: 44100}},
		{"zero sample rate", AudioSignal{Samples: make([]float64, 1024)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features, err := fe.Extract(tt.sig)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if features.Tempo != 0 {
				t.Errorf("tempo = %v, want 0", features.Tempo)
			}
			if len(features.OnsetTimes) != 0 {
				t.Errorf("onsets = %d, want 0", len(features.OnsetTimes))
			}
			if len(features.Chroma) != 12 {
				t.Errorf("chroma rows = %d, want 12", len(features.Chroma))
			}
		})
	}
}

func TestExtractSilence(t *testing.T) {
	fe := NewFeatureExtractor()
	sig := AudioSignal{Samples: make([]float64, 44100), SampleRate: 44100}

	features, err := fe.Extract(sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if features.Tempo != 0 {
		t.Errorf("tempo = %v, want 0 for silence", features.Tempo)
	}
	if len(features.OnsetTimes) != 0 {
		t.Errorf("onsets = %d, want 0 for silence", len(features.OnsetTimes))
	}
	for _, hz := range features.PitchContour {
		if !math.IsNaN(hz) {
			t.Errorf("silence produced voiced frame %v", hz)
			break
		}
	}
}

func TestExtractOnsetsIncreasing(t *testing.T) {
	// A few sharp bursts over silence produce strictly increasing onsets
	fe := NewFeatureExtractor()
	samples := make([]float64, 44100*2)
	for _, at := range []int{0, 22050, 44100, 66150} {
		for i := range 512 {
			samples[at+i] = math.Sin(2 * math.Pi * 880 * float64(i) / 44100)
		}
	}

	features, err := fe.Extract(AudioSignal{Samples: samples, SampleRate: 44100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(features.OnsetTimes) == 0 {
		t.Fatal("expected at least one onset for burst signal")
	}
	duration := 2.0
	for i, onset := range features.OnsetTimes {
		if onset < 0 || onset > duration {
			t.Errorf("onset %d = %v s outside [0, %v]", i, onset, duration)
		}
		if i > 0 && onset <= features.OnsetTimes[i-1] {
			t.Errorf("onsets not strictly increasing at %d: %v <= %v",
				i, onset, features.OnsetTimes[i-1])
		}
	}

	if got := len(features.OnsetEnvelope); got == 0 {
		t.Error("expected non-empty onset envelope")
	}
}
