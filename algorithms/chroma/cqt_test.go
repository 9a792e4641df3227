package chroma

import (
	"math"
	"testing"
)

func sine(freq float64, length, sampleRate int) []float64 {
	signal := make([]float64, length)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestComputeShape(t *testing.T) {
	cq := NewChromaCQT(44100)
	chroma, err := cq.Compute(sine(440, 8192, 44100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chroma) != NumChromaBins {
		t.Fatalf("rows = %d, want %d", len(chroma), NumChromaBins)
	}
	frames := len(chroma[0])
	if frames == 0 {
		t.Fatal("no frames for an 8192-sample signal")
	}
	for pc, row := range chroma {
		if len(row) != frames {
			t.Errorf("row %d length = %d, want %d", pc, len(row), frames)
		}
	}
}

func TestComputeShortSignal(t *testing.T) {
	cq := NewChromaCQT(44100)
	chroma, err := cq.Compute(make([]float64, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chroma) != NumChromaBins {
		t.Fatalf("rows = %d, want %d", len(chroma), NumChromaBins)
	}
	for pc, row := range chroma {
		if len(row) != 0 {
			t.Errorf("row %d has %d frames for a too-short signal", pc, len(row))
		}
	}
}

func TestComputePitchClassPeaks(t *testing.T) {
	// The tone's pitch class row should carry the most energy. Row 0 is C,
	// so A sits at row 9.
	tests := []struct {
		name string
		freq float64
		row  int
	}{
		{"A4", 440.0, 9},
		{"A3", 220.0, 9},
		{"E4", 329.63, 4},
		{"C3", 130.81, 0},
	}

	cq := NewChromaCQT(44100)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chroma, err := cq.Compute(sine(tt.freq, 8192, 44100))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Use the middle frame to avoid window edge effects
			frame := len(chroma[0]) / 2
			best := 0
			for pc := range chroma {
				if chroma[pc][frame] > chroma[best][frame] {
					best = pc
				}
			}
			if best != tt.row {
				t.Errorf("dominant pitch class = %d, want %d", best, tt.row)
			}
		})
	}
}

func TestComputeColumnsNormalized(t *testing.T) {
	cq := NewChromaCQT(44100)
	chroma, err := cq.Compute(sine(440, 8192, 44100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for frame := range chroma[0] {
		total := 0.0
		for pc := range chroma {
			total += chroma[pc][frame]
		}
		if total > 0 && math.Abs(total-1.0) > 1e-9 {
			t.Errorf("frame %d energy sum = %v, want 1", frame, total)
		}
	}
}

func TestComputeSilentColumnsZero(t *testing.T) {
	cq := NewChromaCQT(44100)
	chroma, err := cq.Compute(make([]float64, 4096))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for pc := range chroma {
		for frame, v := range chroma[pc] {
			if v != 0 {
				t.Errorf("row %d frame %d = %v for silence, want 0", pc, frame, v)
			}
		}
	}
}
