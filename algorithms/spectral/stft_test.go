package spectral

import (
	"math"
	"testing"
)

func TestSTFTFrameCount(t *testing.T) {
	tests := []struct {
		name       string
		sigLen     int
		windowSize int
		hopSize    int
		wantFrames int
	}{
		{"exactly one window", 1024, 1024, 256, 1},
		{"one hop extra", 1280, 1024, 256, 2},
		{"typical", 44100, 2048, 512, 83},
	}

	stft := NewSTFT()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := make([]float64, tt.sigLen)
			result, err := stft.Compute(signal, tt.windowSize, tt.hopSize, 44100)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Magnitude) != tt.wantFrames {
				t.Errorf("frames = %d, want %d", len(result.Magnitude), tt.wantFrames)
			}
			if result.FreqBins != tt.windowSize/2+1 {
				t.Errorf("bins = %d, want %d", result.FreqBins, tt.windowSize/2+1)
			}
		})
	}
}

func TestSTFTShortSignal(t *testing.T) {
	stft := NewSTFT()
	result, err := stft.Compute(make([]float64, 100), 1024, 256, 44100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Magnitude) != 0 {
		t.Errorf("short signal produced %d frames, want 0", len(result.Magnitude))
	}
}

func TestSTFTInvalidParams(t *testing.T) {
	stft := NewSTFT()
	if _, err := stft.Compute(make([]float64, 2048), 0, 256, 44100); err == nil {
		t.Error("expected error for zero window size")
	}
	if _, err := stft.Compute(make([]float64, 2048), 1024, 0, 44100); err == nil {
		t.Error("expected error for zero hop size")
	}
}

func TestSTFTSinePeakBin(t *testing.T) {
	// A pure tone's energy concentrates at its frequency bin
	sampleRate := 44100
	windowSize := 2048
	freq := 1000.0

	signal := make([]float64, 4096)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}

	stft := NewSTFT()
	result, err := stft.Compute(signal, windowSize, 512, sampleRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	peakBin := 0
	for bin, mag := range result.Magnitude[0] {
		if mag > result.Magnitude[0][peakBin] {
			peakBin = bin
		}
	}

	wantBin := int(math.Round(freq / result.FreqResolution))
	if peakBin < wantBin-1 || peakBin > wantBin+1 {
		t.Errorf("peak bin = %d, want ~%d", peakBin, wantBin)
	}
}

func TestSpectralFluxShape(t *testing.T) {
	flux := NewSpectralFlux()

	if got := flux.Compute(nil); len(got) != 0 {
		t.Errorf("empty spectrogram flux length = %d", len(got))
	}

	// Flux maps 1:1 onto frames, with zero for the first frame
	spectrogram := [][]float64{
		{0, 0, 0},
		{1, 1, 1},
		{1, 1, 1},
		{0, 0, 0},
	}
	got := flux.Compute(spectrogram)
	if len(got) != 4 {
		t.Fatalf("flux length = %d, want 4", len(got))
	}
	if got[0] != 0 {
		t.Errorf("flux[0] = %v, want 0", got[0])
	}
	if math.Abs(got[1]-math.Sqrt(3)) > 1e-12 {
		t.Errorf("flux[1] = %v, want sqrt(3)", got[1])
	}
	if got[2] != 0 {
		t.Errorf("flux[2] = %v, want 0 for unchanged frame", got[2])
	}
	// Energy decrease is rectified away
	if got[3] != 0 {
		t.Errorf("flux[3] = %v, want 0 for decrease", got[3])
	}
}
