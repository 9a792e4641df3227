package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/acoustlab/strudelize/algorithms/windowing"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft *FFT
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
	}
}

// Compute computes a Hann-windowed magnitude spectrogram. One conversion
// request runs end-to-end on a single goroutine, so frames are processed
// sequentially.
func (s *STFT) Compute(signal []float64, windowSize, hopSize, sampleRate int) (*STFTResult, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	freqBins := windowSize/2 + 1

	result := &STFTResult{
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}

	if len(signal) < windowSize {
		result.Magnitude = [][]float64{}
		return result, nil
	}

	numFrames := (len(signal)-windowSize)/hopSize + 1
	window := windowing.NewHann(windowSize, false)
	frame := make([]float64, windowSize)

	magnitude := make([][]float64, numFrames)
	for frameIdx := range numFrames {
		start := frameIdx * hopSize
		copy(frame, signal[start:start+windowSize])
		if err := window.ApplyInPlace(frame); err != nil {
			return nil, err
		}

		spectrum := s.fft.Compute(frame)

		magnitude[frameIdx] = make([]float64, freqBins)
		for bin := range freqBins {
			magnitude[frameIdx][bin] = cmplx.Abs(spectrum[bin])
		}
	}

	result.Magnitude = magnitude
	result.TimeFrames = numFrames
	return result, nil
}
