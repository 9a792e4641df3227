package temporal

import (
	"github.com/acoustlab/strudelize/algorithms/common"
	"github.com/acoustlab/strudelize/algorithms/spectral"
)

// OnsetParams contains parameters for onset analysis
type OnsetParams struct {
	WindowSize     int     `json:"window_size"`     // STFT window size
	HopSize        int     `json:"hop_size"`        // STFT hop size
	DeltaThreshold float64 `json:"delta_threshold"` // Peak threshold in std devs above the mean
	MinInterval    float64 `json:"min_interval"`    // Minimum spacing between onsets (seconds)
}

// DefaultOnsetParams returns onset parameters tuned for musical material
func DefaultOnsetParams() OnsetParams {
	return OnsetParams{
		WindowSize:     2048,
		HopSize:        512,
		DeltaThreshold: 1.0,
		MinInterval:    0.05,
	}
}

// OnsetDetector detects note/event onsets in audio signals using the
// spectral flux of an STFT magnitude spectrogram.
type OnsetDetector struct {
	params OnsetParams
	stft   *spectral.STFT
	flux   *spectral.SpectralFlux
}

// NewOnsetDetector creates an onset detector with default parameters
func NewOnsetDetector() *OnsetDetector {
	return NewOnsetDetectorWithParams(DefaultOnsetParams())
}

// NewOnsetDetectorWithParams creates an onset detector with custom parameters
func NewOnsetDetectorWithParams(params OnsetParams) *OnsetDetector {
	return &OnsetDetector{
		params: params,
		stft:   spectral.NewSTFT(),
		flux:   spectral.NewSpectralFlux(),
	}
}

// Params returns the detector parameters
func (od *OnsetDetector) Params() OnsetParams {
	return od.params
}

// StrengthEnvelope computes the onset strength envelope: half-wave rectified
// spectral flux, peak-normalized. One value per analysis frame. Empty or
// too-short signals yield an empty envelope.
func (od *OnsetDetector) StrengthEnvelope(signal []float64, sampleRate int) ([]float64, error) {
	if len(signal) == 0 {
		return []float64{}, nil
	}

	stftResult, err := od.stft.Compute(signal, od.params.WindowSize, od.params.HopSize, sampleRate)
	if err != nil {
		return nil, err
	}

	envelope := od.flux.Compute(stftResult.Magnitude)
	common.NormalizePeak(envelope)
	return envelope, nil
}

// DetectOnsets peak-picks the strength envelope and returns onset instants
// in seconds. Each peak is backtracked to the nearest preceding local
// minimum, which is closer to the perceptual attack point than the flux
// maximum itself.
func (od *OnsetDetector) DetectOnsets(envelope []float64, sampleRate int) []float64 {
	if len(envelope) < 3 || sampleRate <= 0 {
		return []float64{}
	}

	threshold := common.Mean(envelope) + od.params.DeltaThreshold*common.StandardDeviation(envelope)

	minIntervalFrames := int(od.params.MinInterval * float64(sampleRate) / float64(od.params.HopSize))
	frameDuration := float64(od.params.HopSize) / float64(sampleRate)

	var onsets []float64
	lastPeakFrame := -minIntervalFrames

	for i := 1; i < len(envelope)-1; i++ {
		if envelope[i] > envelope[i-1] &&
			envelope[i] >= envelope[i+1] &&
			envelope[i] >= threshold &&
			i-lastPeakFrame >= minIntervalFrames {
			attack := od.backtrack(envelope, i)
			onsets = append(onsets, float64(attack)*frameDuration)
			lastPeakFrame = i
		}
	}

	if onsets == nil {
		return []float64{}
	}
	return onsets
}

// backtrack walks from a flux peak back to the preceding local minimum
func (od *OnsetDetector) backtrack(envelope []float64, peak int) int {
	i := peak
	for i > 0 && envelope[i-1] < envelope[i] {
		i--
	}
	return i
}
