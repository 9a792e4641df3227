package strudel

import (
	"github.com/acoustlab/strudelize/algorithms/chroma"
	"github.com/acoustlab/strudelize/algorithms/temporal"
	"github.com/acoustlab/strudelize/algorithms/tonal"
)

// FeatureSet bundles the rhythm and pitch measurements of one signal.
// Shape invariants:
//   - OnsetTimes is strictly increasing and bounded by the signal duration.
//   - PitchContour has exactly one value per analysis frame; its length is a
//     fixed function of signal length, frame size and hop size. Unvoiced
//     frames hold NaN.
//   - Chroma has exactly 12 rows (pitch classes C..B), one column per frame.
//
// Degenerate signals (silence, empty) produce Tempo 0 and empty sequences,
// never an error; every downstream stage tolerates that.
type FeatureSet struct {
	Tempo         float64     `json:"tempo"` // BPM, 0 when undetectable
	OnsetEnvelope []float64   `json:"onset_envelope"`
	OnsetTimes    []float64   `json:"onset_times"` // Seconds
	PitchContour  []float64   `json:"pitch_contour"`
	Chroma        [][]float64 `json:"chroma"`
}

// FeatureExtractor derives a FeatureSet from a mono signal. It owns no
// state between calls; extraction is deterministic in its inputs.
type FeatureExtractor struct {
	onsets *temporal.OnsetDetector
	tempo  *temporal.TempoEstimator
}

// NewFeatureExtractor creates a feature extractor with default analysis
// parameters (2048-sample frames, 512-sample hop, C2-C7 pitch bounds)
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{
		onsets: temporal.NewOnsetDetector(),
		tempo:  temporal.NewTempoEstimator(),
	}
}

// Extract computes tempo, onset envelope, onset times, pitch contour and
// chroma for the given signal. The pitch tracker and chroma filterbank are
// built per call because they depend on the signal's sample rate.
func (fe *FeatureExtractor) Extract(sig AudioSignal) (*FeatureSet, error) {
	features := &FeatureSet{
		OnsetEnvelope: []float64{},
		OnsetTimes:    []float64{},
		PitchContour:  []float64{},
		Chroma:        emptyChroma(),
	}

	if sig.Empty() || sig.SampleRate <= 0 {
		return features, nil
	}

	envelope, err := fe.onsets.StrengthEnvelope(sig.Samples, sig.SampleRate)
	if err != nil {
		return nil, err
	}
	features.OnsetEnvelope = envelope
	features.OnsetTimes = fe.onsets.DetectOnsets(envelope, sig.SampleRate)
	features.Tempo = fe.tempo.EstimateFromEnvelope(envelope, sig.SampleRate, fe.onsets.Params().HopSize)

	tracker := tonal.NewPitchTracker(sig.SampleRate)
	features.PitchContour = tracker.Track(sig.Samples)

	chromagram, err := chroma.NewChromaCQT(sig.SampleRate).Compute(sig.Samples)
	if err != nil {
		return nil, err
	}
	features.Chroma = chromagram

	return features, nil
}

// emptyChroma returns a 12-row matrix with no frames
func emptyChroma() [][]float64 {
	m := make([][]float64, chroma.NumChromaBins)
	for i := range m {
		m[i] = []float64{}
	}
	return m
}
