package tonal

import (
	"math"
)

// PitchTrackerParams contains parameters for the frame-wise YIN tracker
type PitchTrackerParams struct {
	SampleRate int     `json:"sample_rate"`
	FrameSize  int     `json:"frame_size"` // Analysis frame length in samples
	HopSize    int     `json:"hop_size"`   // Hop between frames in samples
	MinFreq    float64 `json:"min_freq"`   // Lowest detectable fundamental (Hz)
	MaxFreq    float64 `json:"max_freq"`   // Highest detectable fundamental (Hz)
	Threshold  float64 `json:"threshold"`  // YIN aperiodicity threshold (0.1-0.5)
}

// DefaultPitchTrackerParams bounds detection to C2 through C7, two octaves
// either side of middle C, with the standard 2048-sample frame.
func DefaultPitchTrackerParams(sampleRate int) PitchTrackerParams {
	return PitchTrackerParams{
		SampleRate: sampleRate,
		FrameSize:  2048,
		HopSize:    512,
		MinFreq:    65.41,  // C2
		MaxFreq:    2093.0, // C7
		Threshold:  0.15,
	}
}

// PitchTracker estimates a per-frame fundamental frequency contour for
// monophonic material using the YIN algorithm.
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
type PitchTracker struct {
	params PitchTrackerParams
}

// NewPitchTracker creates a pitch tracker with default parameters
func NewPitchTracker(sampleRate int) *PitchTracker {
	return NewPitchTrackerWithParams(DefaultPitchTrackerParams(sampleRate))
}

// NewPitchTrackerWithParams creates a pitch tracker with custom parameters
func NewPitchTrackerWithParams(params PitchTrackerParams) *PitchTracker {
	return &PitchTracker{params: params}
}

// Params returns the tracker parameters
func (pt *PitchTracker) Params() PitchTrackerParams {
	return pt.params
}

// NumFrames returns the contour length for a signal of the given length.
// The count depends only on signal length, frame size and hop size, so the
// contour shape is fully determined by its input.
func (pt *PitchTracker) NumFrames(signalLength int) int {
	if signalLength < pt.params.FrameSize {
		return 0
	}
	return (signalLength-pt.params.FrameSize)/pt.params.HopSize + 1
}

// FrameTime returns the timestamp in seconds of the given frame index
func (pt *PitchTracker) FrameTime(frame int) float64 {
	return float64(frame*pt.params.HopSize) / float64(pt.params.SampleRate)
}

// Track computes the fundamental frequency contour. Unvoiced or
// low-confidence frames report NaN.
func (pt *PitchTracker) Track(signal []float64) []float64 {
	numFrames := pt.NumFrames(len(signal))
	contour := make([]float64, numFrames)

	for i := range numFrames {
		start := i * pt.params.HopSize
		contour[i] = pt.trackFrame(signal[start : start+pt.params.FrameSize])
	}

	return contour
}

// trackFrame runs YIN on a single frame and returns the fundamental in Hz,
// or NaN when no periodicity below the threshold is found.
func (pt *PitchTracker) trackFrame(frame []float64) float64 {
	halfN := len(frame) / 2

	tauMin := int(float64(pt.params.SampleRate) / pt.params.MaxFreq)
	tauMax := int(float64(pt.params.SampleRate)/pt.params.MinFreq) + 1
	if tauMin < 1 {
		tauMin = 1
	}
	if tauMax > halfN {
		tauMax = halfN
	}
	if tauMin >= tauMax {
		return math.NaN()
	}

	// Difference function
	diff := make([]float64, tauMax)
	for tau := 1; tau < tauMax; tau++ {
		sum := 0.0
		for j := 0; j < halfN; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference function
	cmndf := make([]float64, tauMax)
	cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < tauMax; tau++ {
		runningSum += diff[tau]
		if runningSum > 0 {
			cmndf[tau] = diff[tau] * float64(tau) / runningSum
		} else {
			cmndf[tau] = 1.0
		}
	}

	// First local minimum below threshold inside the search band
	minTau := -1
	for tau := tauMin; tau < tauMax-1; tau++ {
		if cmndf[tau] < pt.params.Threshold && cmndf[tau] <= cmndf[tau+1] {
			minTau = tau
			break
		}
	}
	if minTau < 0 {
		return math.NaN()
	}

	period := pt.parabolicInterpolation(cmndf, minTau)
	if period <= 0 {
		return math.NaN()
	}

	frequency := float64(pt.params.SampleRate) / period
	if frequency < pt.params.MinFreq || frequency > pt.params.MaxFreq {
		return math.NaN()
	}
	return frequency
}

// parabolicInterpolation refines the minimum location to sub-sample accuracy
func (pt *PitchTracker) parabolicInterpolation(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return float64(idx)
	}

	y1 := data[idx-1]
	y2 := data[idx]
	y3 := data[idx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2
	if a == 0 {
		return float64(idx)
	}

	return float64(idx) - b/(2*a)
}
