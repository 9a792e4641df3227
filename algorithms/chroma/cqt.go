package chroma

import (
	"math"

	"github.com/acoustlab/strudelize/algorithms/spectral"
)

// NumChromaBins is the number of pitch classes, C through B
const NumChromaBins = 12

// ChromaCQTParams contains parameters for constant-Q chroma analysis
type ChromaCQTParams struct {
	SampleRate    int     `json:"sample_rate"`
	WindowSize    int     `json:"window_size"`     // STFT window size
	HopSize       int     `json:"hop_size"`        // STFT hop size
	MinFreq       float64 `json:"min_freq"`        // Lowest analysis frequency (Hz)
	NumOctaves    int     `json:"num_octaves"`     // Octaves above MinFreq
	BinsPerOctave int     `json:"bins_per_octave"` // Semitone resolution
	TuningFreq    float64 `json:"tuning_freq"`     // A4 reference (Hz)
}

// DefaultChromaCQTParams covers C2 through C7 at semitone resolution
func DefaultChromaCQTParams(sampleRate int) ChromaCQTParams {
	return ChromaCQTParams{
		SampleRate:    sampleRate,
		WindowSize:    2048,
		HopSize:       512,
		MinFreq:       65.41, // C2
		NumOctaves:    5,
		BinsPerOctave: 12,
		TuningFreq:    440.0,
	}
}

// ChromaCQT computes a pitch-class energy matrix using a constant-Q
// filterbank projected onto STFT magnitude frames. Constant-Q spacing
// (f_k = f_min * 2^(k/binsPerOctave)) matches musical note spacing, so
// each filterbank band tracks one semitone and bands fold cleanly onto the
// 12 pitch classes.
type ChromaCQT struct {
	params ChromaCQTParams
	stft   *spectral.STFT

	// Per-semitone FFT bin ranges, precomputed from the band edges
	loBin []int
	hiBin []int
}

// NewChromaCQT creates a chroma calculator with default musical settings
func NewChromaCQT(sampleRate int) *ChromaCQT {
	return NewChromaCQTWithParams(DefaultChromaCQTParams(sampleRate))
}

// NewChromaCQTWithParams creates a chroma calculator with custom parameters
func NewChromaCQTWithParams(params ChromaCQTParams) *ChromaCQT {
	c := &ChromaCQT{
		params: params,
		stft:   spectral.NewSTFT(),
	}
	c.buildFilterbank()
	return c
}

// buildFilterbank precomputes the FFT bin range of every semitone band.
// Band k spans a quarter tone either side of its center frequency.
func (c *ChromaCQT) buildFilterbank() {
	totalBins := c.params.NumOctaves * c.params.BinsPerOctave
	binWidth := float64(c.params.SampleRate) / float64(c.params.WindowSize)
	halfStep := math.Pow(2.0, 1.0/(2.0*float64(c.params.BinsPerOctave)))

	c.loBin = make([]int, totalBins)
	c.hiBin = make([]int, totalBins)

	maxBin := c.params.WindowSize/2 + 1
	for k := range totalBins {
		center := c.params.MinFreq * math.Pow(2.0, float64(k)/float64(c.params.BinsPerOctave))
		lo := int(math.Floor(center / halfStep / binWidth))
		hi := int(math.Ceil(center * halfStep / binWidth))
		if lo < 0 {
			lo = 0
		}
		if hi >= maxBin {
			hi = maxBin - 1
		}
		if hi < lo {
			hi = lo
		}
		c.loBin[k] = lo
		c.hiBin[k] = hi
	}
}

// Compute returns the chroma energy matrix, NumChromaBins rows by one
// column per analysis frame. Row 0 is pitch class C. Signals shorter than
// one analysis window yield 12 empty rows.
func (c *ChromaCQT) Compute(signal []float64) ([][]float64, error) {
	chroma := make([][]float64, NumChromaBins)

	stftResult, err := c.stft.Compute(signal, c.params.WindowSize, c.params.HopSize, c.params.SampleRate)
	if err != nil {
		return nil, err
	}

	numFrames := len(stftResult.Magnitude)
	for pc := range chroma {
		chroma[pc] = make([]float64, numFrames)
	}

	for t, frame := range stftResult.Magnitude {
		for k := range c.loBin {
			energy := 0.0
			for bin := c.loBin[k]; bin <= c.hiBin[k] && bin < len(frame); bin++ {
				energy += frame[bin] * frame[bin]
			}
			chroma[k%NumChromaBins][t] += energy
		}
		c.normalizeColumn(chroma, t)
	}

	return chroma, nil
}

// normalizeColumn scales one time column to unit energy sum. Silent frames
// are left at zero.
func (c *ChromaCQT) normalizeColumn(chroma [][]float64, t int) {
	total := 0.0
	for pc := range chroma {
		total += chroma[pc][t]
	}
	if total <= 0 {
		return
	}
	for pc := range chroma {
		chroma[pc][t] /= total
	}
}
