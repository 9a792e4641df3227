package temporal

// TempoParams contains parameters for tempo estimation
type TempoParams struct {
	MinTempo float64 `json:"min_tempo"` // Lowest tempo considered (BPM)
	MaxTempo float64 `json:"max_tempo"` // Highest tempo considered (BPM)
}

// DefaultTempoParams returns the standard search range
func DefaultTempoParams() TempoParams {
	return TempoParams{
		MinTempo: 60.0,
		MaxTempo: 200.0,
	}
}

// TempoEstimator estimates a single scalar tempo from an onset strength
// envelope by autocorrelation. The envelope is periodic at the beat period,
// so the strongest autocorrelation peak inside the tempo search range gives
// the beat lag.
type TempoEstimator struct {
	params TempoParams
}

// NewTempoEstimator creates a tempo estimator with default parameters
func NewTempoEstimator() *TempoEstimator {
	return &TempoEstimator{params: DefaultTempoParams()}
}

// NewTempoEstimatorWithParams creates a tempo estimator with custom parameters
func NewTempoEstimatorWithParams(params TempoParams) *TempoEstimator {
	return &TempoEstimator{params: params}
}

// EstimateFromEnvelope returns the tempo in BPM, or 0 when the envelope is
// degenerate (empty, too short, or silent).
func (te *TempoEstimator) EstimateFromEnvelope(envelope []float64, sampleRate, hopSize int) float64 {
	if len(envelope) < 8 || sampleRate <= 0 || hopSize <= 0 {
		return 0.0
	}

	maxLag := len(envelope) / 2
	autocorr := te.autocorrelation(envelope, maxLag)
	if len(autocorr) == 0 || autocorr[0] <= 0 {
		return 0.0
	}

	frameDuration := float64(hopSize) / float64(sampleRate)

	// Beat period bounds in lag frames
	minLag := int(60.0 / te.params.MaxTempo / frameDuration)
	maxSearchLag := int(60.0 / te.params.MinTempo / frameDuration)
	if minLag < 1 {
		minLag = 1
	}
	if maxSearchLag >= len(autocorr)-1 {
		maxSearchLag = len(autocorr) - 2
	}
	if maxSearchLag < minLag {
		return 0.0
	}

	// Peaks at multiples of the beat lag score near-identically, so ties
	// resolve to the shortest period
	bestLag := 0
	bestVal := 0.0
	for lag := minLag; lag <= maxSearchLag; lag++ {
		if autocorr[lag] > autocorr[lag-1] &&
			autocorr[lag] >= autocorr[lag+1] &&
			autocorr[lag] > bestVal+1e-9 {
			bestVal = autocorr[lag]
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return 0.0
	}

	period := float64(bestLag) * frameDuration
	return 60.0 / period
}

// autocorrelation computes the normalized autocorrelation up to maxLag
func (te *TempoEstimator) autocorrelation(signal []float64, maxLag int) []float64 {
	if maxLag > len(signal) {
		maxLag = len(signal)
	}

	autocorr := make([]float64, maxLag)
	for lag := range maxLag {
		sum := 0.0
		count := 0
		for i := 0; i < len(signal)-lag; i++ {
			sum += signal[i] * signal[i+lag]
			count++
		}
		if count > 0 {
			autocorr[lag] = sum / float64(count)
		}
	}

	if len(autocorr) > 0 && autocorr[0] > 0 {
		for i := range autocorr {
			autocorr[i] /= autocorr[0]
		}
	}

	return autocorr
}
