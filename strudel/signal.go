package strudel

// AudioSignal is an immutable decoded mono waveform. All pipeline stages
// read it; none mutate it.
type AudioSignal struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Duration returns the signal length in seconds
func (s AudioSignal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Empty reports whether the signal carries no samples
func (s AudioSignal) Empty() bool {
	return len(s.Samples) == 0
}
