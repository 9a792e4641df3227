package strudel

import (
	"fmt"
	"math"
	"sort"
)

// NoteEvent is a named note tied to the onset that produced it. OnsetIndex
// refers to the position in the onset time sequence, so callers can relate
// notes back to rhythm even though unvoiced onsets are dropped.
type NoteEvent struct {
	Name       string `json:"name"`
	OnsetIndex int    `json:"onset_index"`
}

// NoteMapperParams fixes the frame timing used to sample the pitch contour
type NoteMapperParams struct {
	FrameSize int `json:"frame_size"`
	HopSize   int `json:"hop_size"`
}

// DefaultNoteMapperParams matches the pitch tracker's analysis grid
func DefaultNoteMapperParams() NoteMapperParams {
	return NoteMapperParams{
		FrameSize: 2048,
		HopSize:   512,
	}
}

// NoteMapper samples a pitch contour at onset instants and produces named
// notes. Pure function of its inputs; no side effects.
type NoteMapper struct {
	params NoteMapperParams
}

// NewNoteMapper creates a note mapper with the default analysis grid
func NewNoteMapper() *NoteMapper {
	return &NoteMapper{params: DefaultNoteMapperParams()}
}

// Map returns one NoteEvent per voiced onset, in onset order. For each
// onset the contour frame whose timestamp is the first at or after the
// onset is sampled; onsets past the final frame clamp to the final frame.
// Onsets whose frame is unvoiced (NaN or <= 0 Hz) are dropped, so the
// output may be shorter than the onset sequence.
func (nm *NoteMapper) Map(contour []float64, sampleRate int, onsetTimes []float64) []NoteEvent {
	if len(contour) == 0 || len(onsetTimes) == 0 || sampleRate <= 0 {
		return []NoteEvent{}
	}

	frameDuration := float64(nm.params.HopSize) / float64(sampleRate)

	notes := make([]NoteEvent, 0, len(onsetTimes))
	for i, onset := range onsetTimes {
		idx := sort.Search(len(contour), func(f int) bool {
			return float64(f)*frameDuration >= onset
		})
		if idx >= len(contour) {
			idx = len(contour) - 1
		}

		hz := contour[idx]
		if math.IsNaN(hz) || hz <= 0 {
			continue
		}
		notes = append(notes, NoteEvent{Name: NoteName(hz), OnsetIndex: i})
	}

	return notes
}

// NoteName converts a frequency to the nearest named note, pitch class plus
// octave, with A4 = 440 Hz and nearest-semitone rounding. C4 is middle C.
func NoteName(hz float64) string {
	midi := int(math.Round(69.0 + 12.0*math.Log2(hz/440.0)))
	pc := midi % 12
	if pc < 0 {
		pc += 12
	}
	octave := midi/12 - 1
	return fmt.Sprintf("%s%d", pitchClassNames[pc], octave)
}
