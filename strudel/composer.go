package strudel

import (
	"fmt"
	"strings"

	"github.com/acoustlab/strudelize/logging"
)

// Token vocabulary of the percussive grid
const (
	HitToken  = "bd"
	RestToken = "~"
)

// StrudelResult is the final artifact of one conversion. Code is always
// produced; PreviewPath is empty when preview export failed or was skipped.
type StrudelResult struct {
	Code        string  `json:"code"`
	PreviewPath string  `json:"preview_path,omitempty"`
	Tempo       float64 `json:"tempo"`
	Key         string  `json:"key"`
}

// PreviewExporter writes a bounded prefix of the signal to a retrievable
// audio file and returns its path. Strictly best-effort for the composer.
type PreviewExporter interface {
	Export(sig AudioSignal, maxSeconds float64) (string, error)
}

// ComposerParams configures pattern composition
type ComposerParams struct {
	GridSize       int     `json:"grid_size"`
	PreviewSeconds float64 `json:"preview_seconds"`
	MelodicVoice   string  `json:"melodic_voice"`
	BassVoice      string  `json:"bass_voice"`
}

// DefaultComposerParams returns the standard composition settings
func DefaultComposerParams() ComposerParams {
	return ComposerParams{
		GridSize:       DefaultGridSize,
		PreviewSeconds: 12.0,
		MelodicVoice:   "piano",
		BassVoice:      "sawtooth",
	}
}

// Composer combines features, notes, rhythm and stems into a stacked
// Strudel pattern. Identical inputs always produce identical code; the
// preview clip is the only side effect and its failure never blocks the
// code.
type Composer struct {
	params  ComposerParams
	key     *KeyEstimator
	notes   *NoteMapper
	rhythm  *RhythmGridMapper
	preview PreviewExporter
	logger  logging.Logger
}

// NewComposer creates a composer. A nil preview exporter disables preview
// generation; a nil logger disables logging.
func NewComposer(params ComposerParams, preview PreviewExporter, logger logging.Logger) *Composer {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Composer{
		params:  params,
		key:     NewKeyEstimator(),
		notes:   NewNoteMapper(),
		rhythm:  NewRhythmGridMapper(params.GridSize),
		preview: preview,
		logger:  logger,
	}
}

// Compose builds the StrudelResult from the main-mix features and any stem
// analyses
func (c *Composer) Compose(sig AudioSignal, features *FeatureSet, stems []StemFeatureSet) *StrudelResult {
	result := &StrudelResult{
		Tempo: features.Tempo,
		Key:   c.key.DominantPitchClass(features.Chroma),
	}

	var layers []string

	mainNotes := c.notes.Map(features.PitchContour, sig.SampleRate, features.OnsetTimes)
	if melodic := encodeNotes(mainNotes); melodic != "" {
		layers = append(layers, fmt.Sprintf("note(%q).sound(%q)", melodic, c.params.MelodicVoice))
	}

	// The main grid is always emitted, all-rest included, so consumers can
	// rely on a fixed-length percussive layer being present.
	mainGrid := c.rhythm.Map(features.OnsetTimes, features.Tempo)
	layers = append(layers, fmt.Sprintf("sound(%q)", strings.Join(mainGrid.Tokens(HitToken, RestToken), " ")))

	for _, stem := range stems {
		if layer := c.stemLayer(stem); layer != "" {
			layers = append(layers, fmt.Sprintf("// %s\n  %s", stem.Label, layer))
		}
	}

	var code strings.Builder
	fmt.Fprintf(&code, "// key: %s\n", result.Key)
	fmt.Fprintf(&code, "setcpm(%g/4)\n", features.Tempo)
	fmt.Fprintf(&code, "stack(\n  %s\n)\n", strings.Join(layers, ",\n  "))
	result.Code = code.String()

	result.PreviewPath = c.exportPreview(sig)
	return result
}

// stemLayer encodes one stem as an independently playable layer. Percussive
// stems become their own step grid; everything else becomes a note layer in
// a stem-appropriate voice. Stems with nothing to play are skipped.
func (c *Composer) stemLayer(stem StemFeatureSet) string {
	switch stem.Label {
	case "drums", "percussive":
		grid := c.rhythm.Map(stem.Features.OnsetTimes, stem.Features.Tempo)
		if grid.Hits() == 0 {
			return ""
		}
		return fmt.Sprintf("sound(%q)", strings.Join(grid.Tokens(HitToken, RestToken), " "))
	default:
		melodic := encodeNotes(stem.Notes)
		if melodic == "" {
			return ""
		}
		voice := c.params.MelodicVoice
		if stem.Label == "bass" {
			voice = c.params.BassVoice
		}
		return fmt.Sprintf("note(%q).sound(%q)", melodic, voice)
	}
}

// exportPreview writes the preview clip, absorbing any failure
func (c *Composer) exportPreview(sig AudioSignal) string {
	if c.preview == nil || sig.Empty() {
		return ""
	}

	path, err := c.preview.Export(sig, c.params.PreviewSeconds)
	if err != nil {
		c.logger.Warn("preview export failed, returning code without preview", logging.Fields{
			"error": err.Error(),
		})
		return ""
	}
	return path
}

// encodeNotes renders a note sequence as a Strudel mini-notation string.
// Runs of the same note are grouped with the replicate shorthand
// ("a4!3") so recurring motifs stay visually prominent instead of being
// flattened into repeated single tokens.
func encodeNotes(notes []NoteEvent) string {
	if len(notes) == 0 {
		return ""
	}

	var tokens []string
	runStart := 0
	for i := 1; i <= len(notes); i++ {
		if i < len(notes) && notes[i].Name == notes[runStart].Name {
			continue
		}
		name := strings.ToLower(notes[runStart].Name)
		if runLen := i - runStart; runLen > 1 {
			tokens = append(tokens, fmt.Sprintf("%s!%d", name, runLen))
		} else {
			tokens = append(tokens, name)
		}
		runStart = i
	}

	return strings.Join(tokens, " ")
}
