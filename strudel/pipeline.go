package strudel

import (
	"context"
	"fmt"

	"github.com/acoustlab/strudelize/logging"
)

// SignalDecoder is the audio-decoding collaborator. A decode failure on the
// main mix is the one fatal condition of the pipeline.
type SignalDecoder interface {
	DecodeFile(ctx context.Context, path string) (AudioSignal, error)
}

// PipelineConfig configures one conversion pipeline
type PipelineConfig struct {
	GridSize       int     `json:"grid_size"`
	PreviewSeconds float64 `json:"preview_seconds"`
	EnableStems    bool    `json:"enable_stems"`
	MelodicVoice   string  `json:"melodic_voice"`
	BassVoice      string  `json:"bass_voice"`
}

// DefaultPipelineConfig returns the standard pipeline settings
func DefaultPipelineConfig() PipelineConfig {
	composer := DefaultComposerParams()
	return PipelineConfig{
		GridSize:       composer.GridSize,
		PreviewSeconds: composer.PreviewSeconds,
		EnableStems:    true,
		MelodicVoice:   composer.MelodicVoice,
		BassVoice:      composer.BassVoice,
	}
}

// Pipeline runs one conversion end-to-end: decode, feature extraction,
// optional stem enrichment, composition. Synchronous and stateless across
// requests; every invocation derives everything from its inputs.
type Pipeline struct {
	config    PipelineConfig
	decoder   SignalDecoder
	separator StemSeparator
	extractor *FeatureExtractor
	stems     *StemAnalyzer
	composer  *Composer
	logger    logging.Logger
}

// NewPipeline wires a pipeline from its collaborators. The separator and
// preview exporter may be nil, which disables stem enrichment and preview
// generation respectively.
func NewPipeline(config PipelineConfig, decoder SignalDecoder, separator StemSeparator, preview PreviewExporter, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}

	composerParams := ComposerParams{
		GridSize:       config.GridSize,
		PreviewSeconds: config.PreviewSeconds,
		MelodicVoice:   config.MelodicVoice,
		BassVoice:      config.BassVoice,
	}

	return &Pipeline{
		config:    config,
		decoder:   decoder,
		separator: separator,
		extractor: NewFeatureExtractor(),
		stems:     NewStemAnalyzer(logger),
		composer:  NewComposer(composerParams, preview, logger),
		logger:    logger,
	}
}

// Convert turns one audio file into a StrudelResult. Only a failed decode
// of the main mix propagates as an error; separation and preview failures
// degrade gracefully.
func (p *Pipeline) Convert(ctx context.Context, audioPath string) (*StrudelResult, error) {
	logger := p.logger.WithFields(logging.Fields{
		"component": "pipeline",
		"path":      audioPath,
	})

	sig, err := p.decoder.DecodeFile(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", audioPath, err)
	}

	logger.Debug("signal decoded", logging.Fields{
		"samples":     len(sig.Samples),
		"sample_rate": sig.SampleRate,
		"duration":    sig.Duration(),
	})

	features, err := p.extractor.Extract(sig)
	if err != nil {
		return nil, fmt.Errorf("extracting features: %w", err)
	}

	logger.Info("features extracted", logging.Fields{
		"tempo":  features.Tempo,
		"onsets": len(features.OnsetTimes),
		"frames": len(features.PitchContour),
	})

	var stemFeatures []StemFeatureSet
	if p.config.EnableStems && p.separator != nil {
		stemFeatures = p.stems.Analyze(p.separator.Separate(ctx, audioPath))
		logger.Info("stem enrichment finished", logging.Fields{
			"stems": len(stemFeatures),
		})
	}

	return p.composer.Compose(sig, features, stemFeatures), nil
}
