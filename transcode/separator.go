package transcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acoustlab/strudelize/logging"
	"github.com/acoustlab/strudelize/strudel"
)

// stemLabels is the fixed 4-stem model output, in the order layers are
// emitted. Drums before bass so percussion sits directly under the melody.
var stemLabels = []string{"vocals", "drums", "bass", "other"}

// SeparatorConfig configures the spleeter-based stem separator
type SeparatorConfig struct {
	SpleeterPath string        `json:"spleeter_path"`
	WorkDir      string        `json:"work_dir"` // Empty means the system temp dir
	Timeout      time.Duration `json:"timeout"`
}

// DefaultSeparatorConfig returns default separation settings
func DefaultSeparatorConfig() *SeparatorConfig {
	return &SeparatorConfig{
		SpleeterPath: "spleeter",
		Timeout:      5 * time.Minute,
	}
}

// SpleeterSeparator splits a mix into vocals/drums/bass/other by shelling
// out to the spleeter CLI. It implements strudel.StemSeparator: every
// failure mode is folded into an unavailable result so the pipeline can
// degrade to main-mix-only analysis.
type SpleeterSeparator struct {
	config  *SeparatorConfig
	decoder *Decoder
	logger  logging.Logger
}

// NewSpleeterSeparator creates a separator that decodes stem files with the
// given decoder; a nil logger disables logging
func NewSpleeterSeparator(config *SeparatorConfig, decoder *Decoder, logger logging.Logger) *SpleeterSeparator {
	if config == nil {
		config = DefaultSeparatorConfig()
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &SpleeterSeparator{config: config, decoder: decoder, logger: logger}
}

// Separate runs 4-stem separation on the file at audioPath. A missing
// binary, a failed run, or an empty output directory all yield an
// unavailable result; a single stem that fails to decode is skipped.
func (s *SpleeterSeparator) Separate(ctx context.Context, audioPath string) *strudel.SeparationResult {
	if _, err := exec.LookPath(s.config.SpleeterPath); err != nil {
		return strudel.SeparationUnavailable("spleeter binary not found")
	}

	workDir := s.config.WorkDir
	if workDir == "" {
		dir, err := os.MkdirTemp("", "strudelize_stems_")
		if err != nil {
			return strudel.SeparationUnavailable(fmt.Sprintf("creating work dir: %v", err))
		}
		workDir = dir
	}
	outputDir := filepath.Join(workDir, uuid.NewString())

	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	args := []string{
		"separate",
		"-p", "spleeter:4stems",
		"-o", outputDir,
		audioPath,
	}

	s.logger.Debug("running stem separation", logging.Fields{
		"input":  audioPath,
		"output": outputDir,
	})

	cmd := exec.CommandContext(runCtx, s.config.SpleeterPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return strudel.SeparationUnavailable(fmt.Sprintf("spleeter failed: %v: %s",
			err, truncate(stderr.String(), 200)))
	}

	// Spleeter writes stems under <output>/<input basename without ext>/
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	stemDir := filepath.Join(outputDir, base)

	stems := make([]strudel.StemSignal, 0, len(stemLabels))
	for _, label := range stemLabels {
		stemPath := filepath.Join(stemDir, label+".wav")
		sig, err := s.decoder.DecodeFile(ctx, stemPath)
		if err != nil {
			s.logger.Warn("stem decode failed, skipping", logging.Fields{
				"stem":  label,
				"path":  stemPath,
				"error": err.Error(),
			})
			continue
		}
		stems = append(stems, strudel.StemSignal{Label: label, Signal: sig})
	}

	if len(stems) == 0 {
		return strudel.SeparationUnavailable("separation produced no decodable stems")
	}

	return &strudel.SeparationResult{Stems: stems}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
