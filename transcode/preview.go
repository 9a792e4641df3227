package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/acoustlab/strudelize/logging"
	"github.com/acoustlab/strudelize/strudel"
)

// PreviewConfig configures preview clip export
type PreviewConfig struct {
	FFmpegPath string        `json:"ffmpeg_path"`
	OutputDir  string        `json:"output_dir"` // Empty means the system temp dir
	Timeout    time.Duration `json:"timeout"`
}

// DefaultPreviewConfig returns default preview settings
func DefaultPreviewConfig() *PreviewConfig {
	return &PreviewConfig{
		FFmpegPath: "ffmpeg",
		Timeout:    30 * time.Second,
	}
}

// PreviewExporter writes a bounded prefix of a signal to a wav file by
// piping raw PCM through ffmpeg. It implements strudel.PreviewExporter.
type PreviewExporter struct {
	config *PreviewConfig
}

// NewPreviewExporter creates a preview exporter
func NewPreviewExporter(config *PreviewConfig) *PreviewExporter {
	if config == nil {
		config = DefaultPreviewConfig()
	}
	return &PreviewExporter{config: config}
}

// Export writes at most maxSeconds of the signal prefix to a uniquely named
// wav file and returns its path
func (p *PreviewExporter) Export(sig strudel.AudioSignal, maxSeconds float64) (string, error) {
	if sig.Empty() || sig.SampleRate <= 0 {
		return "", fmt.Errorf("empty signal")
	}

	samples := sig.Samples
	if maxSamples := int(maxSeconds * float64(sig.SampleRate)); maxSamples > 0 && len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}

	outputDir := p.config.OutputDir
	if outputDir == "" {
		dir, err := os.MkdirTemp("", "strudelize_preview_")
		if err != nil {
			return "", fmt.Errorf("creating preview dir: %w", err)
		}
		outputDir = dir
	}
	clipPath := filepath.Join(outputDir, uuid.NewString()+".wav")

	args := []string{
		"-v", "error",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(sig.SampleRate),
		"-i", "pipe:0",
		clipPath,
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.config.FFmpegPath, args...)
	cmd.Stdin = bytes.NewReader(float64ToBytes(samples))

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg preview export failed: %w", err)
	}

	logging.Debug("preview clip written", logging.Fields{
		"path":    clipPath,
		"seconds": float64(len(samples)) / float64(sig.SampleRate),
	})

	return clipPath, nil
}
