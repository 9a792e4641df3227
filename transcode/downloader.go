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
)

// DownloaderConfig configures remote audio fetching
type DownloaderConfig struct {
	YtDlpPath string        `json:"yt_dlp_path"`
	WorkDir   string        `json:"work_dir"` // Empty means the system temp dir
	Timeout   time.Duration `json:"timeout"`
}

// DefaultDownloaderConfig returns default download settings
func DefaultDownloaderConfig() *DownloaderConfig {
	return &DownloaderConfig{
		YtDlpPath: "yt-dlp",
		Timeout:   10 * time.Minute,
	}
}

// Downloader fetches remote audio with yt-dlp, extracting a wav track that
// the decoder can consume directly
type Downloader struct {
	config *DownloaderConfig
	logger logging.Logger
}

// NewDownloader creates a downloader; a nil logger disables logging
func NewDownloader(config *DownloaderConfig, logger logging.Logger) *Downloader {
	if config == nil {
		config = DefaultDownloaderConfig()
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Downloader{config: config, logger: logger}
}

// Download fetches the audio track behind url into a uniquely named
// directory and returns the path of the extracted wav file. The caller owns
// cleanup of the returned file's directory.
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("empty url")
	}

	workDir := d.config.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	downloadDir := filepath.Join(workDir, "strudelize_dl_"+uuid.NewString())
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}

	outputTemplate := filepath.Join(downloadDir, "audio.%(ext)s")

	runCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	args := []string{
		"-x",
		"--audio-format", "wav",
		"--no-playlist",
		"-o", outputTemplate,
		url,
	}

	d.logger.Info("downloading remote audio", logging.Fields{
		"url": url,
		"dir": downloadDir,
	})

	cmd := exec.CommandContext(runCtx, d.config.YtDlpPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, truncate(stderr.String(), 200))
	}

	audioPath := filepath.Join(downloadDir, "audio.wav")
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("downloaded audio not found: %w", err)
	}

	return audioPath, nil
}
