package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/acoustlab/strudelize/logging"
	"github.com/acoustlab/strudelize/strudel"
)

// ErrDecode marks a corrupt or unreadable input signal. It is the one
// fatal error class of the conversion pipeline.
var ErrDecode = errors.New("audio decode failed")

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 44100,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          60 * time.Second,
	}
}

// Decoder decodes audio files to mono float64 PCM using FFmpeg. It
// implements strudel.SignalDecoder.
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// probeInfo holds detected audio properties from FFprobe
type probeInfo struct {
	SampleRate int
	Channels   int
	Codec      string
	Duration   float64
}

// DecodeFile probes and decodes an audio file to a mono signal at the
// target sample rate. Any probe or decode failure wraps ErrDecode.
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (strudel.AudioSignal, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"filename":  filename,
	})

	info, err := d.probeFile(ctx, filename)
	if err != nil {
		logger.Error(err, "failed to probe audio file")
		return strudel.AudioSignal{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	logger.Debug("audio metadata detected", logging.Fields{
		"input_sample_rate": info.SampleRate,
		"input_channels":    info.Channels,
		"input_codec":       info.Codec,
		"input_duration":    info.Duration,
	})

	args := []string{
		"-v", "error",
		"-i", filename,
		"-vn",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
		"pipe:1",
	}

	decodeCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(decodeCtx, d.config.FFmpegPath, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			logger.Error(err, "ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
			return strudel.AudioSignal{}, fmt.Errorf("%w: ffmpeg: %v, stderr: %s", ErrDecode, err, string(exitError.Stderr))
		}
		return strudel.AudioSignal{}, fmt.Errorf("%w: ffmpeg: %v", ErrDecode, err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return strudel.AudioSignal{}, fmt.Errorf("%w: no audio samples decoded", ErrDecode)
	}

	logger.Debug("decode completed", logging.Fields{
		"samples":     len(samples),
		"sample_rate": d.config.TargetSampleRate,
	})

	return strudel.AudioSignal{
		Samples:    samples,
		SampleRate: d.config.TargetSampleRate,
	}, nil
}

// probeFile uses ffprobe to read the first audio stream's properties
func (d *Decoder) probeFile(ctx context.Context, filename string) (*probeInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		filename,
	}

	probeCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, d.config.FFprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(output)
}

// parseProbeOutput parses ffprobe JSON into a probeInfo
func parseProbeOutput(jsonData []byte) (*probeInfo, error) {
	var probe struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			Duration   string `json:"duration"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}
	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil {
		sampleRate = 44100
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil {
		duration = 0
	}

	return &probeInfo{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
	}, nil
}

// withTimeout derives a context honoring the configured decode timeout
func (d *Decoder) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.config.Timeout > 0 {
		return context.WithTimeout(ctx, d.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// bytesToFloat64 converts raw little-endian float64 bytes to samples
func bytesToFloat64(data []byte) []float64 {
	if len(data)%8 != 0 {
		data = data[:len(data)-(len(data)%8)]
	}
	if len(data) == 0 {
		return nil
	}

	sampleCount := len(data) / 8
	samples := make([]float64, sampleCount)
	for i := range sampleCount {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}

// float64ToBytes converts samples to raw little-endian float64 bytes
func float64ToBytes(samples []float64) []byte {
	data := make([]byte, len(samples)*8)
	for i, s := range samples {
		binary.LittleEndian.PutUint64(data[i*8:i*8+8], math.Float64bits(s))
	}
	return data
}
