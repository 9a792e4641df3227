// Package main is the entry point for the strudelize CLI
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acoustlab/strudelize/api"
	"github.com/acoustlab/strudelize/logging"
	"github.com/acoustlab/strudelize/strudel"
	"github.com/acoustlab/strudelize/transcode"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	noStems    bool
	gridSize   int
	serverPort int
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "strudelize",
	Short: "Turn audio recordings into Strudel pattern code",
	Long: `strudelize analyzes an audio recording (tempo, onsets, pitch, key)
and emits a playable Strudel pattern that approximates it.

Examples:
  strudelize convert track.wav
  strudelize convert track.mp3 -o pattern.js --grid 32
  strudelize convert https://example.com/watch?v=abc --no-stems
  strudelize serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <file|url>",
	Short: "Convert an audio file or URL to Strudel code",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write pattern code to this file instead of stdout")
	convertCmd.Flags().BoolVar(&noStems, "no-stems", false, "Skip stem separation")
	convertCmd.Flags().IntVar(&gridSize, "grid", strudel.DefaultGridSize, "Rhythm grid resolution in steps per bar")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
}

func buildPipeline(logger logging.Logger) *strudel.Pipeline {
	decoder := transcode.NewDecoder(transcode.DefaultDecoderConfig())
	separator := transcode.NewSpleeterSeparator(transcode.DefaultSeparatorConfig(), decoder, logger)
	preview := transcode.NewPreviewExporter(transcode.DefaultPreviewConfig())

	config := strudel.DefaultPipelineConfig()
	config.EnableStems = !noStems
	if gridSize > 0 {
		config.GridSize = gridSize
	}

	return strudel.NewPipeline(config, decoder, separator, preview, logger)
}

func setupLogger() logging.Logger {
	logger := logging.NewDefaultLogger()
	if verbose {
		logger.SetLevel(logging.DebugLevel)
	}
	return logger
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	logger := setupLogger()
	ctx := context.Background()

	audioPath := input
	if isURL(input) {
		downloader := transcode.NewDownloader(transcode.DefaultDownloaderConfig(), logger)
		path, err := downloader.Download(ctx, input)
		if err != nil {
			return fmt.Errorf("downloading %s: %w", input, err)
		}
		audioPath = path
	} else if !transcode.IsSupportedFile(input) {
		return fmt.Errorf("unsupported format %q, expected one of: %s",
			input, strings.Join(transcode.SupportedExtensions(), " "))
	}

	result, err := buildPipeline(logger).Convert(ctx, audioPath)
	if err != nil {
		if errors.Is(err, transcode.ErrDecode) {
			return fmt.Errorf("could not decode %s: %w", audioPath, err)
		}
		return err
	}

	fmt.Fprintf(os.Stderr, "tempo: %.1f bpm, key: %s\n", result.Tempo, result.Key)
	if result.PreviewPath != "" {
		fmt.Fprintf(os.Stderr, "preview: %s\n", result.PreviewPath)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(result.Code), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outputFile, err)
		}
		fmt.Fprintf(os.Stderr, "pattern written to %s\n", outputFile)
		return nil
	}

	fmt.Println(result.Code)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger()
	logging.SetGlobalLogger(logger)

	config := api.DefaultServerConfig()
	config.Port = serverPort

	downloader := transcode.NewDownloader(transcode.DefaultDownloaderConfig(), logger)
	server := api.NewServer(config, buildPipeline(logger), downloader, logger)
	return server.Run()
}
