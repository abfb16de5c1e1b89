package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/contentpipe/yttranscript/common"
	"github.com/contentpipe/yttranscript/model"
	"github.com/contentpipe/yttranscript/orchestrator"
)

// extraction holds one URL's outcome for the output stage.
type extraction struct {
	Metadata   model.VideoMetadata `json:"metadata"`
	Transcript string              `json:"transcript"`
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func newRootCommand() *cobra.Command {
	var (
		cfgFile    string
		logLevel   string
		jsonOutput bool
		workers    int
	)

	rootCmd := &cobra.Command{
		Use:   "yttranscript",
		Short: "Extract transcripts and metadata from YouTube videos",
		Long: `yttranscript acquires video transcripts through a chain of fallback
strategies: the transcript API, optional proxied variants, subtitle and audio
download with speech-to-text, and API-compatible mirror instances. Every URL
yields text and a metadata record even when all sources fail.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(logLevel)
			return loadConfig(cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default searches ./yttranscript.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	extractCmd := &cobra.Command{
		Use:   "extract [urls...]",
		Short: "Extract transcripts for one or more video URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), args, jsonOutput, workers)
		},
	}
	extractCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	extractCmd.Flags().IntVar(&workers, "workers", 2, "Concurrent extractions")

	rootCmd.AddCommand(extractCmd)
	return rootCmd
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// loadConfig layers defaults, an optional config file and YTT_-prefixed
// environment variables.
func loadConfig(cfgFile string) error {
	viper.SetEnvPrefix("ytt")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("yttranscript")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn().Err(err).Msg("Failed to read config file")
		}
	} else {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("Loaded config file")
	}
	return nil
}

// buildConfig merges viper state over the defaults.
func buildConfig() common.Config {
	cfg := common.DefaultConfig()
	if v := viper.GetStringSlice("mirror_instances"); len(v) > 0 {
		cfg.MirrorInstances = v
	}
	if v := viper.GetStringSlice("user_agents"); len(v) > 0 {
		cfg.UserAgents = v
	}
	if v := viper.GetStringSlice("proxy_urls"); len(v) > 0 {
		cfg.ProxyURLs = v
	}
	if v := viper.GetString("youtube_api_key"); v != "" {
		cfg.YouTubeAPIKey = v
	}
	if v := viper.GetString("openai_api_key"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := viper.GetString("whisper_binary"); v != "" {
		cfg.WhisperBinary = v
	}
	if v := viper.GetString("whisper_model"); v != "" {
		cfg.WhisperModel = v
	}
	if v := viper.GetString("temp_dir"); v != "" {
		cfg.TempDir = v
	}
	if v := viper.GetDuration("mirror_timeout"); v > 0 {
		cfg.MirrorTimeout = v
	}
	if v := viper.GetDuration("extract_timeout"); v > 0 {
		cfg.ExtractTimeout = v
	}
	return cfg
}

func runExtract(ctx context.Context, urls []string, jsonOutput bool, workers int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := buildConfig()
	extractor := orchestrator.NewFromConfig(cfg)

	if workers < 1 {
		workers = 1
	}

	results := make([]extraction, len(urls))
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, url := range urls {
		eg.Go(func() error {
			log.Info().Str("url", url).Msg("Starting extraction")
			text, md := extractor.Process(ctx, url)
			results[i] = extraction{Metadata: md, Transcript: text}
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("extraction interrupted: %w", err)
	}

	return writeResults(os.Stdout, results, jsonOutput)
}

func writeResults(w *os.File, results []extraction, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w, strings.Repeat("-", 72))
		}
		fmt.Fprintf(w, "URL:    %s\n", r.Metadata.SourceURL)
		fmt.Fprintf(w, "Title:  %s\n", r.Metadata.Title)
		if r.Metadata.Author != "" {
			fmt.Fprintf(w, "Author: %s\n", r.Metadata.Author)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Transcript)
	}
	return nil
}
