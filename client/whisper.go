package client

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/common"
)

// LocalWhisper shells out to a whisper CLI installed on the host.
type LocalWhisper struct {
	binary string
	model  string
}

// NewLocalWhisper builds the local speech-to-text backend. An empty binary
// name disables it.
func NewLocalWhisper(binary, model string) *LocalWhisper {
	if model == "" {
		model = "base"
	}
	return &LocalWhisper{binary: binary, model: model}
}

// Available reports whether the whisper binary is on PATH.
func (w *LocalWhisper) Available() bool {
	if w.binary == "" {
		return false
	}
	_, err := exec.LookPath(w.binary)
	return err == nil
}

// Transcribe runs the whisper CLI on audioPath and reads back the text file
// it produces next to the audio.
func (w *LocalWhisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outDir := filepath.Dir(audioPath)
	cmd := exec.CommandContext(ctx, w.binary,
		"--model", w.model,
		"--output_format", "txt",
		"--output_dir", outDir,
		audioPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("whisper failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	textPath := filepath.Join(outDir, base+".txt")
	defer common.RemoveQuietly(textPath)

	text, err := os.ReadFile(textPath)
	if err != nil {
		return "", fmt.Errorf("whisper output missing: %w", err)
	}
	return strings.TrimSpace(string(text)), nil
}

// OpenAIWhisper transcribes through the hosted whisper-1 model. Used when no
// local binary is installed and an API key is configured.
type OpenAIWhisper struct {
	apiKey string
}

func NewOpenAIWhisper(apiKey string) *OpenAIWhisper {
	return &OpenAIWhisper{apiKey: apiKey}
}

// Available reports whether a credential is configured.
func (w *OpenAIWhisper) Available() bool {
	return w.apiKey != ""
}

func (w *OpenAIWhisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if w.apiKey == "" {
		return "", fmt.Errorf("speech-to-text credential not configured")
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	cl := openai.NewClient(option.WithAPIKey(w.apiKey))
	resp, err := cl.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  f,
	})
	if err != nil {
		return "", fmt.Errorf("remote transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// FallbackTranscriber tries each backend in order and returns the first
// answer. A backend that is not available is skipped without counting as a
// failure.
type FallbackTranscriber struct {
	backends []Transcriber
}

func NewFallbackTranscriber(backends ...Transcriber) *FallbackTranscriber {
	return &FallbackTranscriber{backends: backends}
}

// Available reports whether any backend can run.
func (f *FallbackTranscriber) Available() bool {
	for _, b := range f.backends {
		if b.Available() {
			return true
		}
	}
	return false
}

func (f *FallbackTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	var lastErr error
	for _, b := range f.backends {
		if !b.Available() {
			continue
		}
		text, err := b.Transcribe(ctx, audioPath)
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			log.Warn().Err(err).Msg("Transcription backend failed, trying next")
			lastErr = err
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("no speech-to-text backend available")
}
