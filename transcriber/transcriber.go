// Package transcriber converts finalized PCM recordings into text via
// an interchangeable speech-to-text backend.
package transcriber

import (
	"context"
	"fmt"
)

// Result carries the transcript plus the upload stats shown in the TUI
// and written to the diagnostics log.
type Result struct {
	Text     string
	NoSpeech bool // backend returned no text; a valid outcome, not an error

	Metrics      *NetworkMetrics
	AudioSeconds float64
	RawKB        float64
	UploadKB     float64
	EncodeMs     float64
}

type Transcriber interface {
	Name() string
	// Transcribe serializes pcm (16 kHz mono s16le) into the configured
	// container, uploads it and returns the trimmed transcript. It blocks
	// until the backend responds; callers must not invoke it from an
	// event-dispatch path.
	Transcribe(ctx context.Context, pcm []int16) (Result, error)
}

type Options struct {
	Provider string // "groq", "openai" or "custom"
	Format   string // upload container: "wav" or "flac"

	GroqAPIKey   string
	OpenAIAPIKey string

	CustomBaseURL string
	CustomAPIKey  string
	CustomModel   string
}

func New(opts Options) (Transcriber, error) {
	switch opts.Provider {
	case "groq":
		return NewGroq(opts.GroqAPIKey, opts.Format)
	case "openai":
		return NewOpenAI(opts.OpenAIAPIKey, opts.Format)
	case "custom":
		return NewCustom(opts.CustomBaseURL, opts.CustomAPIKey, opts.CustomModel, opts.Format)
	default:
		return nil, fmt.Errorf("unknown provider %q (use groq, openai or custom)", opts.Provider)
	}
}
