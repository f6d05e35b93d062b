package transcriber

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Fake returns a canned transcript (or error) and records how it was
// called. Used by the state machine tests and headless mode.
type Fake struct {
	Text  string
	Err   error
	Delay time.Duration

	mu      sync.Mutex
	calls   int
	lastPCM []int16
}

func NewFake(text string, err error) *Fake {
	return &Fake{Text: text, Err: err}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Transcribe(_ context.Context, pcm []int16) (Result, error) {
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}

	f.mu.Lock()
	f.calls++
	f.lastPCM = pcm
	f.mu.Unlock()

	if f.Err != nil {
		return Result{}, fmt.Errorf("fake transcriber error: %w", f.Err)
	}

	text := strings.TrimSpace(f.Text)
	return Result{
		Text:         text,
		NoSpeech:     text == "",
		AudioSeconds: float64(len(pcm)) / 16000,
	}, nil
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) LastPCM() []int16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPCM
}
