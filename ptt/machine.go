// Package ptt implements the push-to-talk cycle: hold to record,
// release to transcribe and deliver. A mutex-guarded three state
// machine makes repeated and overlapping key events safe.
package ptt

import (
	"context"
	"sync"
	"time"

	"voicekey/transcriber"
)

type State int

const (
	Idle State = iota
	Recording
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	}
	return "unknown"
}

// Recorder is the capture side of the cycle. Stop returns nil samples
// when the recording was too short or empty.
type Recorder interface {
	Start() error
	Stop() ([]int16, time.Duration)
}

// Sink receives the final transcript, typically clipboard plus paste.
type Sink interface {
	Deliver(text string) error
}

type SinkFunc func(text string) error

func (f SinkFunc) Deliver(text string) error { return f(text) }

// Hooks are optional observer callbacks. StateChange and Error may be
// invoked while the machine lock is held; they must not call back in.
type Hooks struct {
	StateChange func(State)
	Result      func(res transcriber.Result, elapsed time.Duration)
	Error       func(stage string, err error)
}

type Config struct {
	Recorder    Recorder
	Transcriber transcriber.Transcriber
	Sink        Sink
	Chime       func() // played after a transcript is delivered
	Hooks       Hooks
}

type Machine struct {
	mu    sync.Mutex
	state State
	cfg   Config
	done  chan struct{}
}

func NewMachine(cfg Config) *Machine {
	return &Machine{
		cfg:  cfg,
		done: make(chan struct{}, 1),
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnPress starts a recording. Presses in any state but Idle are
// dropped, so key repeat and presses during an in-flight
// transcription never disturb the current cycle.
func (m *Machine) OnPress() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Idle {
		return
	}

	if err := m.cfg.Recorder.Start(); err != nil {
		m.hookError("record", err)
		return
	}
	m.setState(Recording)

	// Open the connection to the STT backend while the user is still
	// talking, so the handshake does not add to the response time.
	if w, ok := m.cfg.Transcriber.(interface{ Warm() }); ok {
		go w.Warm()
	}
}

// OnRelease finalizes the recording and hands it to a background
// transcription job. Releases in any state but Recording are dropped.
func (m *Machine) OnRelease() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Recording {
		return
	}

	pcm, duration := m.cfg.Recorder.Stop()
	if pcm == nil {
		// Too short or no audio arrived. The cycle ends cleanly.
		m.setState(Idle)
		m.signalDone()
		return
	}

	m.setState(Processing)
	go m.process(pcm, duration)
}

func (m *Machine) process(pcm []int16, duration time.Duration) {
	defer func() {
		m.mu.Lock()
		m.setState(Idle)
		m.signalDone()
		m.mu.Unlock()
	}()

	start := time.Now()
	res, err := m.cfg.Transcriber.Transcribe(context.Background(), pcm)
	elapsed := time.Since(start)
	if err != nil {
		m.hookError("transcribe", err)
		return
	}

	if m.cfg.Hooks.Result != nil {
		m.cfg.Hooks.Result(res, elapsed)
	}
	if res.NoSpeech {
		return
	}

	if err := m.cfg.Sink.Deliver(res.Text); err != nil {
		m.hookError("deliver", err)
		return
	}
	if m.cfg.Chime != nil {
		m.cfg.Chime()
	}
}

// CycleDone signals once per completed press/release cycle, including
// cycles that ended without a transcript. Used by headless mode to
// wait for a result without polling.
func (m *Machine) CycleDone() <-chan struct{} {
	return m.done
}

func (m *Machine) signalDone() {
	select {
	case m.done <- struct{}{}:
	default:
	}
}

func (m *Machine) setState(s State) {
	m.state = s
	if m.cfg.Hooks.StateChange != nil {
		m.cfg.Hooks.StateChange(s)
	}
}

func (m *Machine) hookError(stage string, err error) {
	if m.cfg.Hooks.Error != nil {
		m.cfg.Hooks.Error(stage, err)
	}
}
