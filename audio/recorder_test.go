package audio

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"
)

// stubCapture lets tests drive the data callback by hand.
type stubCapture struct {
	mu       sync.Mutex
	cb       DataCallback
	startErr error
	started  bool
	stopped  bool
	closed   bool
}

func (s *stubCapture) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *stubCapture) Stop()  { s.stopped = true }
func (s *stubCapture) Close() { s.closed = true }

func (s *stubCapture) SetCallback(cb DataCallback) {
	s.mu.Lock()
	s.cb = cb
	s.mu.Unlock()
}

func (s *stubCapture) ClearCallback() {
	s.mu.Lock()
	s.cb = nil
	s.mu.Unlock()
}

func (s *stubCapture) DeviceName() string { return "stub" }

func (s *stubCapture) feed(samples []int16) {
	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()
	if cb == nil {
		return
	}
	data := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	cb(data, uint32(len(samples)))
}

type stubContext struct {
	capture *stubCapture
	err     error
}

func (s *stubContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (s *stubContext) Close()                         {}

func (s *stubContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.capture, nil
}

func newTestRecorder(t *testing.T) (*Recorder, *stubCapture) {
	t.Helper()
	capture := &stubCapture{}
	r := NewRecorder(&stubContext{capture: capture}, nil, CaptureConfig{SampleRate: 16000, Channels: 1})
	return r, capture
}

func TestStopTooShort(t *testing.T) {
	r, capture := newTestRecorder(t)
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	capture.feed(make([]int16, 1024))

	buf, duration := r.Stop()
	if buf != nil {
		t.Errorf("expected nil buffer for short recording, got %d samples", len(buf))
	}
	if duration >= MinDuration {
		t.Errorf("duration = %v, expected < %v", duration, MinDuration)
	}
	if !capture.stopped || !capture.closed {
		t.Error("capture device not released")
	}
}

func TestStopNoFrames(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.MinDuration = 0
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	buf, _ := r.Stop()
	if buf != nil {
		t.Errorf("expected nil buffer with zero captured frames, got %d samples", len(buf))
	}
}

func TestStopConcatenatesChunks(t *testing.T) {
	r, capture := newTestRecorder(t)
	r.MinDuration = 10 * time.Millisecond
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 5; i++ {
		chunk := make([]int16, 1024)
		for j := range chunk {
			chunk[j] = int16(i*1024 + j)
		}
		capture.feed(chunk)
	}

	time.Sleep(20 * time.Millisecond)
	buf, duration := r.Stop()
	if buf == nil {
		t.Fatal("expected buffer, got nil")
	}
	if len(buf) != 5*1024 {
		t.Fatalf("len = %d, want %d", len(buf), 5*1024)
	}
	if duration < 10*time.Millisecond {
		t.Errorf("duration = %v, want >= 10ms", duration)
	}
	for i, v := range buf {
		if v != int16(i) {
			t.Fatalf("buf[%d] = %d, want %d (chunk order broken)", i, v, int16(i))
		}
	}
}

func TestChunkAfterStopDropped(t *testing.T) {
	r, capture := newTestRecorder(t)
	r.MinDuration = 0
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	capture.feed(make([]int16, 1024))
	buf, _ := r.Stop()
	if len(buf) != 1024 {
		t.Fatalf("len = %d, want 1024", len(buf))
	}

	// A straggler callback racing the stream close must not land
	// anywhere after the buffer was flattened.
	capture.feed(make([]int16, 1024))

	r.mu.Lock()
	chunks := len(r.chunks)
	r.mu.Unlock()
	if chunks != 0 {
		t.Errorf("chunk appended after Stop")
	}
}

func TestStartFailureReleasesDevice(t *testing.T) {
	capture := &stubCapture{startErr: errors.New("device busy")}
	r := NewRecorder(&stubContext{capture: capture}, nil, CaptureConfig{})
	if err := r.Start(); err == nil {
		t.Fatal("expected error")
	}
	if !capture.closed {
		t.Error("capture device leaked after failed Start")
	}
}

func TestStartDeviceUnavailable(t *testing.T) {
	r := NewRecorder(&stubContext{err: errors.New("no such device")}, nil, CaptureConfig{})
	if err := r.Start(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRestartClearsBuffer(t *testing.T) {
	r, capture := newTestRecorder(t)
	r.MinDuration = 0
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	capture.feed(make([]int16, 512))
	r.Stop()

	if err := r.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	capture.feed(make([]int16, 256))
	buf, _ := r.Stop()
	if len(buf) != 256 {
		t.Errorf("len = %d, want 256 (stale chunks from previous session)", len(buf))
	}
}

func TestOnLevel(t *testing.T) {
	r, capture := newTestRecorder(t)
	var mu sync.Mutex
	var levels []float64
	r.OnLevel = func(v float64) {
		mu.Lock()
		levels = append(levels, v)
		mu.Unlock()
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	loud := make([]int16, 1024)
	for i := range loud {
		loud[i] = 16000
	}
	capture.feed(loud)
	r.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(levels) != 1 {
		t.Fatalf("got %d level callbacks, want 1", len(levels))
	}
	if levels[0] < 0.4 || levels[0] > 0.6 {
		t.Errorf("rms = %f, want ~0.49", levels[0])
	}
}
