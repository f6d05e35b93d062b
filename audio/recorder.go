package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
)

// MinDuration is the shortest recording worth transcribing. Anything
// below this is treated as trigger noise and discarded.
const MinDuration = 300 * time.Millisecond

// Recorder owns one capture stream at a time and buffers the PCM it
// delivers. Start and Stop are called from the coordinator; the data
// callback runs on the backend's capture thread, so the chunk list is
// guarded by a mutex. A stopped flag dropped under the same mutex
// guarantees no chunk is appended after Stop has flattened the buffer.
type Recorder struct {
	ctx    Context
	device *DeviceInfo
	config CaptureConfig

	// MinDuration below which Stop discards the recording.
	MinDuration time.Duration
	// OnLevel, if set, receives the RMS level of each captured chunk.
	OnLevel func(rms float64)

	mu      sync.Mutex
	chunks  [][]int16
	frames  uint64
	stopped bool

	capture CaptureDevice
	started time.Time
}

func NewRecorder(ctx Context, device *DeviceInfo, config CaptureConfig) *Recorder {
	return &Recorder{
		ctx:         ctx,
		device:      device,
		config:      config,
		MinDuration: MinDuration,
	}
}

func (r *Recorder) DeviceName() string {
	if r.device != nil {
		return r.device.Name
	}
	return "system default"
}

// Start opens the capture stream and begins buffering. On failure the
// device handle is released and the recorder stays usable.
func (r *Recorder) Start() error {
	capture, err := r.ctx.NewCapture(r.device, r.config)
	if err != nil {
		return fmt.Errorf("opening capture device: %w", err)
	}

	r.mu.Lock()
	r.chunks = nil
	r.frames = 0
	r.stopped = false
	r.mu.Unlock()

	capture.SetCallback(func(data []byte, frameCount uint32) {
		if len(data) < 2 {
			return
		}
		// The backend may reuse the buffer once we return, so the
		// chunk must be copied out here.
		chunk := make([]int16, len(data)/2)
		for i := range chunk {
			chunk[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}

		r.mu.Lock()
		if r.stopped {
			r.mu.Unlock()
			return
		}
		r.chunks = append(r.chunks, chunk)
		r.frames += uint64(frameCount)
		r.mu.Unlock()

		if r.OnLevel != nil {
			r.OnLevel(rms(chunk))
		}
	})

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		return fmt.Errorf("starting capture stream: %w", err)
	}

	r.capture = capture
	r.started = time.Now()
	return nil
}

// Stop halts the stream, releases the device and returns the buffered
// samples with the elapsed recording time. A nil buffer means the
// recording was too short or captured nothing.
func (r *Recorder) Stop() ([]int16, time.Duration) {
	duration := time.Since(r.started)

	if r.capture != nil {
		r.capture.Stop()
		r.capture.ClearCallback()
		r.capture.Close()
		r.capture = nil
	}

	r.mu.Lock()
	r.stopped = true
	chunks := r.chunks
	frames := r.frames
	r.chunks = nil
	r.mu.Unlock()

	if duration < r.MinDuration || frames == 0 {
		return nil, duration
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	buf := make([]int16, 0, total)
	for _, c := range chunks {
		buf = append(buf, c...)
	}
	return buf, duration
}

func rms(chunk []int16) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range chunk {
		normalized := float64(s) / 32768.0
		sumSquares += normalized * normalized
	}
	return math.Sqrt(sumSquares / float64(len(chunk)))
}
