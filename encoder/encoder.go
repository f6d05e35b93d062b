// Package encoder serializes captured PCM into a self-describing audio
// container accepted by the transcription backends.
package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Encoder interface {
	// Encode serializes the full sample buffer into a container payload.
	Encode(samples []int16) ([]byte, error)
	// Ext is the file extension the backend expects for this container.
	Ext() string
}

func New(format string) (Encoder, error) {
	switch format {
	case "wav":
		return NewWav(), nil
	case "flac":
		return NewFlac(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (use wav or flac)", format)
	}
}
