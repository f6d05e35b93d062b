package encoder

import (
	"bytes"
	"fmt"

	"github.com/youpy/go-wav"
)

type WavEncoder struct{}

func NewWav() *WavEncoder {
	return &WavEncoder{}
}

func (e *WavEncoder) Ext() string { return "wav" }

func (e *WavEncoder) Encode(samples []int16) ([]byte, error) {
	var buf bytes.Buffer
	w := wav.NewWriter(&buf, uint32(len(samples)), Channels, SampleRate, BitsPerSample)

	// WriteSamples allocates per call; feed it in blocks rather than
	// one giant slice to keep the working set bounded.
	block := make([]wav.Sample, 0, BlockSize)
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		block = block[:0]
		for _, s := range samples[i:end] {
			block = append(block, wav.Sample{Values: [2]int{int(s), 0}})
		}
		if err := w.WriteSamples(block); err != nil {
			return nil, fmt.Errorf("writing wav samples: %w", err)
		}
	}

	return buf.Bytes(), nil
}
