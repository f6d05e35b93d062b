package encoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/youpy/go-wav"
)

func sine(freq float64, n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / SampleRate
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 16000)
	}
	return samples
}

func TestNew(t *testing.T) {
	for _, format := range []string{"wav", "flac"} {
		t.Run(format, func(t *testing.T) {
			enc, err := New(format)
			if err != nil {
				t.Fatalf("New(%q): %v", format, err)
			}
			if enc.Ext() != format {
				t.Errorf("Ext() = %q, want %q", enc.Ext(), format)
			}
		})
	}
	t.Run("unknown", func(t *testing.T) {
		if _, err := New("mp3"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestWavRoundTrip(t *testing.T) {
	samples := sine(440, BlockSize+BlockSize/2)
	data, err := NewWav().Encode(samples)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	r := wav.NewReader(bytes.NewReader(data))
	format, err := r.Format()
	if err != nil {
		t.Fatalf("reading wav format: %v", err)
	}
	if format.SampleRate != SampleRate {
		t.Errorf("SampleRate = %d, want %d", format.SampleRate, SampleRate)
	}
	if format.NumChannels != Channels {
		t.Errorf("NumChannels = %d, want %d", format.NumChannels, Channels)
	}
	if format.BitsPerSample != BitsPerSample {
		t.Errorf("BitsPerSample = %d, want %d", format.BitsPerSample, BitsPerSample)
	}

	decoded, err := r.ReadSamples(uint32(len(samples)))
	if err != nil {
		t.Fatalf("reading wav samples: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(samples))
	}
	for i, s := range decoded {
		if int16(s.Values[0]) != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, s.Values[0], samples[i])
		}
	}
}

func TestWavHeaderLength(t *testing.T) {
	samples := sine(440, 1024)
	data, err := NewWav().Encode(samples)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// RIFF header + fmt + data chunks around the raw payload.
	const headerSize = 44
	if len(data) != headerSize+len(samples)*2 {
		t.Errorf("len = %d, want %d", len(data), headerSize+len(samples)*2)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Error("payload does not start with RIFF")
	}
	dataLen := binary.LittleEndian.Uint32(data[40:44])
	if dataLen != uint32(len(samples)*2) {
		t.Errorf("data chunk length = %d, want %d", dataLen, len(samples)*2)
	}
}

func TestFlacEncode(t *testing.T) {
	samples := sine(440, 2*BlockSize+100)
	data, err := NewFlac().Encode(samples)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty flac payload")
	}
	if !bytes.HasPrefix(data, []byte("fLaC")) {
		t.Error("payload does not start with fLaC marker")
	}
}

func TestEncodeEmpty(t *testing.T) {
	for _, format := range []string{"wav", "flac"} {
		t.Run(format, func(t *testing.T) {
			enc, _ := New(format)
			if _, err := enc.Encode(nil); err != nil {
				t.Fatalf("Encode(nil): %v", err)
			}
		})
	}
}
