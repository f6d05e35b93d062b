//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var (
	startSamples []int16
	endSamples   []int16
	doneSamples  []int16
	errorSamples []int16
	soundOnce    sync.Once
)

func initSound() {
	startSamples = generateTick(startFreq, 0.05, startVolume, startDecay)
	endSamples = generateTick(endFreq, 0.07, endVolume, endDecay)
	doneSamples = generateDoubleBeep(doneFreqLo, doneFreqHi, 0.06, 0.02, doneVolume, doneDecay)
	errorSamples = generateDoubleBeep(errorFreq, errorFreq, 0.08, 0.05, errorVolume, errorDecay)
}

func playSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}

func play(samples []int16) {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go playSamples(samples)
}

func Init()      { soundOnce.Do(initSound) }
func PlayStart() { play(startSamples) }
func PlayEnd()   { play(endSamples) }
func PlayDone()  { play(doneSamples) }
func PlayError() { play(errorSamples) }
