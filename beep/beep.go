// Package beep plays the short feedback chimes: record start, record
// end, transcript delivered, error. Playback failures are swallowed;
// a missing output device must never break dictation.
package beep

import "math"

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start chime: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// Stop chime: medium pitch, slightly longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Completion chime: two quick rising notes
	doneFreqLo = 880
	doneFreqHi = 1320
	doneVolume = 0.4
	doneDecay  = 45

	// Error chime: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

func generateTick(freq float64, duration float64, volume float64, decay float64) []int16 {
	n := int(float64(sampleRate) * duration)
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func generateDoubleBeep(freqA, freqB float64, beepDur, gapDur, volume, decay float64) []int16 {
	a := generateTick(freqA, beepDur, volume, decay)
	b := generateTick(freqB, beepDur, volume, decay)
	gap := make([]int16, int(float64(sampleRate)*gapDur))
	result := make([]int16, 0, len(a)+len(gap)+len(b))
	result = append(result, a...)
	result = append(result, gap...)
	result = append(result, b...)
	return result
}
