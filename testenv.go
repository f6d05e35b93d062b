package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"voicekey/audio"
	"voicekey/beep"
	"voicekey/encoder"
	"voicekey/hotkey"
	"voicekey/log"
	"voicekey/ptt"
	"voicekey/transcriber"
)

// runTestMode drives the state machine from stdin commands instead of
// real key events, with a WAV file standing in for the microphone.
// Commands: KEYDOWN, KEYUP, WAIT, SLEEP <ms>, QUIT.
func runTestMode(wavPath string, stt transcriber.Transcriber) {
	beep.Disable()

	fakeCtx, err := audio.NewFakeContext(wavPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}

	recorder := audio.NewRecorder(fakeCtx, nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	// The fake capture replays the file faster than real time, so the
	// wall-clock minimum would reject every recording.
	recorder.MinDuration = 0

	machine := ptt.NewMachine(ptt.Config{
		Recorder:    recorder,
		Transcriber: stt,
		Sink: ptt.SinkFunc(func(text string) error {
			fmt.Println(text)
			return nil
		}),
		Hooks: ptt.Hooks{
			Result: func(res transcriber.Result, _ time.Duration) {
				if res.NoSpeech {
					log.Info("no_speech")
					return
				}
				statsMu.Lock()
				cycleCount++
				statsMu.Unlock()
				log.TranscriptionText(res.Text)
			},
			Error: func(stage string, err error) {
				log.Errorf("%s error: %v", stage, err)
				fmt.Fprintf(os.Stderr, "Error (%s): %v\n", stage, err)
			},
		},
	})

	hk := hotkey.NewFake()

	// Stdin driver in background -- sends key events, handles WAIT/SLEEP/QUIT
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			cmd := strings.TrimSpace(scanner.Text())
			switch cmd {
			case "KEYDOWN":
				hk.SimKeydown()
			case "KEYUP":
				hk.SimKeyup()
			case "WAIT":
				<-machine.CycleDone()
			case "QUIT":
				statsMu.Lock()
				n := cycleCount
				statsMu.Unlock()
				log.SessionEnd(n)
				os.Exit(0)
			default:
				if strings.HasPrefix(cmd, "SLEEP ") {
					if ms, err := strconv.Atoi(cmd[6:]); err == nil {
						time.Sleep(time.Duration(ms) * time.Millisecond)
					}
				}
			}
		}
		os.Exit(0)
	}()

	// Event loop -- same pattern as run()
	for {
		select {
		case <-hk.Keydown():
			machine.OnPress()
		case <-hk.Keyup():
			machine.OnRelease()
		}
	}
}
