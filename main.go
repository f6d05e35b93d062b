package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"voicekey/audio"
	"voicekey/beep"
	"voicekey/clipboard"
	"voicekey/config"
	"voicekey/doctor"
	"voicekey/encoder"
	"voicekey/hotkey"
	"voicekey/log"
	"voicekey/ptt"
	"voicekey/shutdown"
	"voicekey/transcriber"
)

var version = "dev"

// Delay between copying the transcript and sending the paste
// keystroke, so the clipboard owner has picked up the new contents.
const clipboardSettle = 100 * time.Millisecond

// How long the transcript stays on the clipboard before the previous
// contents are restored.
const clipboardRestore = 600 * time.Millisecond

var (
	statsMu      sync.Mutex
	cycleCount   int
	activeCfg    config.Config
	shutdownOnce sync.Once
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		statsMu.Lock()
		n := cycleCount
		statsMu.Unlock()
		if n > 0 {
			log.SessionEnd(n)
		}
		log.Close()
		if p := tuiGet(); p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func modeLineText(cfg config.Config) string {
	return fmt.Sprintf("[%s | %s] key: %s", cfg.Format, cfg.Provider, cfg.PTTKey)
}

func run() {
	setupFlag := flag.Bool("setup", false, "Select microphone device and save the choice")
	deviceFlag := flag.String("device", "", "Use named microphone device (substring match)")
	providerFlag := flag.String("provider", "", "Transcription provider: groq, openai or custom")
	keyFlag := flag.String("key", "", "Push-to-talk key binding (e.g. ctrl-shift-space, f18, rightalt)")
	formatFlag := flag.String("format", "", "Upload format: wav or flac")
	autoPasteFlag := flag.Bool("autopaste", true, "Paste into the focused window after transcription")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run environment checks and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *versionFlag {
		fmt.Printf("voicekey %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *providerFlag != "" {
		cfg.Provider = *providerFlag
	}
	if *keyFlag != "" {
		cfg.PTTKey = *keyFlag
	}
	if *formatFlag != "" {
		cfg.Format = *formatFlag
	}
	if *deviceFlag != "" {
		cfg.Device = *deviceFlag
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "autopaste" {
			cfg.AutoPaste = autoPasteFlag
		}
	})

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}

	if *setupFlag {
		if err := runSetup(&cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	activeCfg = cfg

	stt, err := transcriber.New(transcriber.Options{
		Provider:      cfg.Provider,
		Format:        cfg.Format,
		GroqAPIKey:    cfg.GroqAPIKey,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		CustomBaseURL: cfg.CustomBaseURL,
		CustomAPIKey:  cfg.CustomAPIKey,
		CustomModel:   cfg.CustomModel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	} else {
		log.SessionStart(cfg.Provider, cfg.Format, cfg.PTTKey)
	}

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: voicekey -test <wav-file>")
			os.Exit(1)
		}
		runTestMode(args[0], stt)
		return
	}

	autoPaste := cfg.AutoPaste != nil && *cfg.AutoPaste
	if autoPaste {
		if err := clipboard.Init(); err != nil {
			fmt.Printf("Warning: paste init failed: %v\n", err)
			fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
	}

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	selectedDevice, err := resolveDevice(ctx, cfg.Device)
	if err != nil {
		log.Errorf("device resolve error: %v", err)
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	recorder := audio.NewRecorder(ctx, selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	recorder.OnLevel = func(level float64) {
		tuiSend(AudioLevelMsg{Level: level})
	}

	machine := ptt.NewMachine(ptt.Config{
		Recorder:    recorder,
		Transcriber: stt,
		Sink:        newSink(autoPaste),
		Chime:       beep.PlayDone,
		Hooks: ptt.Hooks{
			StateChange: onStateChange,
			Result:      onResult,
			Error:       onPipelineError,
		},
	})

	// Start TUI
	if !*tuiFlag {
		tuiMarkReady()
	} else {
		p := NewTUIProgram()
		tuiSet(p)
		go func() {
			if _, err := p.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()
		<-tuiReady
	}

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		gracefulShutdown()
	}()

	go beep.Init()

	hk, err := hotkey.New(cfg.PTTKey)
	if err != nil {
		log.Errorf("hotkey init error: %v", err)
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	tuiSend(ModeLineMsg{Text: modeLineText(cfg)})
	tuiSend(DeviceLineMsg{Text: deviceLineText(selectedDevice)})
	tuiSend(BluetoothWarningMsg{IsBT: selectedDevice != nil && audio.IsBluetooth(selectedDevice.Name)})
	log.Info("device: " + recorder.DeviceName())

	for {
		select {
		case <-hk.Keydown():
			log.Info("hotkey_down")
			machine.OnPress()
		case <-hk.Keyup():
			log.Info("hotkey_up")
			machine.OnRelease()
		}
	}
}

// resolveDevice picks the capture device: an explicit name wins, then
// the first non-virtual device, then the OS default.
func resolveDevice(ctx audio.Context, name string) (*audio.DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("cannot list devices: %w", err)
	}
	if name != "" {
		for i := range devices {
			if strings.Contains(strings.ToLower(devices[i].Name), strings.ToLower(name)) {
				return &devices[i], nil
			}
		}
		log.Warnf("device %q not found, falling back to default", name)
	}
	return audio.Preferred(devices), nil
}

func runSetup(cfg *config.Config) error {
	ctx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer ctx.Close()

	dev, err := audio.SelectDevice(ctx)
	if err != nil {
		return err
	}
	if dev != nil {
		cfg.Device = dev.Name
		fmt.Printf("Using device: %s\n", dev.Name)
	} else {
		cfg.Device = ""
		fmt.Println("Using system default device")
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// newSink copies the transcript to the clipboard, optionally sends the
// paste keystroke, and restores the previous clipboard contents after
// a short delay.
func newSink(autoPaste bool) ptt.Sink {
	return ptt.SinkFunc(func(text string) error {
		var prev string
		if autoPaste {
			prev, _ = clipboard.Read()
		}
		if err := clipboard.Copy(text); err != nil {
			return fmt.Errorf("clipboard copy: %w", err)
		}
		if !autoPaste {
			return nil
		}
		time.Sleep(clipboardSettle)
		if err := clipboard.Paste(); err != nil {
			return fmt.Errorf("paste: %w", err)
		}
		if prev != "" && prev != text {
			go func() {
				time.Sleep(clipboardRestore)
				clipboard.Copy(prev)
			}()
		}
		return nil
	})
}

func onStateChange(s ptt.State) {
	tuiSend(StateMsg{State: s})
	switch s {
	case ptt.Recording:
		go beep.PlayStart()
	case ptt.Processing:
		go beep.PlayEnd()
	}
}

func onResult(res transcriber.Result, elapsed time.Duration) {
	metrics := []string{
		fmt.Sprintf("%.1fs audio, %.0f KB upload (%s)", res.AudioSeconds, res.UploadKB, activeCfg.Format),
	}
	m := log.Metrics{
		AudioLengthS: res.AudioSeconds,
		RawSizeKB:    res.RawKB,
		UploadSizeKB: res.UploadKB,
		EncodeTimeMs: res.EncodeMs,
	}
	connReused := false
	if res.Metrics != nil {
		m.DNSTimeMs = float64(res.Metrics.DNS.Milliseconds())
		m.TLSTimeMs = float64(res.Metrics.TLS.Milliseconds())
		m.TTFBMs = float64(res.Metrics.TTFB.Milliseconds())
		m.TotalTimeMs = float64(res.Metrics.Total.Milliseconds())
		connReused = res.Metrics.ConnReused
		metrics = append(metrics, fmt.Sprintf("total %.0f ms (ttfb %.0f ms)", m.TotalTimeMs, m.TTFBMs))
	} else {
		m.TotalTimeMs = float64(elapsed.Milliseconds())
		metrics = append(metrics, fmt.Sprintf("total %.0f ms", m.TotalTimeMs))
	}
	log.TranscriptionMetrics(m, activeCfg.Format, activeCfg.Provider, connReused)

	displayText := res.Text
	if res.NoSpeech {
		displayText = "(no speech detected)"
		log.Info("no_speech")
	} else {
		statsMu.Lock()
		cycleCount++
		statsMu.Unlock()
		log.TranscriptionText(res.Text)
	}
	tuiSend(TranscriptionMsg{Text: displayText, Metrics: metrics, NoSpeech: res.NoSpeech})
}

func onPipelineError(stage string, err error) {
	log.Errorf("%s error: %v", stage, err)
	tuiSend(ErrorMsg{Text: fmt.Sprintf("%s: %v", stage, err)})
	go beep.PlayError()
}
