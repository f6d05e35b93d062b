// Package doctor runs non-interactive environment checks and prints a
// pass/fail report. It never records or uploads audio.
package doctor

import (
	"fmt"

	"voicekey/audio"
	"voicekey/clipboard"
	"voicekey/config"
	"voicekey/hotkey"
	"voicekey/log"
)

type check struct {
	name string
	run  func(cfg config.Config) (string, error)
}

var checks = []check{
	{"config", checkConfig},
	{"microphone", checkMicrophone},
	{"hotkey", checkHotkey},
	{"clipboard", checkClipboard},
	{"log directory", checkLogDir},
}

// Run executes every check and returns an exit code (0=all pass,
// 1=any fail).
func Run(cfg config.Config) int {
	fmt.Println("voicekey doctor")
	fmt.Println("===============")

	failures := 0
	for _, c := range checks {
		detail, err := c.run(cfg)
		if err != nil {
			failures++
			fmt.Printf("FAIL  %-14s %v\n", c.name, err)
			continue
		}
		fmt.Printf("ok    %-14s %s\n", c.name, detail)
	}

	fmt.Println()
	if failures > 0 {
		fmt.Printf("%d of %d checks failed.\n", failures, len(checks))
		return 1
	}
	fmt.Println("All checks passed.")
	return 0
}

func checkConfig(cfg config.Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("provider=%s format=%s", cfg.Provider, cfg.Format), nil
}

func checkMicrophone(cfg config.Config) (string, error) {
	ctx, err := audio.NewContext()
	if err != nil {
		return "", fmt.Errorf("cannot connect to audio: %w", err)
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		return "", fmt.Errorf("cannot list devices: %w", err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no capture devices found")
	}

	if picked := audio.Preferred(devices); picked != nil {
		return fmt.Sprintf("%d device(s), would use %q", len(devices), picked.Name), nil
	}
	return fmt.Sprintf("%d device(s), would use the OS default", len(devices)), nil
}

func checkHotkey(cfg config.Config) (string, error) {
	return hotkey.Diagnose(cfg.PTTKey)
}

func checkClipboard(cfg config.Config) (string, error) {
	return clipboard.Verify()
}

func checkLogDir(cfg config.Config) (string, error) {
	dir, err := log.ResolveDir("")
	if err != nil {
		return "", err
	}
	log.SetDir(dir)
	if err := log.EnsureDir(); err != nil {
		return "", err
	}
	return dir, nil
}
