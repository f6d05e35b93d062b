//go:build integration

package test_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("VOICEKEY_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "VOICEKEY_TEST_BIN not set; build the binary and point the variable at it")
		os.Exit(1)
	}

	silencePath := filepath.Join("data", "silence.wav")
	if err := generateSilenceWAV(silencePath, 16000, 1.0); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate silence.wav: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(silencePath)

	os.Exit(m.Run())
}

func generateSilenceWAV(path string, sampleRate int, durationS float64) error {
	const headerSize = 44
	numSamples := int(float64(sampleRate) * durationS)
	dataSize := numSamples * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func runVoicekey(t *testing.T, stdin string, args ...string) (logDir, stdout string) {
	t.Helper()
	logDir = t.TempDir()
	cmdArgs := append([]string{"-logpath", logDir}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = os.Environ()

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("voicekey exited with error: %v\noutput: %s", err, out)
	}
	return logDir, string(out)
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func requireGroqKey(t *testing.T) {
	t.Helper()
	if os.Getenv("GROQ_API_KEY") == "" {
		t.Skip("GROQ_API_KEY not set")
	}
}

func TestTranscribesWords(t *testing.T) {
	requireGroqKey(t)
	logDir, stdout := runVoicekey(t, cmds("KEYDOWN", "KEYUP", "WAIT", "QUIT"), "-test", "data/short.wav")
	if strings.TrimSpace(stdout) == "" {
		t.Error("expected transcript on stdout")
	}
	text := readLog(t, logDir, "transcribe_log.txt")
	if strings.TrimSpace(text) == "" {
		t.Error("transcribe_log.txt is empty, expected transcribed words")
	}
}

func TestConnectionReusedAcrossCycles(t *testing.T) {
	requireGroqKey(t)
	logDir, _ := runVoicekey(t, cmds("KEYDOWN", "KEYUP", "WAIT", "KEYDOWN", "KEYUP", "WAIT", "QUIT"),
		"-test", "data/short.wav")
	diag := readLog(t, logDir, "diagnostics_log.txt")
	if strings.Count(diag, "transcription") < 2 {
		t.Error("expected 2 transcription entries in diagnostics")
	}
	if !strings.Contains(diag, "conn=reused") {
		t.Error("expected conn=reused in diagnostics")
	}
}

func TestSilenceDeliversNothing(t *testing.T) {
	requireGroqKey(t)
	logDir, stdout := runVoicekey(t, cmds("KEYDOWN", "SLEEP 1500", "KEYUP", "WAIT", "QUIT"),
		"-test", "data/silence.wav")
	if strings.TrimSpace(stdout) != "" {
		t.Errorf("silence produced stdout output: %q", stdout)
	}
	text := readLog(t, logDir, "transcribe_log.txt")
	if strings.TrimSpace(text) != "" {
		t.Errorf("silence was logged as a transcript: %q", text)
	}
}

func TestEarlyKeyup(t *testing.T) {
	requireGroqKey(t)
	logDir, _ := runVoicekey(t, cmds("KEYDOWN", "SLEEP 500", "KEYUP", "WAIT", "QUIT"),
		"-test", "data/short.wav")
	_ = readLog(t, logDir, "diagnostics_log.txt")
}

func TestFlacUpload(t *testing.T) {
	requireGroqKey(t)
	logDir, stdout := runVoicekey(t, cmds("KEYDOWN", "KEYUP", "WAIT", "QUIT"),
		"-test", "-format", "flac", "data/short.wav")
	if strings.TrimSpace(stdout) == "" {
		t.Error("expected transcript on stdout")
	}
	diag := readLog(t, logDir, "diagnostics_log.txt")
	if !strings.Contains(diag, "format=flac") {
		t.Error("expected format=flac in diagnostics")
	}
}
