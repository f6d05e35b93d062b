package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voicekey/ptt"
)

// TUI message types
type StateMsg struct{ State ptt.State }
type AudioLevelMsg struct{ Level float64 }
type TranscriptionMsg struct {
	Text     string
	Metrics  []string
	NoSpeech bool
}
type ModeLineMsg struct{ Text string }
type DeviceLineMsg struct{ Text string }
type BluetoothWarningMsg struct{ IsBT bool }
type ErrorMsg struct{ Text string }
type tickMsg time.Time

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

func tuiSet(p *tea.Program) {
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()
}

func tuiGet() *tea.Program {
	tuiMu.Lock()
	defer tuiMu.Unlock()
	return tuiProgram
}

func tuiMarkReady() {
	tuiReadyOnce.Do(func() { close(tuiReady) })
}

func tuiSend(msg tea.Msg) {
	if p := tuiGet(); p != nil {
		p.Send(msg)
	}
}

var (
	styleRec     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleProc    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	styleIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleMode    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleText    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleNoText  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleMetrics = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	styleMeter   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

type tuiModel struct {
	state          ptt.State
	recordingSince time.Time
	audioLevel     float64
	peakLevel      float64
	msgCount       int
	width, height  int
	modeLine       string
	deviceLine     string
	btWarning      bool
	lastText       string
	lastMetrics    []string
	noSpeech       bool
	lastError      string
}

func NewTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{}, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	tuiMarkReady()
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		return m, tuiTick()

	case StateMsg:
		m.state = msg.State
		switch msg.State {
		case ptt.Recording:
			m.recordingSince = time.Now()
			m.audioLevel = 0
			m.peakLevel = 0
			m.lastError = ""
		case ptt.Idle:
			m.audioLevel = 0
		}

	case AudioLevelMsg:
		if m.state == ptt.Recording {
			m.audioLevel = m.audioLevel*0.6 + msg.Level*0.4
			if msg.Level > m.peakLevel {
				m.peakLevel = msg.Level
			}
		}

	case TranscriptionMsg:
		m.msgCount++
		m.lastText = msg.Text
		m.lastMetrics = msg.Metrics
		m.noSpeech = msg.NoSpeech

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case BluetoothWarningMsg:
		m.btWarning = msg.IsBT

	case ErrorMsg:
		m.lastError = msg.Text
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	switch m.state {
	case ptt.Recording:
		dur := time.Since(m.recordingSince).Seconds()
		b.WriteString(styleRec.Render(fmt.Sprintf("● REC %.1fs", dur)))
		b.WriteString("  " + styleMeter.Render(levelMeter(m.audioLevel, 20)))
		b.WriteString("\n")
		if dur > 1.0 && m.peakLevel < 0.02 {
			b.WriteString(styleWarn.Render("  no voice detected") + "\n")
		}
	case ptt.Processing:
		b.WriteString(styleProc.Render("◌ TRANSCRIBING") + "\n")
	default:
		b.WriteString(styleIdle.Render("○ STANDBY") + "\n")
	}

	if m.modeLine != "" {
		b.WriteString(styleMode.Render(m.modeLine) + "\n")
	}
	if m.deviceLine != "" {
		b.WriteString(styleDim.Render(m.deviceLine) + "\n")
	}
	if m.btWarning {
		b.WriteString(styleWarn.Render("Bluetooth mic: expect reduced quality and a capture delay") + "\n")
	}

	b.WriteString("\n")

	wrapWidth := m.width - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}
	if m.lastText != "" {
		b.WriteString(styleDim.Render(fmt.Sprintf("Last transcription (#%d)", m.msgCount)) + "\n")
		style := styleText
		if m.noSpeech {
			style = styleNoText
		}
		for _, line := range wrapText(m.lastText, wrapWidth) {
			b.WriteString(style.Render(line) + "\n")
		}
		for _, metric := range m.lastMetrics {
			b.WriteString(styleMetrics.Render(metric) + "\n")
		}
	} else {
		b.WriteString(styleDim.Render("No transcriptions yet") + "\n")
	}

	if m.lastError != "" {
		b.WriteString("\n" + styleErr.Render("error: "+m.lastError) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render("hold the key to talk, q to quit") + "\n")
	b.WriteString(styleHelp.Render("voicekey " + version))

	return b.String()
}

func levelMeter(level float64, width int) string {
	filled := int(level * 3 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
