package main

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dictate/engine"
)

// TUI message types
type StateMsg struct{ State engine.State }
type AudioLevelMsg struct{ Level float64 }
type TranscriptionMsg struct {
	Text  string
	Count int
}
type ErrorMsg struct{ Text string }
type ModeLineMsg struct{ Text string }   // Provider/language info
type DeviceLineMsg struct{ Text string } // Microphone device name
type HotkeyLineMsg struct{ Text string } // Hotkey help text
type UndoneMsg struct{}

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

var (
	styleRecording = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleBusy      = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleCooldown  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleIdle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleText      = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleFaint     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleMeter     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styleMeterPeak = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type tuiModel struct {
	state         engine.State
	audioLevel    float64
	lastText      string
	lastError     string
	undone        bool
	msgCount      int
	modeLine      string
	deviceLine    string
	hotkeyLine    string
	width, height int
}

func NewTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{}, tea.WithAltScreen())
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case StateMsg:
		m.state = msg.State
		if m.state == engine.StateRecording {
			m.audioLevel = 0
			m.lastError = ""
			m.undone = false
		}

	case AudioLevelMsg:
		if m.state == engine.StateRecording {
			m.audioLevel = m.audioLevel*0.6 + msg.Level*0.4
		}

	case TranscriptionMsg:
		m.lastText = msg.Text
		m.msgCount = msg.Count
		m.lastError = ""
		m.undone = false

	case ErrorMsg:
		m.lastError = msg.Text

	case UndoneMsg:
		m.undone = true

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case HotkeyLineMsg:
		m.hotkeyLine = msg.Text
	}
	return m, nil
}

func (m tuiModel) statusLine() string {
	switch m.state {
	case engine.StateRecording:
		return styleRecording.Render("● REC") + "  " + m.levelMeter()
	case engine.StateTranscribing:
		return styleBusy.Render("… transcribing")
	case engine.StateCooldown:
		return styleCooldown.Render("✓ pasted") + styleFaint.Render("  (esc to undo)")
	default:
		return styleIdle.Render("○ STANDBY")
	}
}

func (m tuiModel) levelMeter() string {
	const width = 24
	filled := int(m.audioLevel * 3 * width)
	if filled > width {
		filled = width
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i >= filled {
			b.WriteString(styleIdle.Render("·"))
		} else if i >= width*3/4 {
			b.WriteString(styleMeterPeak.Render("█"))
		} else {
			b.WriteString(styleMeter.Render("█"))
		}
	}
	return b.String()
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var lines []string
	lines = append(lines, "", "  "+m.statusLine(), "")

	wrapWidth := m.width - 4
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	switch {
	case m.lastError != "":
		for _, line := range wrapText(m.lastError, wrapWidth) {
			lines = append(lines, "  "+styleError.Render(line))
		}
	case m.lastText != "":
		title := fmt.Sprintf("Last transcription (#%d)", m.msgCount)
		if m.undone {
			title += " [undone]"
		}
		lines = append(lines, "  "+styleDim.Render(title), "")
		for _, line := range wrapText(m.lastText, wrapWidth) {
			lines = append(lines, "  "+styleText.Render(line))
		}
	default:
		lines = append(lines, "  "+styleIdle.Render("No transcriptions yet"))
	}

	lines = append(lines, "")
	if m.modeLine != "" {
		lines = append(lines, "  "+styleDim.Render(m.modeLine))
	}
	if m.deviceLine != "" {
		lines = append(lines, "  "+styleIdle.Render(m.deviceLine))
	}
	lines = append(lines, "")
	if m.hotkeyLine != "" {
		lines = append(lines, "  "+styleFaint.Render(m.hotkeyLine))
	}
	lines = append(lines, "  "+styleFaint.Render("dictate "+version))

	out := strings.Join(lines, "\n")
	return lipgloss.NewStyle().Width(m.width).Height(m.height).Render(out)
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
		// Find last space within width
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
