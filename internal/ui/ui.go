package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/VladimirGitsarev/Tinytosh/internal/model"
)

// Commands is the bridge surface the UI drives.
type Commands interface {
	Snapshot() model.Sample
	GetPorts() model.PortStatus
	ToggleConnection(portName string, connect bool) (string, error)
}

// Autostart toggles the login item. May be nil.
type Autostart interface {
	Set(enable bool) error
	Enabled() bool
}

const refreshInterval = time.Second

// Model renders live samples and the port picker.
type Model struct {
	cmds      Commands
	autostart Autostart

	latest    model.Sample
	status    model.PortStatus
	cursor    int
	busy      bool
	autoOn    bool
	autoErr   string
	lastError string
	width     int
	height    int
}

func New(cmds Commands, auto Autostart) *Model {
	m := &Model{
		cmds:      cmds,
		autostart: auto,
		width:     80,
		height:    24,
	}
	if auto != nil {
		m.autoOn = auto.Enabled()
	}
	m.refresh()
	return m
}

// Messages
type (
	tickMsg   struct{}
	toggleMsg struct {
		text string
		err  error
	}
)

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.status.Ports)-1 {
				m.cursor++
			}
		case "enter", " ":
			return m, m.toggle()
		case "a":
			m.toggleAutostart()
		case "r":
			m.refresh()
		}
	case toggleMsg:
		m.busy = false
		m.lastError = ""
		if msg.err != nil {
			m.lastError = msg.err.Error()
		}
		m.refresh()
	case tickMsg:
		m.refresh()
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) refresh() {
	m.latest = m.cmds.Snapshot()
	m.status = m.cmds.GetPorts()
	if m.status.Connected != nil {
		for i, p := range m.status.Ports {
			if p == *m.status.Connected {
				m.cursor = i
			}
		}
	}
	if m.cursor >= len(m.status.Ports) {
		m.cursor = max(0, len(m.status.Ports)-1)
	}
}

// toggle runs the blocking connect/disconnect off the update loop.
func (m *Model) toggle() tea.Cmd {
	if m.busy {
		return nil
	}
	connect := m.status.Connected == nil
	port := ""
	if connect {
		if len(m.status.Ports) == 0 {
			return nil
		}
		port = m.status.Ports[m.cursor]
	}
	m.busy = true
	cmds := m.cmds
	return func() tea.Msg {
		text, err := cmds.ToggleConnection(port, connect)
		return toggleMsg{text: text, err: err}
	}
}

func (m *Model) toggleAutostart() {
	if m.autostart == nil {
		return
	}
	want := !m.autoOn
	if err := m.autostart.Set(want); err != nil {
		m.autoErr = err.Error()
		return
	}
	m.autoErr = ""
	m.autoOn = m.autostart.Enabled()
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	s := m.latest
	header := titleStyle.Render("Tinytosh bridge") + "  " +
		subtleStyle.Render(time.Now().Format("15:04:05"))

	stats := card("Host",
		strings.Join([]string{
			"CPU  " + gaugeBar(s.CPUPercent, 24),
			"RAM  " + gaugeBar(s.MemPercent, 24),
			"Disk " + gaugeBar(float64(s.DiskPercent), 24),
			fmt.Sprintf("Net  %d KB received", s.NetDownKB),
		}, "\n"))

	portsCard := card("Ports", m.renderPorts())

	auto := "off"
	if m.autoOn {
		auto = "on"
	}
	if m.autoErr != "" {
		auto = errStyle.Render(m.autoErr)
	}
	footer := m.statusLine() + "\n" +
		subtleStyle.Render("↑/↓ select  enter connect/disconnect  a autostart ("+auto+")  q quit")

	body := lipgloss.JoinHorizontal(lipgloss.Top, stats, portsCard)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderPorts() string {
	if len(m.status.Ports) == 0 {
		return subtleStyle.Render("No Ports Found")
	}
	var b strings.Builder
	for i, p := range m.status.Ports {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + truncate(p, 28)
		if m.status.Connected != nil && *m.status.Connected == p {
			line = okStyle.Render(line + " ●")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// statusLine colours the bridge status the way the desktop window did:
// connected green, failures red, everything else grey.
func (m *Model) statusLine() string {
	if m.busy {
		return idleStyle.Render("Working...")
	}
	if m.status.Connected != nil {
		return okStyle.Render("Connected to " + *m.status.Connected)
	}
	text := m.status.StatusText
	if m.lastError != "" {
		text = m.lastError
	}
	if text == "" {
		text = "Waiting for connection..."
	}
	if strings.Contains(strings.ToLower(text), "failed") {
		return errStyle.Render(text)
	}
	return idleStyle.Render(text)
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is done.
func Run(ctx context.Context, cmds Commands, auto Autostart) error {
	prog := tea.NewProgram(New(cmds, auto), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		prog.Quit()
	}()
	_, err := prog.Run()
	return err
}
