// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fermlab/tilted/pkg/gateway"
	"github.com/fermlab/tilted/pkg/link"
	"github.com/fermlab/tilted/pkg/tiltwire"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of readings arriving on the link",
	Long: `Watch decoded readings in a full-screen terminal view: the
latest values from each field, receive counters, and a log of recent
link events.

Supports both serial and WebSocket connections. Press 'q' to quit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchEvent is one line in the event log.
type watchEvent struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Messages from the link reader goroutine.
type readingMsg struct {
	reading *gateway.Reading
	rawLen  int
}
type linkErrorMsg struct{ err error }
type linkClosedMsg struct{}

type watchModel struct {
	connInfo string
	spinner  spinner.Model

	latest     *gateway.Reading
	lastUpdate time.Time
	readings   uint64
	errors     uint64

	events    []watchEvent
	maxEvents int

	width    int
	height   int
	quitting bool
}

func initialWatchModel(connInfo string) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	return watchModel{
		connInfo:  connInfo,
		spinner:   sp,
		events:    make([]watchEvent, 0),
		maxEvents: 100,
		width:     80,
		height:    24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case readingMsg:
		m.latest = msg.reading
		m.lastUpdate = time.Now()
		m.readings++
		m.addEvent(fmt.Sprintf("Reading from %q (%d bytes)", msg.reading.Name, msg.rawLen), false)

	case linkErrorMsg:
		m.errors++
		m.addEvent(msg.err.Error(), true)

	case linkClosedMsg:
		m.addEvent("Connection closed", true)
		return m, tea.Quit
	}

	return m, nil
}

func (m *watchModel) addEvent(message string, isError bool) {
	m.events = append(m.events, watchEvent{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.events) > m.maxEvents {
		m.events = m.events[len(m.events)-m.maxEvents:]
	}
}

func fmtOpt(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%s", *v, unit)
}

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("TILTED - LIVE READINGS"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	if m.latest == nil {
		s.WriteString(m.spinner.View())
		s.WriteString(headerStyle.Render(" Waiting for the first reading..."))
		s.WriteString("\n\n")
	} else {
		content := strings.Builder{}
		content.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Device:"), valueStyle.Render(m.latest.Name),
			labelStyle.Render("Received:"), valueStyle.Render(m.lastUpdate.Format("15:04:05")),
		))
		content.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Tilt:"), valueStyle.Render(fmtOpt(m.latest.Angle, "°")),
			labelStyle.Render("Temp:"), valueStyle.Render(fmtOpt(m.latest.Temp, "°C")),
			labelStyle.Render("Aux:"), valueStyle.Render(fmtOpt(m.latest.AuxTemp, "°C")),
		))
		content.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
			labelStyle.Render("Battery:"), valueStyle.Render(fmtOpt(m.latest.Battery, "V")),
			labelStyle.Render("Interval:"), valueStyle.Render(fmtOpt(m.latest.Interval, "s")),
			labelStyle.Render("RSSI:"), valueStyle.Render(fmtOpt(m.latest.Rssi, "dBm")),
		))
		s.WriteString(boxStyle.Render(content.String()))
		s.WriteString("\n\n")
	}

	s.WriteString(fmt.Sprintf("%s %s   %s %s\n\n",
		labelStyle.Render("Readings:"), valueStyle.Render(fmt.Sprintf("%d", m.readings)),
		labelStyle.Render("Errors:"), func() string {
			if m.errors > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", m.errors))
			}
			return valueStyle.Render("0")
		}(),
	))

	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 14
	if logHeight < 5 {
		logHeight = 5
	}
	startIdx := len(m.events) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	logContent := strings.Builder{}
	if len(m.events) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.events); i++ {
			e := m.events[i]
			style := valueStyle
			if e.isError {
				style = errorStyle
			}
			logContent.WriteString(fmt.Sprintf("%s %s\n",
				headerStyle.Render(e.timestamp.Format("15:04:05.000")),
				style.Render(e.message),
			))
		}
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

func runWatch(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openLink()
	if err != nil {
		return err
	}
	defer conn.Close()

	p := tea.NewProgram(initialWatchModel(connInfo))

	// Link reader goroutine
	go func() {
		deframer := link.NewDeframer()
		buf := make([]byte, 512)
		for {
			n, rerr := conn.Read(buf)
			for i := 0; i < n; i++ {
				frame, ferr := deframer.Feed(buf[i])
				if ferr != nil {
					p.Send(linkErrorMsg{err: ferr})
					continue
				}
				if frame == nil {
					continue
				}
				p.Send(decodeFrame(frame))
			}
			if rerr != nil {
				p.Send(linkClosedMsg{})
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		log.Printf("TUI error: %v", err)
		return err
	}
	return nil
}

// decodeFrame turns a deframed payload into the message the TUI wants.
func decodeFrame(frame *link.RxFrame) tea.Msg {
	v, err := tiltwire.Decode(frame.Payload)
	if err == nil {
		return readingMsg{reading: gateway.ReadingFromView(v), rawLen: len(frame.Payload)}
	}
	if legacy, lerr := tiltwire.DecodeLegacy(frame.Payload); lerr == nil {
		return readingMsg{reading: gateway.ReadingFromLegacy(legacy), rawLen: len(frame.Payload)}
	}
	return linkErrorMsg{err: fmt.Errorf("undecodable payload (%d bytes): %v", len(frame.Payload), err)}
}
