// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/Thermoquad/dashctl/pkg/transcript"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// monitorKeys binds keys to catalog operations.
var monitorKeys = map[string]dashboard.Operation{
	"p": dashboard.OpPowerOn,
	"o": dashboard.OpPowerOff,
	"b": dashboard.OpBrakeRelease,
	"u": dashboard.OpUnlockProtectiveStop,
	" ": dashboard.OpPlay,
	"a": dashboard.OpPause,
	"s": dashboard.OpStop,
}

// monitorModel is the Bubble Tea model for the monitor TUI
type monitorModel struct {
	connInfo string
	greeting string
	gate     dashboard.VersionGate

	// Latest status poll
	status    statusMsg
	hasStatus bool

	// Actions run outside Update via these hooks
	run              func(dashboard.Operation) dashboard.Result
	requestReconnect func()
	snapshot         func() transcript.Statistics
	stats            transcript.Statistics

	busy    dashboard.Operation
	spinner spinner.Model

	events        viewport.Model
	eventLog      []logEntry
	maxLogEntries int

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type monitorTickMsg time.Time

type statusMsg struct {
	at     time.Time
	values map[dashboard.Operation]string
	err    error
}

type actionResultMsg struct {
	res dashboard.Result
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	greeting string
	gate     dashboard.VersionGate
}

type logEventMsg struct {
	at      time.Time
	message string
	isError bool
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialMonitorModel(
	connInfo, greeting string,
	gate dashboard.VersionGate,
	run func(dashboard.Operation) dashboard.Result,
	requestReconnect func(),
	snapshot func() transcript.Statistics,
) monitorModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	m := monitorModel{
		connInfo:         connInfo,
		greeting:         greeting,
		gate:             gate,
		run:              run,
		requestReconnect: requestReconnect,
		snapshot:         snapshot,
		spinner:          sp,
		events:           viewport.New(76, 8),
		eventLog:         make([]logEntry, 0),
		maxLogEntries:    200,
		width:            80,
		height:           24,
	}
	m.addLogEntry(fmt.Sprintf("Connected: %s", greeting), false)
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(monitorTickCmd(), m.spinner.Tick)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeEvents()
		m.refreshEvents()

	case monitorTickMsg:
		if m.snapshot != nil {
			m.stats = m.snapshot()
		}
		return m, monitorTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.status = msg
		m.hasStatus = true

	case actionResultMsg:
		m.busy = ""
		if msg.res.OK() {
			m.addLogEntry(fmt.Sprintf("%s: ok", msg.res.Op), false)
		} else {
			m.addLogEntry((&resultError{res: msg.res}).Error(), true)
		}

	case connectionLostMsg:
		if !m.connectionLost {
			m.connectionLost = true
			m.addLogEntry("Connection lost - reconnecting...", true)
		}

	case reconnectedMsg:
		m.connectionLost = false
		m.greeting = msg.greeting
		m.gate = msg.gate
		m.addLogEntry(fmt.Sprintf("Reconnected: %s", msg.gate), false)

	case logEventMsg:
		m.eventLog = append(m.eventLog, logEntry{timestamp: msg.at, message: msg.message, isError: msg.isError})
		m.trimLog()
	}

	return m, nil
}

func (m monitorModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "r":
		m.addLogEntry("Reconnect requested", false)
		if m.requestReconnect != nil {
			m.requestReconnect()
		}
		return m, nil

	case "up", "down", "pgup", "pgdown", "k", "j":
		var cmd tea.Cmd
		m.events, cmd = m.events.Update(msg)
		return m, cmd

	default:
		op, ok := monitorKeys[key]
		if !ok {
			return m, nil
		}
		if m.busy != "" {
			m.addLogEntry(fmt.Sprintf("Busy with %s, ignoring %s", m.busy, op), true)
			return m, nil
		}
		if m.connectionLost {
			m.addLogEntry(fmt.Sprintf("Not connected, ignoring %s", op), true)
			return m, nil
		}
		m.busy = op
		m.addLogEntry(fmt.Sprintf("Sending %s", op), false)
		return m, m.runAction(op)
	}
}

// runAction invokes op off the UI goroutine.
func (m monitorModel) runAction(op dashboard.Operation) tea.Cmd {
	run := m.run
	return func() tea.Msg {
		return actionResultMsg{res: run(op)}
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	s.WriteString(titleStyle.Render("DASHCTL MONITOR"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = m.spinner.View() + warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit r=reconnect", connStatus)))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf(" %s %s\n\n",
		statsLabelStyle.Render("Controller:"),
		statsValueStyle.Render(m.gate.String())))

	s.WriteString(m.renderStatus(statsLabelStyle, statsValueStyle, errorStyle, warningStyle, headerStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(m.renderControls(headerStyle, warningStyle))
	s.WriteString("\n")
	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m monitorModel) renderStatus(statsLabelStyle, statsValueStyle, errorStyle, warningStyle, headerStyle, boxStyle lipgloss.Style) string {
	var content strings.Builder
	content.WriteString(statsLabelStyle.Render("STATUS"))
	content.WriteString("\n")

	if !m.hasStatus {
		content.WriteString(headerStyle.Render("Waiting for first poll..."))
		return boxStyle.Width(m.width - 4).Render(content.String())
	}

	robotMode := m.status.values[dashboard.OpRobotMode]
	safetyMode := m.status.values[dashboard.OpSafetyMode]

	robotStyle := warningStyle
	if robotMode == "RUNNING" {
		robotStyle = statsValueStyle
	}
	safetyStyle := errorStyle
	if safetyMode == "NORMAL" {
		safetyStyle = statsValueStyle
	}

	content.WriteString(fmt.Sprintf("%s %s  ", statsLabelStyle.Render("Robot:"), robotStyle.Render(robotMode)))
	content.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Safety:"), safetyStyle.Render(safetyMode)))
	content.WriteString(fmt.Sprintf("%s %s\n",
		statsLabelStyle.Render("Program:"),
		statsValueStyle.Render(m.status.values[dashboard.OpProgramState])))
	content.WriteString(fmt.Sprintf("%s %s\n",
		statsLabelStyle.Render("Loaded:"),
		statsValueStyle.Render(m.status.values[dashboard.OpGetLoadedProgram])))
	content.WriteString(headerStyle.Render(fmt.Sprintf("updated %s", m.status.at.Format("15:04:05"))))
	if m.status.err != nil {
		content.WriteString("  ")
		content.WriteString(errorStyle.Render(m.status.err.Error()))
	}

	return boxStyle.Width(m.width - 4).Render(content.String())
}

func (m monitorModel) renderControls(headerStyle, warningStyle lipgloss.Style) string {
	if m.busy != "" {
		return fmt.Sprintf(" %s %s\n", m.spinner.View(), warningStyle.Render(fmt.Sprintf("%s in progress", m.busy)))
	}
	return headerStyle.Render(" p=power on  o=power off  b=brake release  u=unlock  space=play  a=pause  s=stop") + "\n"
}

func (m monitorModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle lipgloss.Style) string {
	errorPercent := 0.0
	if m.stats.TotalExchanges > 0 {
		errorPercent = float64(m.stats.Errors()) * 100.0 / float64(m.stats.TotalExchanges)
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Exchanges:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalExchanges)),
		statsLabelStyle.Render("Errors:"), func() string {
			if errorPercent > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f%%", errorPercent))
			}
			return statsValueStyle.Render("0.0%")
		}(),
		statsLabelStyle.Render("RTT avg:"), statsValueStyle.Render(m.stats.AverageRTT().Round(time.Microsecond).String()),
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.ExchangeRate)),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m monitorModel) renderEventLog(statsLabelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	if len(m.eventLog) == 0 {
		s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  (no events yet)"))
	} else {
		s.WriteString(m.events.View())
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

// refreshEvents re-renders the event log into the viewport, following the
// tail unless the user has scrolled up.
func (m *monitorModel) refreshEvents() {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warningStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	lines := make([]string, 0, len(m.eventLog))
	for _, entry := range m.eventLog {
		timestamp := entry.timestamp.Format("15:04:05.000")
		icon := "i"
		style := warningStyle
		if entry.isError {
			icon = "x"
			style = errorStyleLocal
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			headerStyle.Render(timestamp),
			style.Render(icon),
			entry.message))
	}

	follow := m.events.AtBottom()
	m.events.SetContent(strings.Join(lines, "\n"))
	if follow {
		m.events.GotoBottom()
	}
}

// resizeEvents gives the event log whatever height the fixed panels leave.
func (m *monitorModel) resizeEvents() {
	m.events.Width = m.width - 8
	h := m.height - 18
	if h < 3 {
		h = 3
	}
	m.events.Height = h
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	m.trimLog()
}

func (m *monitorModel) trimLog() {
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
	m.refreshEvents()
}
