// Package tui provides a Bubble Tea terminal user interface for the
// downloader.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/QuesoDad/DownloadAllOfIt/internal/batch"
	"github.com/QuesoDad/DownloadAllOfIt/internal/config"
	"github.com/QuesoDad/DownloadAllOfIt/internal/diag"
	"github.com/QuesoDad/DownloadAllOfIt/internal/download"
	"github.com/QuesoDad/DownloadAllOfIt/internal/ledger"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
	"github.com/QuesoDad/DownloadAllOfIt/internal/resolve"
	"github.com/QuesoDad/DownloadAllOfIt/internal/ytdlp"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state           State
	urls            textarea.Model
	spinner         spinner.Model
	itemProgress    progress.Model
	overallProgress progress.Model
	settings        *config.Settings
	logs            []LogEntry
	err             error

	currentItem    string
	itemPercent    float64
	overallPercent float64
	completed      int
	total          int
	failures       []model.FailureRecord

	// Batch wiring
	orchestrator *batch.Orchestrator
	events       chan batch.Event
	store        *ledger.Ledger
	cancel       context.CancelFunc

	// Options
	audioOnly bool
	years     bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	ta := textarea.New()
	ta.Placeholder = "https://www.youtube.com/watch?v=... (one URL per line)"
	ta.Focus()
	ta.SetWidth(70)
	ta.SetHeight(5)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	item := progress.New(progress.WithDefaultGradient())
	item.Width = 50
	overall := progress.New(progress.WithDefaultGradient())
	overall.Width = 50

	return Model{
		state:           StateInput,
		urls:            ta,
		spinner:         sp,
		itemProgress:    item,
		overallProgress: overall,
		settings:        settings,
		logs:            make([]LogEntry, 0),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Message types
type (
	// EventMsg wraps one batch event.
	EventMsg struct {
		Event batch.Event
	}

	// BatchStartedMsg is sent once the pipeline is wired and running.
	BatchStartedMsg struct {
		Orchestrator *batch.Orchestrator
		Events       chan batch.Event
		Store        *ledger.Ledger
		Cancel       context.CancelFunc
	}

	// BatchDoneMsg is sent when the event stream ends.
	BatchDoneMsg struct{}

	// StartErrMsg is sent when preconditions fail before any item.
	StartErrMsg struct {
		Err error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 20
		if w > 80 {
			w = 80
		}
		if w < 20 {
			w = 20
		}
		m.itemProgress.Width = w
		m.overallProgress.Width = w
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.stop()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				// Request a stop; the batch finishes through its
				// normal completion path.
				m.stop()
				m.logs = append(m.logs, LogEntry{Message: "Stopping after current item...", Level: download.LevelWarning})
			}

		case "ctrl+s":
			if m.state == StateInput && strings.TrimSpace(m.urls.Value()) != "" {
				m.state = StateRunning
				return m, tea.Batch(m.startBatch(), m.spinner.Tick)
			}

		case "a":
			if m.state == StateInput && !m.urls.Focused() {
				m.audioOnly = !m.audioOnly
			}

		case "y":
			if m.state == StateInput && !m.urls.Focused() {
				m.years = !m.years
			}

		case "v":
			if m.state == StateInput && !m.urls.Focused() {
				m.verbose = !m.verbose
			}

		case "tab":
			if m.state == StateInput {
				if m.urls.Focused() {
					m.urls.Blur()
				} else {
					m.urls.Focus()
				}
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StartErrMsg:
		m.state = StateError
		m.err = msg.Err

	case BatchStartedMsg:
		m.orchestrator = msg.Orchestrator
		m.events = msg.Events
		m.store = msg.Store
		m.cancel = msg.Cancel
		cmds = append(cmds, m.waitForEvent())

	case EventMsg:
		m.applyEvent(msg.Event)
		if msg.Event.Type != batch.EventCompleted {
			cmds = append(cmds, m.waitForEvent())
		}

	case BatchDoneMsg:
		m.cleanup()
		if m.state == StateRunning {
			m.state = StateComplete
		}

	case progress.FrameMsg:
		im, cmd := m.itemProgress.Update(msg)
		m.itemProgress = im.(progress.Model)
		cmds = append(cmds, cmd)
		om, cmd := m.overallProgress.Update(msg)
		m.overallProgress = om.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.urls, cmd = m.urls.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applyEvent folds one batch event into the model.
func (m *Model) applyEvent(event batch.Event) {
	switch event.Type {
	case batch.EventStatus:
		if event.Level == download.LevelVerbose && !m.verbose {
			return
		}
		m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case batch.EventItemProgress:
		m.itemPercent = event.Percent / 100

	case batch.EventOverallProgress:
		m.overallPercent = event.Percent / 100
		m.completed = event.Completed
		m.total = event.Total

	case batch.EventCurrentItem:
		m.currentItem = event.Title
		m.itemPercent = 0

	case batch.EventFailures:
		m.failures = event.Failures

	case batch.EventCompleted:
		m.completed = event.Completed
		m.total = event.Total
		m.cleanup()
		m.state = StateComplete
	}
}

// waitForEvent blocks on the batch event channel.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return BatchDoneMsg{}
		}
		return EventMsg{Event: event}
	}
}

func (m *Model) stop() {
	if m.orchestrator != nil {
		m.orchestrator.Stop()
	}
}

func (m *Model) cleanup() {
	if m.store != nil {
		m.store.Close()
		m.store = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// startBatch wires the full pipeline and launches the batch worker.
func (m *Model) startBatch() tea.Cmd {
	rawInput := m.urls.Value()
	settings := *m.settings
	if m.audioOnly {
		settings.OutputFormat = config.FormatMP3
	}
	settings.UseYearSubfolders = m.years

	return func() tea.Msg {
		tools, err := diag.NewChecker().Check(settings.OutputDir)
		if err != nil {
			return StartErrMsg{Err: err}
		}

		store, err := ledger.Open(settings.LedgerPath)
		if err != nil {
			return StartErrMsg{Err: err}
		}

		events := make(chan batch.Event, 64)
		engine := ytdlp.NewEngine(tools.YtDlpPath, &settings)
		resolver := resolve.NewResolver(engine)

		orchestrator := batch.NewOrchestrator(resolver, nil, func(e batch.Event) {
			publishEvent(events, e)
		})
		executor := download.NewExecutor(&settings, engine, store,
			tools.FFmpegPath, settings.OutputDir, orchestrator.ExecutorCallbacks())
		orchestrator.Bind(executor)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			defer close(events)
			orchestrator.Run(ctx, strings.Split(rawInput, "\n"))
		}()

		return BatchStartedMsg{
			Orchestrator: orchestrator,
			Events:       events,
			Store:        store,
			Cancel:       cancel,
		}
	}
}

// publishEvent forwards a batch event to the UI. Progress and
// thumbnail updates are dropped when the channel is full so a slow
// terminal never stalls the batch worker; a newer update always
// follows. Status lines, failures and completion are delivered
// unconditionally.
func publishEvent(events chan batch.Event, e batch.Event) {
	switch e.Type {
	case batch.EventItemProgress, batch.EventOverallProgress, batch.EventThumbnail:
		select {
		case events <- e:
		default:
		}
	default:
		events <- e
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Download All Of It"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Batch video downloader"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter video or playlist URLs, one per line:"))
	b.WriteString("\n\n")
	b.WriteString(m.urls.View())
	b.WriteString("\n\n")

	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Audio only, MP3 (a)\n", check(m.audioOnly)))
	b.WriteString(fmt.Sprintf("  %s Year subfolders (y)\n", check(m.years)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", check(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.currentItem != "" {
		b.WriteString(itemStyle.Render(m.currentItem))
	} else {
		b.WriteString(subtitleStyle.Render("Resolving URLs..."))
	}
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render("Current item"))
	b.WriteString("\n")
	b.WriteString(m.itemProgress.ViewAs(m.itemPercent))
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render("Overall"))
	b.WriteString("\n")
	b.WriteString(m.overallProgress.ViewAs(m.overallPercent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Items: %d/%d", m.completed, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	summary := fmt.Sprintf("Batch finished\n\nItems: %d/%d\nFailures: %d",
		m.completed, m.total, len(m.failures))
	b.WriteString(boxStyle.Render(summary))
	b.WriteString("\n")

	if len(m.failures) > 0 {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("Unavailable or failed:"))
		b.WriteString("\n")
		for _, f := range m.failures {
			b.WriteString(dimStyle.Render("  " + f.String()))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Cannot start batch:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "ctrl+s: start • tab: toggle focus • a/y/v: options • esc: quit"
	case StateRunning:
		return "esc: stop"
	case StateComplete, StateError:
		return "q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
