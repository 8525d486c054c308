// Package tui is the interactive terminal chat. It renders the session
// transcript and drives the session's flows from the Bubble Tea event loop:
// state changes happen in Update, network round-trips run as commands.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/papercomputeco/archiveai/session"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// header line + blank, composer (3 rows with border), help line
	chromeHeight = 6
)

// Options tweak the chat's presentation.
type Options struct {
	// GlamourStyle is the markdown style for assistant messages
	// ("dark", "light", "notty", ...). Empty means "dark".
	GlamourStyle string

	// StartDir is where the file picker opens. Empty means the working
	// directory.
	StartDir string
}

type greetingMsg struct {
	text string
	err  error
}

type queryMsg struct {
	text string
	err  error
}

type uploadMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model for the chat.
type Model struct {
	ctx     context.Context
	session *session.Session
	logger  *zap.Logger

	input   textinput.Model
	view    viewport.Model
	spinner spinner.Model
	picker  filepicker.Model
	picking bool

	glamourStyle string
	renderer     *glamour.TermRenderer

	width  int
	height int
}

// New creates the chat model. ctx bounds every request the chat issues.
func New(ctx context.Context, sess *session.Session, logger *zap.Logger, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.Prompt = "> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf"}
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}

	vp := viewport.New(defaultWidth, defaultHeight-chromeHeight)
	// Letters belong to the composer; only paging keys scroll.
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	style := opts.GlamourStyle
	if style == "" {
		style = "dark"
	}

	m := Model{
		ctx:          ctx,
		session:      sess,
		logger:       logger,
		input:        input,
		view:         vp,
		spinner:      sp,
		picker:       fp,
		glamourStyle: style,
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init starts the greeting flow.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.picker.Init()}

	if m.session.BeginGreeting() {
		ctx, sess := m.ctx, m.session
		cmds = append(cmds,
			func() tea.Msg {
				text, err := sess.DoGreeting(ctx)
				return greetingMsg{text: text, err: err}
			},
			m.spinner.Tick,
		)
	}

	return tea.Batch(cmds...)
}

// Update handles one event.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case greetingMsg:
		m.session.SettleGreeting(msg.text, msg.err)
		m.refresh()
		return m, nil

	case queryMsg:
		m.session.SettleQuery(msg.text, msg.err)
		m.refresh()
		return m, nil

	case uploadMsg:
		m.session.SettleUpload(msg.path, msg.err)
		m.picker.Path = ""
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		// Let the tick chain die once nothing is pending.
		if !m.session.PendingResponse() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	// Directory listings and other picker-internal messages.
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlO:
		if m.session.PendingUpload() {
			return m, nil
		}
		m.picking = true
		return m, m.picker.Init()

	case tea.KeyEnter:
		return m.submit()

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	// The composer is disabled while a response is pending.
	if m.session.PendingResponse() {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetDraft(m.input.Value())
	m.applyComposerStyle()
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return m, m.startUpload(path)
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.session.SetDraft(m.input.Value())
	prompt, ok := m.session.BeginSubmit()
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.applyComposerStyle()
	m.refresh()

	ctx, sess := m.ctx, m.session
	query := func() tea.Msg {
		text, err := sess.DoQuery(ctx, prompt)
		return queryMsg{text: text, err: err}
	}
	return m, tea.Batch(query, m.spinner.Tick)
}

// startUpload selects path and begins uploading it. It returns nil when the
// upload control is busy.
func (m *Model) startUpload(path string) tea.Cmd {
	if !m.session.SelectFile(path) {
		return nil
	}
	path, ok := m.session.BeginUpload()
	if !ok {
		return nil
	}
	m.logger.Debug("upload started", zap.String("path", path))

	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		return uploadMsg{path: path, err: sess.DoUpload(ctx, path)}
	}
}

func (m *Model) applyComposerStyle() {
	if m.session.FollowUp() {
		m.input.TextStyle = followUpStyle
	} else {
		m.input.TextStyle = lipgloss.NewStyle()
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	m.view.Width = width
	m.view.Height = max(height-chromeHeight, 1)
	m.input.Width = max(width-6, 10)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.glamourStyle),
		glamour.WithWordWrap(bubbleWidth(width)),
	)
	if err != nil {
		m.logger.Warn("markdown renderer unavailable", zap.Error(err))
		r = nil
	}
	m.renderer = r

	m.refresh()
}

// refresh re-renders the transcript and scrolls to the newest entry.
func (m *Model) refresh() {
	m.view.SetContent(m.renderTranscript())
	m.view.GotoBottom()
}

// bubbleWidth is the widest a message may render: 80% of the screen.
func bubbleWidth(width int) int {
	return max(width*4/5, 10)
}

func trimNewlines(s string) string {
	return strings.Trim(s, "\n")
}
