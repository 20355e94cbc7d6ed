// Package ui is the bubbletea terminal interface: a library of stories, an
// entry form per story and a story reader.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/dpshade/pocket-madlibs/internal/clipboard"
	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
	"github.com/dpshade/pocket-madlibs/internal/service"
)

// createGlamourRenderer creates a glamour renderer with improved contrast handling
func createGlamourRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()
	var styleOption glamour.TermRendererOption
	switch {
	case profile != termenv.TrueColor && profile != termenv.ANSI256:
		styleOption = glamour.WithAutoStyle()
	case lipgloss.HasDarkBackground():
		styleOption = glamour.WithStandardStyle("dark")
	default:
		styleOption = glamour.WithStandardStyle("light")
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

type templatesLoadedMsg struct {
	summaries []models.TemplateSummary
}

func loadTemplatesCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		return templatesLoadedMsg{summaries: svc.ListTemplates()}
	}
}

// ViewMode represents the current view in the TUI
type ViewMode int

const (
	ViewLibrary ViewMode = iota
	ViewEntry
	ViewStory
)

// Model represents the TUI application state
type Model struct {
	service  *service.Service
	logger   *zap.Logger
	viewMode ViewMode

	// UI components
	templateList list.Model
	viewport     viewport.Model
	help         help.Model
	keys         KeyMap

	form         *EntryForm
	resetConfirm *ConfirmModal

	errors *apperrors.TUIErrorHandler

	story           *models.Story
	storyFocus      int // index into the story's answer segments, -1 for none
	glamourRenderer *glamour.TermRenderer
	copyFn          func(string) error
	canCopy         bool // a clipboard utility is installed

	width  int
	height int

	statusMsg     string
	statusType    string
	statusTimeout int

	showHelp bool
}

// KeyMap defines all key bindings
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Read      key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Search    key.Binding
	Next      key.Binding
	Prev      key.Binding
	Submit    key.Binding
	Reset     key.Binding
	Example   key.Binding
	Edit      key.Binding
	Copy      key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Read, k.Search},
		{k.Next, k.Prev, k.Submit, k.Reset, k.Example},
		{k.Edit, k.Copy, k.Back, k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "play"),
	),
	Read: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "read story"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("Shift+Tab", "previous"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("Ctrl+s", "read my story"),
	),
	Reset: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("Ctrl+r", "reset answers"),
	),
	Example: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("Ctrl+e", "show example"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit answers"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy"),
	),
}

// NewModel creates a new TUI model
func NewModel(svc *service.Service, logger *zap.Logger) (*Model, error) {
	initializeColors()
	if logger == nil {
		logger = zap.NewNop()
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 80, 20) // Resized on the first WindowSizeMsg
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	keyMap := list.DefaultKeyMap()
	keyMap.Filter = keys.Search
	keyMap.Quit = key.NewBinding(key.WithDisabled())
	keyMap.ForceQuit = key.NewBinding(key.WithDisabled())
	l.KeyMap = keyMap

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	renderer, err := createGlamourRenderer(60)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}

	logger = logger.Named("ui")
	return &Model{
		service:         svc,
		logger:          logger,
		errors:          apperrors.NewTUIErrorHandler(false, logger),
		viewMode:        ViewLibrary,
		templateList:    l,
		viewport:        vp,
		help:            help.New(),
		keys:            keys,
		storyFocus:      -1,
		glamourRenderer: renderer,
		copyFn:          clipboard.Copy,
		canCopy:         clipboard.New().Available(),
	}, nil
}

// Run starts the interface on the terminal and blocks until it quits
func Run(svc *service.Service, logger *zap.Logger) error {
	m, err := NewModel(svc, logger)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal interface failed: %w", err)
	}
	return nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return loadTemplatesCmd(m.service)
}

// tickMsg is sent to clear the status message
type tickMsg time.Time

// clearStatusCmd returns a command that clears the status message after a delay
func clearStatusCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) setStatus(text, statusType string) tea.Cmd {
	m.statusMsg = text
	m.statusType = statusType
	m.statusTimeout = 3
	return clearStatusCmd()
}

// reportError logs err and shows it on the status line
func (m *Model) reportError(err error) tea.Cmd {
	if !apperrors.IsAppError(err) {
		m.logger.Warn("Action failed", zap.Error(err))
		text, _, _ := strings.Cut(err.Error(), "\n")
		return m.setStatus("❌ "+text, "error")
	}
	_ = m.errors.HandleError(err)
	icon, _ := m.errors.GetErrorStyle(err)
	return m.setStatus(icon+" "+m.errors.FormatError(err), "error")
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.statusTimeout > 0 {
			m.statusTimeout--
			if m.statusTimeout == 0 {
				m.statusMsg = ""
			} else {
				return m, clearStatusCmd()
			}
		}
		return m, nil

	case templatesLoadedMsg:
		items := make([]list.Item, len(msg.summaries))
		for i, s := range msg.summaries {
			items[i] = s
		}
		cmd := m.templateList.SetItems(items)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		switch m.viewMode {
		case ViewEntry:
			return m.updateEntry(msg)
		case ViewStory:
			return m.updateStory(msg)
		default:
			return m.updateLibrary(msg)
		}
	}

	if m.viewMode == ViewLibrary {
		var cmd tea.Cmd
		m.templateList, cmd = m.templateList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// resize lays out the components for a new terminal size
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// title, spacing, help and status rows
	const reservedHeight = 8
	available := max(height-reservedHeight, 5)

	m.templateList.SetSize(width, available)

	viewportWidth := max(width-8, 40)
	m.viewport.Width = viewportWidth
	m.viewport.Height = available
	if renderer, err := createGlamourRenderer(viewportWidth - 4); err == nil {
		m.glamourRenderer = renderer
	}
	if m.viewMode == ViewStory {
		m.renderStory()
	}
}

func (m Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While filtering every key belongs to the filter input
	if m.templateList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.templateList, cmd = m.templateList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		if s, ok := m.selected(); ok {
			return m, m.openEntry(s.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Read):
		s, ok := m.selected()
		if !ok {
			return m, nil
		}
		if !s.Completed {
			return m, m.setStatus("Fill in the words first (Enter to play)", "warning")
		}
		return m, m.openStory(s.ID)
	}

	var cmd tea.Cmd
	m.templateList, cmd = m.templateList.Update(msg)
	return m, cmd
}

func (m Model) selected() (models.TemplateSummary, bool) {
	s, ok := m.templateList.SelectedItem().(models.TemplateSummary)
	return s, ok
}

// openEntry switches to the form for a template, loading saved answers
func (m *Model) openEntry(id string) tea.Cmd {
	ctrl, err := m.service.NewEntry(id)
	if err != nil {
		return m.reportError(err)
	}
	m.form = NewEntryForm(ctrl)
	m.resetConfirm = NewConfirmModal("Reset answers?",
		fmt.Sprintf("Clear every word you entered for %q?", ctrl.Template().Name))
	m.viewMode = ViewEntry
	return nil
}

// openStory switches to the reader for a completed template
func (m *Model) openStory(id string) tea.Cmd {
	story, err := m.service.Story(id)
	if err != nil {
		return m.reportError(err)
	}
	m.story = story
	m.storyFocus = -1
	m.viewMode = ViewStory
	m.renderStory()
	m.viewport.GotoTop()
	return nil
}

func (m *Model) backToLibrary() tea.Cmd {
	m.viewMode = ViewLibrary
	m.form = nil
	m.resetConfirm = nil
	m.story = nil
	return loadTemplatesCmd(m.service)
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.form.Controller()

	if m.resetConfirm.IsActive() {
		m.resetConfirm.Update(msg)
		switch {
		case m.resetConfirm.Confirmed():
			if err := ctrl.ConfirmReset(); err != nil {
				return m, m.reportError(err)
			}
			m.form.Clear()
			m.logger.Info("Answers reset", zap.String("template_id", ctrl.Template().ID))
			return m, m.setStatus("Answers cleared", "success")
		case m.resetConfirm.Cancelled():
			ctrl.CancelReset()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.backToLibrary()
	case key.Matches(msg, m.keys.Reset):
		ctrl.RequestReset()
		m.resetConfirm.SetActive(true)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if err := m.form.Submit(); err != nil {
			text := "Please fill in all the words before reading your story"
			if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Details != "" {
				text += " (" + appErr.Details + ")"
			}
			return m, m.setStatus(text, "error")
		}
		m.logger.Info("Answers submitted", zap.String("template_id", ctrl.Template().ID))
		return m, m.openStory(ctrl.Template().ID)
	}

	return m, m.form.Update(msg)
}

func (m Model) updateStory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m, m.backToLibrary()
	case key.Matches(msg, m.keys.Next):
		m.cycleFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.cycleFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		return m, m.openEntry(m.story.TemplateID)
	case key.Matches(msg, m.keys.Copy):
		if err := m.copyFn(m.story.PlainText()); err != nil {
			return m, m.reportError(err)
		}
		return m, m.setStatus("Copied to clipboard!", "success")
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// cycleFocus moves the highlighted answer and re-renders the story
func (m *Model) cycleFocus(delta int) {
	n := len(m.story.AnswerSegments())
	if n == 0 {
		return
	}
	if m.storyFocus < 0 && delta < 0 {
		m.storyFocus = n - 1
	} else {
		m.storyFocus = ((m.storyFocus+delta)%n + n) % n
	}
	m.renderStory()
}

// FocusedAnswer returns the answer segment highlighted in the story view
func (m Model) FocusedAnswer() (models.Segment, bool) {
	if m.story == nil || m.storyFocus < 0 {
		return models.Segment{}, false
	}
	answers := m.story.AnswerSegments()
	if m.storyFocus >= len(answers) {
		return models.Segment{}, false
	}
	return answers[m.storyFocus], true
}

func (m *Model) renderStory() {
	if m.story == nil {
		return
	}
	markdown := m.story.MarkdownHighlight(m.storyFocus)
	rendered, err := m.glamourRenderer.Render(markdown)
	if err != nil {
		m.logger.Warn("Failed to render story", zap.Error(err))
		rendered = m.story.PlainText()
	}
	m.viewport.SetContent(rendered)
}

func (m Model) View() string {
	var mainView string
	switch m.viewMode {
	case ViewEntry:
		if m.resetConfirm != nil && m.resetConfirm.IsActive() {
			return CenterModal(m.resetConfirm.View(), m.width, m.height)
		}
		mainView = m.renderEntryView()
	case ViewStory:
		mainView = m.renderStoryView()
	default:
		mainView = m.renderLibraryView()
	}

	if m.statusMsg != "" {
		statusBar := CreateStatus(m.statusMsg, m.statusType)
		return AddMainPadding(lipgloss.JoinVertical(lipgloss.Left, mainView, statusBar))
	}
	return AddMainPadding(mainView)
}

func (m Model) renderLibraryView() string {
	elements := []string{CreateHeader("Mad Libs", fmt.Sprintf("%d stories", len(m.templateList.Items())))}
	elements = append(elements, m.templateList.View())
	if m.showHelp {
		elements = append(elements, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		elements = append(elements, CreateContextualHelp([]string{
			"enter play • r read • / filter • ? help • q quit",
		}, m.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, elements...)
}

func (m Model) renderEntryView() string {
	t := m.form.Controller().Template()
	elements := []string{CreateHeader(t.Name, m.form.Controller().State().String())}
	if t.Description != "" {
		elements = append(elements, StyleTextMuted.Render(t.Description))
	}
	elements = append(elements, "", m.form.View())
	elements = append(elements, CreateContextualHelp([]string{
		"Tab/↓ next • Shift+Tab/↑ previous • Ctrl+e example",
		"Ctrl+s read my story • Ctrl+r reset • Esc back",
	}, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, elements...)
}

func (m Model) renderStoryView() string {
	elements := []string{CreateHeader(m.story.Title, ""), m.viewport.View()}

	if seg, ok := m.FocusedAnswer(); ok {
		elements = append(elements, StyleInfo.Render(
			fmt.Sprintf("%q filled the blank: %s", strings.TrimSpace(seg.Text), seg.Label)))
	}
	hints := "Tab/Shift+Tab highlight words • e edit • "
	if m.canCopy {
		hints += "c copy • "
	}
	hints += "↑/↓ scroll • Esc back • q quit"
	elements = append(elements, CreateContextualHelp([]string{hints}, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, elements...)
}
