package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dori/dragboard/internal/app"
	"github.com/dori/dragboard/internal/drag"
	"github.com/dori/dragboard/internal/geom"
	"github.com/dori/dragboard/internal/ui/theme"
	"github.com/dori/dragboard/internal/ui/views"
)

const (
	headerLines = 1
	footerLines = 2
)

// RootModel is the main application model: header, board, footer and the
// help overlay
type RootModel struct {
	logger *log.Logger
	keys   KeyMap
	help   help.Model
	width  int
	height int

	board       *views.BoardView
	helpVisible bool

	// Status message
	statusMsg string
}

// NewRootModel creates a new root model. initialColumn selects the column
// shown first; empty shows the first one.
func NewRootModel(application *app.App, initialColumn string) RootModel {
	cfg := application.Config

	var estimator drag.Estimator = drag.UniformEstimator{}
	if cfg.Drag.HitTest == "measured" {
		estimator = drag.MeasuredEstimator{}
	}
	policy, _ := drag.ParseStartPolicy(cfg.Drag.StartPolicy)

	if t, ok := theme.ByName(cfg.Theme); ok {
		theme.SetTheme(t)
	}

	h := help.New()
	h.ShowAll = false

	return RootModel{
		logger: application.Logger,
		keys:   DefaultKeyMap(),
		help:   h,
		board: views.NewBoardView(application.DB, views.BoardOptions{
			InitialColumn: initialColumn,
			Hold:          cfg.Drag.Hold.Duration(),
			Slop:          cfg.Drag.Slop,
			Estimator:     estimator,
			StartPolicy:   policy,
			Logger:        application.Logger,
		}),
	}
}

// Board returns the board view
func (m RootModel) Board() *views.BoardView {
	return m.board
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return m.board.Init()
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.board.SetBounds(m.boardBounds())
		return m, nil

	case tea.KeyMsg:
		// Clear status on any keypress
		m.statusMsg = ""

		isInputMode := m.board.IsInputMode()

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			return m, m.cycleTheme()
		}

		if m.helpVisible {
			if msg.String() == "esc" || key.Matches(msg, m.keys.Help) {
				m.helpVisible = false
			}
			return m, nil
		}

		if !isInputMode && !m.board.Dragging() && key.Matches(msg, m.keys.Help) {
			m.helpVisible = true
			return m, nil
		}

	case tea.MouseMsg:
		if m.helpVisible {
			return m, nil
		}

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	return m, m.board.Update(msg)
}

// boardBounds is the screen area between header and footer
func (m RootModel) boardBounds() geom.Rect {
	return geom.R(0, headerLines, m.width, max(m.height-headerLines-footerLines, 0))
}

// cycleTheme switches to the next theme
func (m RootModel) cycleTheme() tea.Cmd {
	next := theme.Next()
	theme.SetTheme(next)
	m.logger.Debug("theme changed", "theme", next.Name)
	return func() tea.Msg {
		return ThemeChangedMsg{ThemeName: next.Name}
	}
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentHeight := m.boardBounds().Size.Height

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.board.View()
	}

	// Ensure content fills available space
	content = lipgloss.NewStyle().MaxHeight(contentHeight).Render(content)
	if lines := lipgloss.Height(content); lines < contentHeight {
		content += strings.Repeat("\n", contentHeight-lines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("dragboard")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)

	column := ""
	if col := m.board.ActiveColumn(); col != nil {
		column = viewStyle.Render(fmt.Sprintf("[%s]", col.Title))
	}
	themeIndicator := viewStyle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, column)
	gap := max(m.width-lipgloss.Width(leftSide)-lipgloss.Width(themeIndicator), 0)
	return leftSide + strings.Repeat(" ", gap) + themeIndicator
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	boardStatus, boardErr := m.board.Status()

	var statusLine string
	switch {
	case boardErr != nil:
		statusLine = styles.Error.Render(boardErr.Error())
	case m.statusMsg != "":
		statusLine = styles.Status.Render(m.statusMsg)
	case boardStatus != "":
		statusLine = styles.Status.Render(boardStatus)
	}

	hint := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var hints string
	switch {
	case m.helpVisible:
		hints = hint("esc", "close help")
	case m.board.Mode() == views.BoardModeConfirmDelete:
		hints = hint("y", "delete") + sep + hint("n", "keep")
	case m.board.IsInputMode():
		hints = hint("enter", "confirm") + sep + hint("esc", "cancel")
	case m.board.Dragging():
		hints = hint("move", "reorder") + sep + hint("release", "drop") + sep + hint("esc", "cancel")
	default:
		hints = m.help.View(m.keys)
	}

	return styles.Footer.Render(statusLine) + "\n" + styles.Footer.Render(hints)
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	full := m.help
	full.ShowAll = true

	var b strings.Builder
	b.WriteString(titleStyle.Render("Dragboard Help"))
	b.WriteString("\n")
	b.WriteString(full.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(theme.Current.Styles.HelpDesc.Render(
		"Press and hold a card, then drag it to a new position. Release to drop."))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
