package views

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/dori/dragboard/internal/db"
	"github.com/dori/dragboard/internal/drag"
	"github.com/dori/dragboard/internal/geom"
	"github.com/dori/dragboard/internal/model"
	"github.com/dori/dragboard/internal/ui/theme"
)

// Local message types for the board view
type (
	boardLoadedMsg struct {
		columns []model.Column
		err     error
	}
	boardErrorMsg struct{ err error }
	orderSavedMsg struct {
		columnID string
		revision int64
		err      error
	}
)

// BoardMode represents the current input mode
type BoardMode int

const (
	BoardModeNormal BoardMode = iota
	BoardModeAdd
	BoardModeRename
	BoardModeConfirmDelete
)

// sidebar tab: one rune plus padding, then the border and a spacer
const (
	tabWidth     = 3
	sidebarWidth = tabWidth + 1
	contentLeft  = sidebarWidth + 1
	headingLines = 1
	inputLines   = 3
)

// BoardOptions configures the drag behavior of the board's card list
type BoardOptions struct {
	InitialColumn string
	Hold          time.Duration
	Slop          int
	Estimator     drag.Estimator
	StartPolicy   drag.StartPolicy
	Logger        *log.Logger
}

// BoardView shows one column at a time: column titles down the left edge,
// the active column's cards as a reorderable list on the right
type BoardView struct {
	db     *db.DB
	opts   BoardOptions
	logger *log.Logger

	bounds geom.Rect

	columns []model.Column
	active  int
	loaded  bool

	list        *ReorderableList[model.Card]
	unsubscribe func()
	targets     []*drag.DropTarget[model.Card]
	targetCols  []int

	// Status line
	status string
	err    error

	// Input mode
	mode      BoardMode
	textInput textinput.Model

	editCardID   string
	deleteCardID string

	pending []tea.Cmd
}

// NewBoardView creates a board over the store
func NewBoardView(database *db.DB, opts BoardOptions) *BoardView {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256

	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &BoardView{
		db:        database,
		opts:      opts,
		logger:    opts.Logger,
		textInput: ti,
		active:    -1,
	}
}

// Init loads the board
func (v *BoardView) Init() tea.Cmd {
	return v.loadBoard()
}

// loadBoard loads every column and its cards
func (v *BoardView) loadBoard() tea.Cmd {
	database := v.db
	return func() tea.Msg {
		columns, err := database.GetBoard()
		return boardLoadedMsg{columns: columns, err: err}
	}
}

// SetBounds places the board on screen
func (v *BoardView) SetBounds(r geom.Rect) {
	v.bounds = r
	v.layout()
}

// Columns returns the board as last loaded, with local reorders applied
func (v *BoardView) Columns() []model.Column {
	return v.columns
}

// ActiveColumn returns the column being shown, or nil before loading
func (v *BoardView) ActiveColumn() *model.Column {
	if v.active < 0 || v.active >= len(v.columns) {
		return nil
	}
	return &v.columns[v.active]
}

// List returns the active column's card list, or nil before loading
func (v *BoardView) List() *ReorderableList[model.Card] {
	return v.list
}

// Status returns the status line and the last error
func (v *BoardView) Status() (string, error) {
	return v.status, v.err
}

// Mode returns the current input mode
func (v *BoardView) Mode() BoardMode {
	return v.mode
}

// IsInputMode returns true if the board is capturing keys
func (v *BoardView) IsInputMode() bool {
	return v.mode != BoardModeNormal
}

// Dragging reports whether a card is lifted
func (v *BoardView) Dragging() bool {
	return v.list != nil && v.list.Dragging()
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case boardLoadedMsg:
		if msg.err != nil {
			v.setError(fmt.Errorf("failed to load board: %w", msg.err))
			break
		}
		v.applyBoard(msg.columns)

	case boardErrorMsg:
		v.setError(msg.err)

	case orderSavedMsg:
		switch {
		case errors.Is(msg.err, db.ErrStaleRevision):
			v.logger.Debug("stale order discarded", "column", msg.columnID, "revision", msg.revision)
		case msg.err != nil:
			v.setError(fmt.Errorf("failed to save order: %w", msg.err))
		default:
			v.logger.Debug("order saved", "column", msg.columnID, "revision", msg.revision)
		}

	case ReorderedMsg[model.Card]:
		v.logger.Debug("cards reordered", "column", msg.ListID, "from", msg.From, "to", msg.To)

	case DroppedMsg[model.Card]:
		v.status = fmt.Sprintf("dropped %s at %d,%d", msg.Item.Title, msg.Pos.X, msg.Pos.Y)
		v.err = nil
		v.logger.Info("card dropped", "card", msg.Item.Title, "column", msg.ListID, "x", msg.Pos.X, "y", msg.Pos.Y)

	case tea.MouseMsg:
		cmds = append(cmds, v.handleMouse(msg))

	case tea.KeyMsg:
		cmds = append(cmds, v.handleKey(msg))

	default:
		if v.list != nil {
			cmds = append(cmds, v.list.Update(msg))
		}
	}

	cmds = append(cmds, v.pending...)
	v.pending = nil
	return tea.Batch(cmds...)
}

func (v *BoardView) setError(err error) {
	v.err = err
	v.logger.Error("board error", "err", err)
}

// applyBoard installs freshly loaded columns, keeping the active column
// and cursor where possible
func (v *BoardView) applyBoard(columns []model.Column) {
	var activeID string
	cursor := 0
	if col := v.ActiveColumn(); col != nil {
		activeID = col.ID
		cursor = v.list.Cursor()
	} else if !v.loaded && v.opts.InitialColumn != "" {
		for _, c := range columns {
			if strings.EqualFold(c.Title, v.opts.InitialColumn) {
				activeID = c.ID
			}
		}
		if activeID == "" {
			v.status = fmt.Sprintf("no column named %q", v.opts.InitialColumn)
		}
	}

	// saves still in flight carry revisions newer than the store's; their
	// order wins over the one just read
	for i := range columns {
		if old := v.columnByID(columns[i].ID); old != nil && old.Revision > columns[i].Revision {
			columns[i].Revision = old.Revision
			columns[i].Cards = orderLike(columns[i].Cards, old.Cards)
		}
	}

	v.columns = columns
	v.loaded = true

	next := 0
	for i, c := range columns {
		if c.ID == activeID {
			next = i
		}
	}
	if len(columns) == 0 {
		next = -1
	}

	if v.list != nil && next >= 0 && columns[next].ID == v.list.ID() {
		v.active = next
		v.list.SetItems(columns[next].Cards)
		v.list.SetCursor(cursor)
		v.layout()
		return
	}
	v.activate(next)
}

// activate shows column i with a new list identity
func (v *BoardView) activate(i int) {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	v.active = i
	v.list = nil
	if i < 0 || i >= len(v.columns) {
		v.layout()
		return
	}

	colID := v.columns[i].ID
	v.list = NewReorderableList(ListOptions[model.Card]{
		ID:    colID,
		Items: v.columns[i].Cards,
		OnMove: func(from, to int) []model.Card {
			col := v.columnByID(colID)
			if col == nil {
				return nil
			}
			col.Cards = drag.Reorder(col.Cards, from, to)
			v.pending = append(v.pending, v.saveOrder(col))
			return col.Cards
		},
		Render:      v.renderCard,
		Hold:        v.opts.Hold,
		Slop:        v.opts.Slop,
		Estimator:   v.opts.Estimator,
		StartPolicy: v.opts.StartPolicy,
		Logger:      v.logger,
	})
	v.unsubscribe = v.list.Controller().Subscribe(v.checkTargets)
	v.layout()
	v.logger.Debug("column shown", "column", v.columns[i].Title, "cards", len(v.columns[i].Cards))
}

func (v *BoardView) columnByID(id string) *model.Column {
	for i := range v.columns {
		if v.columns[i].ID == id {
			return &v.columns[i]
		}
	}
	return nil
}

// layout positions the list and rebuilds the drop targets
func (v *BoardView) layout() {
	if v.list == nil {
		v.targets = nil
		v.targetCols = nil
		return
	}

	height := v.bounds.Size.Height - headingLines
	if v.mode == BoardModeAdd || v.mode == BoardModeRename {
		height -= inputLines
	}
	listBounds := geom.R(
		v.bounds.Min.X+contentLeft,
		v.bounds.Min.Y+headingLines,
		max(v.bounds.Size.Width-contentLeft, 0),
		max(height, 0),
	)
	v.list.SetBounds(listBounds)

	// drop targets live in the list's coordinate space
	v.targets = v.targets[:0]
	v.targetCols = v.targetCols[:0]
	for i, r := range v.tabRects() {
		if i == v.active {
			continue
		}
		colID := v.columns[i].ID
		local := geom.Rect{Min: r.Min.Sub(listBounds.Min), Size: r.Size}
		v.targets = append(v.targets, drag.NewDropTarget(local, func(card model.Card) {
			v.dropInto(colID, card)
		}))
		v.targetCols = append(v.targetCols, i)
	}
	v.checkTargets(v.list.Controller().State())
}

// tabRects returns the screen rectangle of each sidebar title
func (v *BoardView) tabRects() []geom.Rect {
	rects := make([]geom.Rect, len(v.columns))
	y := v.bounds.Min.Y
	for i, c := range v.columns {
		h := max(len([]rune(c.Title)), 1)
		rects[i] = geom.R(v.bounds.Min.X, y, tabWidth, h)
		y += h + 1
	}
	return rects
}

// checkTargets runs every drop target against the drag state
func (v *BoardView) checkTargets(s drag.State[model.Card]) {
	for _, t := range v.targets {
		t.Check(s)
	}
}

// hoveredColumn returns the column whose title the drag is over, or -1
func (v *BoardView) hoveredColumn() int {
	if !v.Dragging() {
		return -1
	}
	for i, t := range v.targets {
		if t.InBounds() {
			return v.targetCols[i]
		}
	}
	return -1
}

func (v *BoardView) dropInto(columnID string, card model.Card) {
	col := v.columnByID(columnID)
	if col == nil {
		return
	}
	v.status = fmt.Sprintf("moved %s to %s", card.Title, col.Title)
	v.logger.Info("card moved", "card", card.Title, "column", col.Title)
	v.pending = append(v.pending, v.moveCard(card.ID, columnID))
}

func (v *BoardView) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && !v.Dragging() && v.mode == BoardModeNormal {
		p := geom.Pt(msg.X, msg.Y)
		for i, r := range v.tabRects() {
			if r.Contains(p) {
				if i != v.active {
					v.activate(i)
				}
				return nil
			}
		}
	}
	if v.list == nil {
		return nil
	}
	return v.list.Update(msg)
}

func (v *BoardView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {
	case BoardModeAdd:
		return v.handleAddMode(msg)
	case BoardModeRename:
		return v.handleRenameMode(msg)
	case BoardModeConfirmDelete:
		return v.handleConfirmDeleteMode(msg)
	}
	return v.handleNormalMode(msg)
}

// handleNormalMode handles keys in normal mode
func (v *BoardView) handleNormalMode(msg tea.KeyMsg) tea.Cmd {
	if v.list == nil {
		return nil
	}
	if v.list.Dragging() {
		return v.list.Update(msg)
	}

	switch msg.String() {
	// Column navigation
	case "h", "left":
		if v.active > 0 {
			v.activate(v.active - 1)
		}
		return nil

	case "l", "right":
		if v.active < len(v.columns)-1 {
			v.activate(v.active + 1)
		}
		return nil

	case "tab":
		v.activate((v.active + 1) % len(v.columns))
		return nil

	case "shift+tab":
		v.activate((v.active + len(v.columns) - 1) % len(v.columns))
		return nil

	// Add card
	case "a":
		v.mode = BoardModeAdd
		v.textInput.SetValue("")
		v.textInput.Placeholder = "New card..."
		v.textInput.Focus()
		v.layout()
		return nil

	// Rename card
	case "enter":
		if card, ok := v.cursorCard(); ok {
			v.mode = BoardModeRename
			v.editCardID = card.ID
			v.textInput.SetValue(card.Title)
			v.textInput.Placeholder = ""
			v.textInput.Focus()
			v.textInput.CursorEnd()
			v.layout()
		}
		return nil

	// Delete card
	case "d":
		if card, ok := v.cursorCard(); ok {
			v.deleteCardID = card.ID
			v.mode = BoardModeConfirmDelete
		}
		return nil
	}

	return v.list.Update(msg)
}

func (v *BoardView) cursorCard() (model.Card, bool) {
	items := v.list.Items()
	i := v.list.Cursor()
	if i < 0 || i >= len(items) {
		return model.Card{}, false
	}
	return items[i], true
}

// isCursorCard reports whether card is under the keyboard cursor of a list
// at rest
func (v *BoardView) isCursorCard(card model.Card) bool {
	if v.list == nil || v.list.Dragging() {
		return false
	}
	c, ok := v.cursorCard()
	return ok && c.ID == card.ID
}

func (v *BoardView) leaveInput() {
	v.mode = BoardModeNormal
	v.textInput.Blur()
	v.editCardID = ""
	v.layout()
}

// handleAddMode handles keys in add mode
func (v *BoardView) handleAddMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(v.textInput.Value())
		if title == "" {
			return nil
		}
		v.leaveInput()
		return v.createCard(v.columns[v.active].ID, title)
	case "esc":
		v.leaveInput()
		return nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return cmd
}

// handleRenameMode handles keys in rename mode
func (v *BoardView) handleRenameMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(v.textInput.Value())
		if title == "" || v.editCardID == "" {
			return nil
		}
		cardID := v.editCardID
		v.leaveInput()
		return v.renameCard(cardID, title)
	case "esc":
		v.leaveInput()
		return nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return cmd
}

// handleConfirmDeleteMode handles keys in delete confirmation mode
func (v *BoardView) handleConfirmDeleteMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		v.mode = BoardModeNormal
		cardID := v.deleteCardID
		v.deleteCardID = ""
		return v.deleteCard(cardID)
	case "n", "N", "esc":
		v.mode = BoardModeNormal
		v.deleteCardID = ""
	}
	return nil
}

// saveOrder persists col's order as it is now under a new revision. Saves
// run concurrently; the store keeps only the highest revision.
func (v *BoardView) saveOrder(col *model.Column) tea.Cmd {
	col.Revision++
	columnID := col.ID
	revision := col.Revision
	ids := model.CardIDs(col.Cards)
	database := v.db

	return func() tea.Msg {
		err := database.SaveOrder(columnID, revision, ids)
		return orderSavedMsg{columnID: columnID, revision: revision, err: err}
	}
}

// orderLike returns loaded arranged in the order of the same cards in
// local. Cards local does not know keep their stored order after them.
func orderLike(loaded, local []model.Card) []model.Card {
	rank := make(map[string]int, len(local))
	for i, c := range local {
		rank[c.ID] = i
	}
	out := make([]model.Card, 0, len(loaded))
	var rest []model.Card
	for _, c := range loaded {
		if _, ok := rank[c.ID]; ok {
			out = append(out, c)
		} else {
			rest = append(rest, c)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Card) int {
		return rank[a.ID] - rank[b.ID]
	})
	return append(out, rest...)
}

func (v *BoardView) createCard(columnID, title string) tea.Cmd {
	database := v.db
	return func() tea.Msg {
		if _, err := database.CreateCard(columnID, title); err != nil {
			return boardErrorMsg{err: err}
		}
		columns, err := database.GetBoard()
		return boardLoadedMsg{columns: columns, err: err}
	}
}

func (v *BoardView) renameCard(cardID, title string) tea.Cmd {
	database := v.db
	return func() tea.Msg {
		if err := database.RenameCard(cardID, title); err != nil {
			return boardErrorMsg{err: fmt.Errorf("failed to rename card: %w", err)}
		}
		columns, err := database.GetBoard()
		return boardLoadedMsg{columns: columns, err: err}
	}
}

func (v *BoardView) deleteCard(cardID string) tea.Cmd {
	database := v.db
	return func() tea.Msg {
		if err := database.DeleteCard(cardID); err != nil {
			return boardErrorMsg{err: fmt.Errorf("failed to delete card: %w", err)}
		}
		columns, err := database.GetBoard()
		return boardLoadedMsg{columns: columns, err: err}
	}
}

func (v *BoardView) moveCard(cardID, columnID string) tea.Cmd {
	database := v.db
	return func() tea.Msg {
		if err := database.MoveCard(cardID, columnID); err != nil {
			return boardErrorMsg{err: err}
		}
		columns, err := database.GetBoard()
		return boardLoadedMsg{columns: columns, err: err}
	}
}

// renderCard draws a card as a bordered box filling width
func (v *BoardView) renderCard(card model.Card, dragging bool, width int) string {
	styles := theme.Current.Styles
	style := styles.Card
	switch {
	case dragging:
		style = styles.CardLifted
	case v.isCursorCard(card):
		style = styles.CardSelected
	}
	inner := max(width-style.GetHorizontalFrameSize(), 1)
	return style.Width(inner + style.GetHorizontalPadding()).Render(ansi.Truncate(card.Title, inner, "…"))
}

// View renders the board
func (v *BoardView) View() string {
	if v.bounds.Empty() {
		return ""
	}
	styles := theme.Current.Styles

	if !v.loaded {
		return styles.Footer.Render("Loading...")
	}
	if v.list == nil {
		return styles.Footer.Render("No columns. Add [[board.columns]] to the config file.")
	}

	sidebar := styles.Sidebar.Height(v.bounds.Size.Height).Render(v.renderTabs())

	col := v.columns[v.active]
	heading := styles.Header.Render(fmt.Sprintf("%s · %d", col.Title, len(v.list.Items())))
	parts := []string{heading, v.list.View()}

	switch v.mode {
	case BoardModeAdd, BoardModeRename:
		width := max(v.bounds.Size.Width-contentLeft-styles.Input.GetHorizontalFrameSize(), 1)
		parts = append(parts, styles.Input.Width(width).Render(v.textInput.View()))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if v.mode == BoardModeConfirmDelete {
		card, _ := v.cursorCard()
		dialog := styles.Dialog.Render(fmt.Sprintf("Delete %q?\n\ny: yes  n: no", card.Title))
		content = lipgloss.Place(
			max(v.bounds.Size.Width-contentLeft, 0), v.bounds.Size.Height,
			lipgloss.Center, lipgloss.Center, dialog,
		)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", content)
}

// renderTabs draws the column titles top to bottom, one rune per line
func (v *BoardView) renderTabs() string {
	styles := theme.Current.Styles
	hovered := v.hoveredColumn()

	var blocks []string
	for i, c := range v.columns {
		style := styles.Tab
		switch {
		case i == hovered:
			style = styles.TabTarget
		case i == v.active:
			style = styles.TabActive
		}

		var b strings.Builder
		for j, r := range c.Title {
			if j > 0 {
				b.WriteByte('\n')
			}
			b.WriteRune(r)
		}
		blocks = append(blocks, style.Render(b.String()))
	}
	return strings.Join(blocks, "\n\n")
}
