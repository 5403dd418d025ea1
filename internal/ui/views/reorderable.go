package views

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/dori/dragboard/internal/drag"
	"github.com/dori/dragboard/internal/geom"
	"github.com/dori/dragboard/internal/gesture"
	"github.com/dori/dragboard/internal/ui/theme"
	"github.com/google/uuid"
)

// DefaultHold is how long a press must last before it lifts a row
const DefaultHold = 400 * time.Millisecond

const (
	gutterWidth = 1
	wheelStep   = 3
)

// ReorderedMsg reports that a list moved an item, by drag or keyboard
type ReorderedMsg[T any] struct {
	ListID   string
	From, To int
	Items    []T
}

// DroppedMsg reports the end of a drag: the item and where its top-left
// corner was dropped, relative to the list viewport
type DroppedMsg[T any] struct {
	ListID string
	Item   T
	Pos    geom.Point
}

// holdElapsedMsg is the long-press timer firing for one press
type holdElapsedMsg struct {
	list string
	seq  uint64
}

// ListOptions configures a ReorderableList
type ListOptions[T any] struct {
	// ID routes hold timers back to the right list; generated when empty
	ID    string
	Items []T

	// OnMove applies a reorder to the caller's data and returns the new
	// sequence. When nil the list reorders its own copy.
	OnMove        func(from, to int) []T
	OnDropOutside func(item T, pos geom.Point)
	Render        func(item T, dragging bool, width int) string

	Scroll      *Scroll
	Hold        time.Duration
	Slop        int
	Estimator   drag.Estimator
	StartPolicy drag.StartPolicy
	Logger      *log.Logger
}

// Scroll is the list's scroll position. It implements drag.MeasuredViewport
// from the most recent layout.
type Scroll struct {
	top    int
	index  int
	offset int
	rows   []drag.Row
}

// Top is the first visible line of the laid-out list
func (s *Scroll) Top() int { return s.top }

// FirstVisibleIndex implements drag.Viewport
func (s *Scroll) FirstVisibleIndex() int { return s.index }

// FirstVisibleOffset implements drag.Viewport
func (s *Scroll) FirstVisibleOffset() int { return s.offset }

// VisibleRows implements drag.MeasuredViewport
func (s *Scroll) VisibleRows() []drag.Row { return s.rows }

type layoutRow struct {
	top, height int
	lines       []string
}

// ReorderableList is a vertically scrolling list whose rows can be lifted
// with a long press and dragged into a new position.
type ReorderableList[T any] struct {
	id     string
	opts   ListOptions[T]
	items  []T
	ctrl   *drag.Controller[T]
	press  *gesture.LongPress
	scroll *Scroll
	logger *log.Logger

	bounds geom.Rect
	cursor int

	rows  []layoutRow
	total int
	dirty bool

	pending []tea.Msg
}

// NewReorderableList creates a list over opts.Items
func NewReorderableList[T any](opts ListOptions[T]) *ReorderableList[T] {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Hold <= 0 {
		opts.Hold = DefaultHold
	}
	if opts.Scroll == nil {
		opts.Scroll = &Scroll{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	l := &ReorderableList[T]{
		id:     opts.ID,
		opts:   opts,
		items:  opts.Items,
		press:  gesture.NewLongPress(opts.Slop),
		scroll: opts.Scroll,
		logger: opts.Logger.With("list", opts.ID),
		dirty:  true,
	}

	l.ctrl = drag.NewController(l.items, l.applyMove, l.dropped,
		drag.WithEstimator[T](opts.Estimator),
		drag.WithStartPolicy[T](opts.StartPolicy),
		drag.WithLogger[T](l.logger),
	)
	l.ctrl.Subscribe(func(drag.State[T]) {
		l.dirty = true
	})
	return l
}

// ID returns the list's identity
func (l *ReorderableList[T]) ID() string { return l.id }

// Items returns the list's current sequence
func (l *ReorderableList[T]) Items() []T { return l.items }

// Controller returns the drag controller driving the list
func (l *ReorderableList[T]) Controller() *drag.Controller[T] { return l.ctrl }

// Cursor returns the keyboard cursor index
func (l *ReorderableList[T]) Cursor() int { return l.cursor }

// Bounds returns the list's screen rectangle
func (l *ReorderableList[T]) Bounds() geom.Rect { return l.bounds }

// Dragging reports whether a row is lifted
func (l *ReorderableList[T]) Dragging() bool { return l.ctrl.Active() }

// SetItems replaces the list with a new identity. Any drag in progress is
// discarded without callbacks.
func (l *ReorderableList[T]) SetItems(items []T) {
	l.items = items
	l.press.Cancel()
	l.ctrl.Reset(items)
	l.scroll.top = 0
	l.cursor = 0
	l.dirty = true
}

// SetBounds places the list on screen
func (l *ReorderableList[T]) SetBounds(r geom.Rect) {
	if r.Size != l.bounds.Size {
		l.dirty = true
	}
	l.bounds = r
}

// SetCursor moves the keyboard cursor, clamped to the list
func (l *ReorderableList[T]) SetCursor(i int) {
	prev := l.cursor
	l.cursor = i
	l.clampCursor()
	if l.cursor != prev {
		// rows may render the cursor differently
		l.dirty = true
	}
	l.ensureCursorVisible()
}

// Init implements tea.Model
func (l *ReorderableList[T]) Init() tea.Cmd {
	return nil
}

// Update handles mouse, keyboard and timer messages addressed to the list
func (l *ReorderableList[T]) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.MouseMsg:
		cmds = append(cmds, l.handleMouse(msg))

	case holdElapsedMsg:
		if msg.list == l.id {
			l.handleGesture(l.press.Hold(msg.seq))
		}

	case tea.BlurMsg:
		l.cancelDrag()

	case tea.KeyMsg:
		l.handleKey(msg)
	}

	return tea.Batch(append(cmds, l.flush())...)
}

func (l *ReorderableList[T]) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p := geom.Pt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if l.bounds.Contains(p) {
				l.scrollBy(-wheelStep)
			}
			return nil
		case tea.MouseButtonWheelDown:
			if l.bounds.Contains(p) {
				l.scrollBy(wheelStep)
			}
			return nil
		case tea.MouseButtonLeft:
			if l.ctrl.Active() {
				// the release of the previous drag never arrived
				l.press.Cancel()
				l.finishDrag(false)
			}
			if !l.bounds.Contains(p) || l.rowAt(l.bounds.Local(p)) < 0 {
				return nil
			}
			seq := l.press.Press(p)
			id := l.id
			return tea.Tick(l.opts.Hold, func(time.Time) tea.Msg {
				return holdElapsedMsg{list: id, seq: seq}
			})
		}

	case tea.MouseActionMotion:
		l.handleGesture(l.press.Motion(p))

	case tea.MouseActionRelease:
		l.handleGesture(l.press.Release(p))
	}
	return nil
}

func (l *ReorderableList[T]) handleGesture(ev gesture.Event) {
	switch ev.Kind {
	case gesture.Tap:
		if i := l.rowAt(l.bounds.Local(ev.Point)); i >= 0 {
			l.SetCursor(i)
		}

	case gesture.DragStart:
		l.startDrag(l.bounds.Local(ev.Point))

	case gesture.Drag:
		l.layout()
		l.ctrl.Move(ev.Delta, l.scroll)

	case gesture.DragEnd:
		l.finishDrag(false)

	case gesture.DragCancel:
		l.finishDrag(true)
	}
}

// finishDrag drops the lifted row and puts the cursor on it
func (l *ReorderableList[T]) finishDrag(cancel bool) {
	final := l.ctrl.State()
	if cancel {
		l.ctrl.Cancel()
	} else {
		l.ctrl.End()
	}
	if final.Active {
		l.SetCursor(final.Index)
	}
}

// cancelDrag aborts the gesture and any drag the controller still holds,
// whatever phase the recognizer is in
func (l *ReorderableList[T]) cancelDrag() {
	l.press.Cancel()
	if l.ctrl.Active() {
		l.finishDrag(true)
	}
}

// startDrag lifts the row under local, a point relative to the viewport
func (l *ReorderableList[T]) startDrag(local geom.Point) {
	l.layout()
	i := l.rowAt(local)
	if i < 0 {
		return
	}
	row := l.rows[i]
	anchor := geom.Pt(gutterWidth, row.top-l.scroll.top)
	size := geom.Size{Width: l.contentWidth(), Height: row.height}
	l.ctrl.Start(anchor, local.Sub(anchor), i, l.items[i], size)
}

// applyMove is the controller's onMove
func (l *ReorderableList[T]) applyMove(from, to int) {
	l.move(from, to)
}

func (l *ReorderableList[T]) move(from, to int) {
	if l.opts.OnMove != nil {
		l.items = l.opts.OnMove(from, to)
	} else {
		l.items = drag.Reorder(l.items, from, to)
	}
	l.ctrl.Sync(l.items)
	if l.cursor == from {
		l.cursor = to
	}
	l.dirty = true
	l.pending = append(l.pending, ReorderedMsg[T]{ListID: l.id, From: from, To: to, Items: l.items})
}

// dropped is the controller's onDropOutside
func (l *ReorderableList[T]) dropped(item T, pos geom.Point) {
	if l.opts.OnDropOutside != nil {
		l.opts.OnDropOutside(item, pos)
	}
	l.pending = append(l.pending, DroppedMsg[T]{ListID: l.id, Item: item, Pos: pos})
}

// flush hands queued notifications to the runtime
func (l *ReorderableList[T]) flush() tea.Cmd {
	if len(l.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(l.pending))
	for i, m := range l.pending {
		cmds[i] = func() tea.Msg { return m }
	}
	l.pending = nil
	return tea.Batch(cmds...)
}

func (l *ReorderableList[T]) handleKey(msg tea.KeyMsg) {
	if l.ctrl.Active() {
		if msg.String() == "esc" {
			l.cancelDrag()
		}
		return
	}

	switch msg.String() {
	case "j", "down":
		l.SetCursor(l.cursor + 1)
	case "k", "up":
		l.SetCursor(l.cursor - 1)
	case "g", "home":
		l.SetCursor(0)
	case "G", "end":
		l.SetCursor(len(l.items) - 1)
	case "J", "shift+down":
		if l.cursor < len(l.items)-1 {
			l.move(l.cursor, l.cursor+1)
			l.ensureCursorVisible()
		}
	case "K", "shift+up":
		if l.cursor > 0 && l.cursor < len(l.items) {
			l.move(l.cursor, l.cursor-1)
			l.ensureCursorVisible()
		}
	}
}

func (l *ReorderableList[T]) clampCursor() {
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *ReorderableList[T]) ensureCursorVisible() {
	l.layout()
	if l.cursor >= len(l.rows) {
		return
	}
	row := l.rows[l.cursor]
	h := l.bounds.Size.Height
	if row.top < l.scroll.top {
		l.scroll.top = row.top
	} else if row.top+row.height > l.scroll.top+h {
		l.scroll.top = row.top + row.height - h
	}
	l.clampScroll()
}

func (l *ReorderableList[T]) scrollBy(lines int) {
	l.layout()
	l.scroll.top += lines
	l.clampScroll()
}

func (l *ReorderableList[T]) clampScroll() {
	maxTop := l.total - l.bounds.Size.Height
	if l.scroll.top > maxTop {
		l.scroll.top = maxTop
	}
	if l.scroll.top < 0 {
		l.scroll.top = 0
	}
	l.updateViewport()
}

func (l *ReorderableList[T]) contentWidth() int {
	return max(l.bounds.Size.Width-gutterWidth, 1)
}

// layout renders every row at rest and records its extent
func (l *ReorderableList[T]) layout() {
	if !l.dirty && len(l.rows) == len(l.items) {
		return
	}
	width := l.contentWidth()
	l.rows = l.rows[:0]
	top := 0
	for _, item := range l.items {
		s := l.render(item, false, width)
		h := lipgloss.Height(s)
		l.rows = append(l.rows, layoutRow{top: top, height: h, lines: strings.Split(s, "\n")})
		top += h
	}
	l.total = top
	l.dirty = false
	l.clampScroll()
}

// updateViewport derives the first visible row and the measured rows from
// the scroll position
func (l *ReorderableList[T]) updateViewport() {
	s := l.scroll
	s.index, s.offset = 0, 0
	s.rows = s.rows[:0]
	h := l.bounds.Size.Height
	found := false
	for i, row := range l.rows {
		if row.top+row.height <= s.top {
			continue
		}
		if row.top >= s.top+h {
			break
		}
		if !found {
			s.index, s.offset = i, s.top-row.top
			found = true
		}
		s.rows = append(s.rows, drag.Row{
			Index:  i,
			Bounds: geom.R(gutterWidth, row.top-s.top, l.contentWidth(), row.height),
		})
	}
}

// rowAt returns the index of the row under a viewport-relative point, or -1
func (l *ReorderableList[T]) rowAt(local geom.Point) int {
	l.layout()
	if local.Y < 0 || local.Y >= l.bounds.Size.Height {
		return -1
	}
	y := local.Y + l.scroll.top
	for i, row := range l.rows {
		if y >= row.top && y < row.top+row.height {
			return i
		}
	}
	return -1
}

func (l *ReorderableList[T]) render(item T, dragging bool, width int) string {
	if l.opts.Render == nil {
		return ansi.Truncate(strings.TrimSpace(strings.ReplaceAll(fmt.Sprint(item), "\n", " ")), width, "…")
	}
	return l.opts.Render(item, dragging, width)
}

// View renders the visible window with the lifted row drawn at the drag
// position on top of everything else
func (l *ReorderableList[T]) View() string {
	l.layout()
	width, height := l.bounds.Size.Width, l.bounds.Size.Height
	if width <= 0 || height <= 0 {
		return ""
	}

	state := l.ctrl.State()
	blank := strings.Repeat(" ", width)
	gutter := theme.Current.Styles.HelpKey.Render("▍")

	lines := make([]string, height)
	for i := range lines {
		lines[i] = blank
	}
	for i, row := range l.rows {
		for j, line := range row.lines {
			y := row.top + j - l.scroll.top
			if y < 0 || y >= height {
				continue
			}
			if state.Lifted(i) {
				// the lifted row keeps its space but is drawn by the overlay
				continue
			}
			g := " "
			if i == l.cursor && !state.Active {
				g = gutter
			}
			lines[y] = padRight(ansi.Truncate(g+line, width, ""), width)
		}
	}

	if state.Active && state.HasItem {
		origin := state.OverlayOrigin()
		overlay := strings.Split(l.render(state.Item, true, state.Size.Width), "\n")
		for j, line := range overlay {
			y := origin.Y + j
			if y < 0 || y >= height {
				continue
			}
			lines[y] = splice(lines[y], line, origin.X, width)
		}
	}

	return strings.Join(lines, "\n")
}

// splice draws over onto base starting at column x, clipped to width
func splice(base, over string, x, width int) string {
	if x < 0 {
		over = ansi.TruncateLeft(over, -x, "")
		x = 0
	}
	if x >= width {
		return base
	}
	w := ansi.StringWidth(over)
	if x+w > width {
		over = ansi.Truncate(over, width-x, "")
		w = width - x
	}
	left := padRight(ansi.Truncate(base, x, ""), x)
	right := ansi.TruncateLeft(base, x+w, "")
	return left + over + right
}

func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
