package views

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/dragboard/internal/drag"
	"github.com/dori/dragboard/internal/geom"
)

// listHarness records every callback a ReorderableList makes
type listHarness struct {
	list    *ReorderableList[string]
	items   []string
	moves   [][2]int
	drops   []string
	dropPos []geom.Point
	msgs    []tea.Msg
}

// Rows are two lines tall; the list sits at (10,5) with room for five rows
var listBounds = geom.R(10, 5, 20, 10)

func newListHarness(items []string, opts ...func(*ListOptions[string])) *listHarness {
	h := &listHarness{items: slices.Clone(items)}
	o := ListOptions[string]{
		ID:    "test",
		Items: h.items,
		OnMove: func(from, to int) []string {
			h.moves = append(h.moves, [2]int{from, to})
			h.items = drag.Reorder(h.items, from, to)
			return h.items
		},
		OnDropOutside: func(item string, pos geom.Point) {
			h.drops = append(h.drops, item)
			h.dropPos = append(h.dropPos, pos)
		},
		Render: func(item string, dragging bool, width int) string {
			if dragging {
				return "[" + item + "]\n--"
			}
			return item + "\n--"
		},
	}
	for _, fn := range opts {
		fn(&o)
	}
	h.list = NewReorderableList(o)
	h.list.SetBounds(listBounds)
	return h
}

func fiveCards() []string {
	return []string{"A1", "A2", "A3", "A4", "A5"}
}

// screen converts a point relative to the list into screen coordinates
func screen(x, y int) geom.Point {
	return listBounds.Min.Add(geom.Pt(x, y))
}

func mouse(p geom.Point, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: p.X, Y: p.Y, Action: action, Button: button}
}

// send delivers msg and collects every message the returned command
// produces. Commands from presses are timers and are not run.
func (h *listHarness) send(msg tea.Msg) {
	cmd := h.list.Update(msg)
	if m, ok := msg.(tea.MouseMsg); ok && m.Action == tea.MouseActionPress && m.Button == tea.MouseButtonLeft {
		return
	}
	h.msgs = append(h.msgs, drain(cmd)...)
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func (h *listHarness) press(p geom.Point) {
	h.send(mouse(p, tea.MouseActionPress, tea.MouseButtonLeft))
}

func (h *listHarness) motion(p geom.Point) {
	h.send(mouse(p, tea.MouseActionMotion, tea.MouseButtonLeft))
}

func (h *listHarness) release(p geom.Point) {
	h.send(mouse(p, tea.MouseActionRelease, tea.MouseButtonLeft))
}

func (h *listHarness) hold(seq uint64) {
	h.send(holdElapsedMsg{list: h.list.ID(), seq: seq})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLongPressDragReorders(t *testing.T) {
	h := newListHarness(fiveCards())

	// grab A3 on its title line and pull it down two rows
	h.press(screen(2, 4))
	if h.list.Dragging() {
		t.Fatal("drag started before the hold elapsed")
	}
	h.hold(1)
	if !h.list.Dragging() {
		t.Fatal("drag did not start when the hold elapsed")
	}
	h.motion(screen(2, 8))

	if !slices.Equal(h.moves, [][2]int{{2, 4}}) {
		t.Errorf("moves = %v, want [[2 4]]", h.moves)
	}
	want := []string{"A1", "A2", "A4", "A5", "A3"}
	if !slices.Equal(h.list.Items(), want) {
		t.Errorf("items = %v, want %v", h.list.Items(), want)
	}

	h.release(screen(2, 8))
	if h.list.Dragging() {
		t.Error("still dragging after release")
	}
	if !slices.Equal(h.drops, []string{"A3"}) {
		t.Errorf("drops = %v, want [A3]", h.drops)
	}
	if h.dropPos[0] != geom.Pt(gutterWidth, 8) {
		t.Errorf("drop position = %v, want %v", h.dropPos[0], geom.Pt(gutterWidth, 8))
	}
	if h.list.Cursor() != 4 {
		t.Errorf("cursor = %d, want 4", h.list.Cursor())
	}

	var reordered, dropped int
	for _, m := range h.msgs {
		switch m := m.(type) {
		case ReorderedMsg[string]:
			reordered++
			if m.From != 2 || m.To != 4 || m.ListID != "test" {
				t.Errorf("ReorderedMsg = %+v", m)
			}
		case DroppedMsg[string]:
			dropped++
			if m.Item != "A3" {
				t.Errorf("DroppedMsg item = %q, want A3", m.Item)
			}
		}
	}
	if reordered != 1 || dropped != 1 {
		t.Errorf("got %d ReorderedMsg and %d DroppedMsg, want 1 each", reordered, dropped)
	}
}

func TestReleaseBeforeHoldIsTap(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(3, 6))
	h.release(screen(3, 6))
	h.hold(1)

	if h.list.Dragging() {
		t.Error("a late timer started a drag after the button was released")
	}
	if h.list.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3 after tapping A4", h.list.Cursor())
	}
	if len(h.moves) != 0 || len(h.drops) != 0 {
		t.Errorf("tap produced moves %v drops %v", h.moves, h.drops)
	}
}

func TestMovingPastSlopAbandonsPress(t *testing.T) {
	h := newListHarness(fiveCards(), func(o *ListOptions[string]) { o.Slop = 1 })

	h.press(screen(2, 0))
	h.motion(screen(2, 3))
	h.hold(1)

	if h.list.Dragging() {
		t.Error("drag started after the pointer left the slop")
	}
}

func TestJitterWithinSlopStillDrags(t *testing.T) {
	h := newListHarness(fiveCards(), func(o *ListOptions[string]) { o.Slop = 1 })

	h.press(screen(2, 0))
	h.motion(screen(3, 1))
	h.hold(1)
	if !h.list.Dragging() {
		t.Fatal("jitter inside the slop prevented the drag")
	}

	// the jitter counts toward the first delta: offset (1,2) lands on A2
	h.motion(screen(3, 2))
	if !slices.Equal(h.moves, [][2]int{{0, 1}}) {
		t.Errorf("moves = %v, want [[0 1]]", h.moves)
	}
}

func TestStaleHoldTimerIgnored(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(2, 0))
	h.release(screen(2, 0))
	h.press(screen(2, 2))

	h.hold(1)
	if h.list.Dragging() {
		t.Fatal("timer from the first press started a drag")
	}
	h.hold(2)
	if !h.list.Dragging() {
		t.Fatal("timer from the current press did not start a drag")
	}
	if got := h.list.Controller().State().Item; got != "A2" {
		t.Errorf("lifted %q, want A2", got)
	}
}

func TestHoldForAnotherListIgnored(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(2, 0))
	h.send(holdElapsedMsg{list: "other", seq: 1})
	if h.list.Dragging() {
		t.Error("timer addressed to another list started a drag")
	}
}

func TestLiftedRowDrawnAsOverlay(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(2, 4))
	h.hold(1)
	h.motion(screen(2, 7))

	view := h.list.View()
	lines := strings.Split(view, "\n")
	if len(lines) != listBounds.Size.Height {
		t.Fatalf("view has %d lines, want %d", len(lines), listBounds.Size.Height)
	}
	if strings.Count(view, "A3") != 1 {
		t.Errorf("A3 drawn %d times, want once as the overlay:\n%s", strings.Count(view, "A3"), view)
	}

	origin := h.list.Controller().State().OverlayOrigin()
	if origin != geom.Pt(gutterWidth, 7) {
		t.Fatalf("overlay origin = %v, want (1,7)", origin)
	}
	if !strings.HasPrefix(lines[7], " [A3]") {
		t.Errorf("line 7 = %q, want overlay at column 1", lines[7])
	}
}

func TestOverlayClippedToViewport(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(2, 8))
	h.hold(1)
	h.motion(screen(2, 30))

	lines := strings.Split(h.list.View(), "\n")
	if len(lines) != listBounds.Size.Height {
		t.Errorf("overlay below the viewport grew the view to %d lines", len(lines))
	}
}

func TestEscCancelsThroughDropPath(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(2, 2))
	h.hold(1)
	h.send(key("esc"))

	if h.list.Dragging() {
		t.Error("esc did not cancel the drag")
	}
	if !slices.Equal(h.drops, []string{"A2"}) {
		t.Errorf("drops = %v, want [A2]", h.drops)
	}

	// the button is still down but the gesture is over
	h.motion(screen(2, 8))
	if len(h.moves) != 0 {
		t.Errorf("motion after cancel moved items: %v", h.moves)
	}
}

func TestBlurCancelsDrag(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(2, 2))
	h.hold(1)
	h.send(tea.BlurMsg{})

	if h.list.Dragging() || len(h.drops) != 1 {
		t.Errorf("blur: dragging=%v drops=%v", h.list.Dragging(), h.drops)
	}
}

func TestSetItemsDiscardsDrag(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(2, 2))
	h.hold(1)
	h.list.SetItems([]string{"B1", "B2"})

	if h.list.Dragging() {
		t.Error("drag survived a new list identity")
	}
	h.release(screen(2, 2))
	if len(h.drops) != 0 {
		t.Errorf("discarded drag reported a drop: %v", h.drops)
	}
	if h.list.Controller().Len() != 2 {
		t.Errorf("controller bounds = %d, want 2", h.list.Controller().Len())
	}
}

func TestKeyboardReorder(t *testing.T) {
	h := newListHarness(fiveCards())

	h.send(key("J"))
	h.send(key("J"))
	h.send(key("K"))

	want := []string{"A2", "A1", "A3", "A4", "A5"}
	if !slices.Equal(h.list.Items(), want) {
		t.Errorf("items = %v, want %v", h.list.Items(), want)
	}
	if !slices.Equal(h.moves, [][2]int{{0, 1}, {1, 2}, {2, 1}}) {
		t.Errorf("moves = %v", h.moves)
	}
	if h.list.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", h.list.Cursor())
	}

	h.send(key("k"))
	h.send(key("K"))
	if len(h.moves) != 3 {
		t.Errorf("K on the first row moved: %v", h.moves)
	}
}

func TestCursorKeys(t *testing.T) {
	tests := []struct {
		keys []string
		want int
	}{
		{[]string{"j", "j"}, 2},
		{[]string{"G"}, 4},
		{[]string{"G", "g"}, 0},
		{[]string{"k"}, 0},
		{[]string{"G", "j"}, 4},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.keys, ""), func(t *testing.T) {
			h := newListHarness(fiveCards())
			for _, k := range tt.keys {
				h.send(key(k))
			}
			if h.list.Cursor() != tt.want {
				t.Errorf("cursor = %d, want %d", h.list.Cursor(), tt.want)
			}
		})
	}
}

func TestWheelScrollFeedsViewport(t *testing.T) {
	items := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10"}
	h := newListHarness(items)

	h.send(mouse(screen(2, 2), tea.MouseActionPress, tea.MouseButtonWheelDown))

	s := h.list.scroll
	if s.Top() != wheelStep {
		t.Fatalf("top = %d, want %d", s.Top(), wheelStep)
	}
	if s.FirstVisibleIndex() != 1 || s.FirstVisibleOffset() != 1 {
		t.Errorf("first visible = %d offset %d, want 1 offset 1", s.FirstVisibleIndex(), s.FirstVisibleOffset())
	}
	if rows := s.VisibleRows(); len(rows) == 0 || rows[0].Index != 1 || rows[0].Bounds.Min.Y != -1 {
		t.Errorf("visible rows = %+v", rows)
	}

	// scrolling never passes the end of the list
	for i := 0; i < 10; i++ {
		h.send(mouse(screen(2, 2), tea.MouseActionPress, tea.MouseButtonWheelDown))
	}
	if s.Top() != 10 {
		t.Errorf("top = %d, want 10", s.Top())
	}
}

func TestDragAfterScrollUsesViewport(t *testing.T) {
	items := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10"}
	h := newListHarness(items)

	h.send(mouse(screen(2, 2), tea.MouseActionPress, tea.MouseButtonWheelDown))

	// line 1 of the viewport is A3 (list line 4)
	h.press(screen(2, 1))
	h.hold(1)
	if got := h.list.Controller().State().Item; got != "A3" {
		t.Fatalf("lifted %q, want A3", got)
	}
	h.motion(screen(2, 3))
	if !slices.Equal(h.moves, [][2]int{{2, 3}}) {
		t.Errorf("moves = %v, want [[2 3]]", h.moves)
	}
}

func TestMeasuredEstimatorOption(t *testing.T) {
	h := newListHarness(fiveCards(), func(o *ListOptions[string]) {
		o.Estimator = drag.MeasuredEstimator{}
	})

	h.press(screen(2, 0))
	h.hold(1)
	h.motion(screen(2, 5))
	if !slices.Equal(h.moves, [][2]int{{0, 2}}) {
		t.Errorf("moves = %v, want [[0 2]]", h.moves)
	}
}

func TestMeasuredDragPastTallRowSettles(t *testing.T) {
	h := newListHarness([]string{"A", "B", "C"}, func(o *ListOptions[string]) {
		o.Estimator = drag.MeasuredEstimator{}
		o.Render = func(item string, dragging bool, width int) string {
			if item == "B" {
				return "B\n\n\n\n"
			}
			return item
		}
	})

	h.press(screen(2, 0))
	h.hold(1)
	for y := 1; y <= 4; y++ {
		h.motion(screen(2, y))
	}

	if !slices.Equal(h.moves, [][2]int{{0, 1}}) {
		t.Errorf("moves = %v, want [[0 1]]", h.moves)
	}
	if want := []string{"B", "A", "C"}; !slices.Equal(h.list.Items(), want) {
		t.Errorf("items = %v, want %v", h.list.Items(), want)
	}
}

func TestLostReleaseEndsDragOnNextPress(t *testing.T) {
	h := newListHarness(fiveCards())

	h.press(screen(2, 4))
	h.hold(1)
	h.motion(screen(2, 8))
	// the release happened outside the terminal and was never reported

	h.press(screen(2, 0))
	if h.list.Dragging() {
		t.Fatal("drag survived a new press")
	}
	if !slices.Equal(h.drops, []string{"A3"}) {
		t.Errorf("drops = %v, want [A3]", h.drops)
	}

	h.release(screen(2, 0))
	if h.list.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0 after tapping A1", h.list.Cursor())
	}
	h.send(key("j"))
	if h.list.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1; keys still swallowed", h.list.Cursor())
	}
}

func TestCancelWhenRecognizerLostTrack(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
	}{
		{"esc", key("esc")},
		{"blur", tea.BlurMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newListHarness(fiveCards())
			h.press(screen(2, 4))
			h.hold(1)

			// the controller still holds the row while the recognizer is idle
			h.list.press.Cancel()
			if !h.list.Dragging() {
				t.Fatal("drag ended with the recognizer")
			}

			h.send(tt.msg)
			if h.list.Dragging() {
				t.Errorf("%s left the drag active", tt.name)
			}
			if !slices.Equal(h.drops, []string{"A3"}) {
				t.Errorf("drops = %v, want [A3]", h.drops)
			}
		})
	}
}

func TestSplice(t *testing.T) {
	tests := []struct {
		name       string
		base, over string
		x          int
		want       string
	}{
		{"inside", "abcdef", "XY", 2, "abXYef"},
		{"right edge", "abcdef", "XYZ", 4, "abcdXY"},
		{"left edge", "abcdef", "XY", -1, "Ybcdef"},
		{"past right", "abcdef", "XY", 6, "abcdef"},
		{"short base", "ab", "XY", 4, "ab  XY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splice(tt.base, tt.over, tt.x, 6); got != tt.want {
				t.Errorf("splice = %q, want %q", got, tt.want)
			}
		})
	}
}
