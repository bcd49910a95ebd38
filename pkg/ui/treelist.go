// treelist.go - Virtualized, animated tree list component
package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/mz2/flattree/pkg/anim"
	"github.com/mz2/flattree/pkg/tree"
)

// RenderFunc maps a domain item to its single-line row label. It must be
// pure: same item, same label.
type RenderFunc[T any] func(item T) string

// RowDescriptor is what the virtualized surface consumes per row: the
// node, its in-flight animation handle (nil while idle) and whether the
// row is a ghost (already excised from the projection, still shrinking
// out).
type RowDescriptor[T any] struct {
	Node  *tree.Node[T]
	Anim  *anim.Handle
	Ghost bool
}

// TickMsg advances in-flight animations to the carried instant.
type TickMsg time.Time

// DataChangedMsg swaps the controller's delegate and rebuilds the tree.
// The file watcher sends it from its own goroutine via Program.Send.
type DataChangedMsg[T any] struct {
	Delegate tree.Delegate[T]
}

// TreeList is the virtualization host over a tree controller: it exposes
// ItemCount/ItemAt keyed by stable node keys, renders only the window of
// rows that fits, and drives the animation coordinator from frame ticks.
type TreeList[T any] struct {
	ctrl   *tree.Controller[T]
	coord  *anim.Coordinator[T]
	render RenderFunc[T]
	theme  Theme
	keys   KeyMap
	help   help.Model

	cursor  int // index into the projection
	offset  int // first display row on screen
	width   int
	height  int
	frame   time.Duration
	ticking bool
}

// NewTreeList wires a tree list over the given controller and
// coordinator. The coordinator must already be bound to the controller.
func NewTreeList[T any](ctrl *tree.Controller[T], coord *anim.Coordinator[T], render RenderFunc[T], theme Theme) *TreeList[T] {
	h := help.New()
	h.Styles.ShortKey = theme.Renderer.NewStyle().Foreground(theme.Secondary)
	h.Styles.ShortDesc = theme.Renderer.NewStyle().Foreground(theme.Muted)
	return &TreeList[T]{
		ctrl:   ctrl,
		coord:  coord,
		render: render,
		theme:  theme,
		keys:   DefaultKeyMap(),
		help:   h,
		frame:  time.Second / 30,
	}
}

// SetFrameInterval sets the animation tick interval.
func (t *TreeList[T]) SetFrameInterval(d time.Duration) {
	if d > 0 {
		t.frame = d
	}
}

// SetSize updates the available dimensions.
func (t *TreeList[T]) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.help.Width = width
}

// ItemCount returns the number of rows in the projection. Ghost rows are
// a presentation detail and are not counted.
func (t *TreeList[T]) ItemCount() int {
	return t.ctrl.TreeSize()
}

// ItemAt returns the row descriptor at the given projection index.
func (t *TreeList[T]) ItemAt(index int) (RowDescriptor[T], error) {
	n, err := t.ctrl.NodeAt(index)
	if err != nil {
		return RowDescriptor[T]{}, err
	}
	return RowDescriptor[T]{Node: n, Anim: t.coord.Find(n.Key())}, nil
}

// SelectedNode returns the node under the cursor, or nil on an empty
// projection.
func (t *TreeList[T]) SelectedNode() *tree.Node[T] {
	n, err := t.ctrl.NodeAt(t.cursor)
	if err != nil {
		return nil
	}
	return n
}

// SelectByKey moves the cursor to the row carrying key. Returns false if
// the key is absent from the projection; the cursor is left alone.
func (t *TreeList[T]) SelectByKey(k tree.Key) bool {
	n := t.ctrl.NodeByKey(k)
	if n == nil {
		return false
	}
	if idx := t.ctrl.IndexOf(n); idx >= 0 {
		t.cursor = idx
		return true
	}
	return false
}

// Init implements tea.Model-style components; the tree list has no
// startup work.
func (t *TreeList[T]) Init() tea.Cmd { return nil }

// Update handles keys, window sizing, animation ticks and data changes.
func (t *TreeList[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.SetSize(msg.Width, msg.Height)
		return nil

	case TickMsg:
		if t.coord.Advance(time.Time(msg)) {
			return t.tick()
		}
		t.ticking = false
		return nil

	case DataChangedMsg[T]:
		var selected tree.Key
		if n := t.SelectedNode(); n != nil {
			selected = n.Key()
		}
		if err := t.ctrl.ReplaceDelegate(msg.Delegate); err != nil {
			return nil
		}
		t.clampCursor()
		if selected != "" {
			t.SelectByKey(selected)
		}
		return nil

	case tea.KeyMsg:
		return t.handleKey(msg)
	}
	return nil
}

func (t *TreeList[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	// The projection may have shrunk under the cursor since the last key,
	// e.g. through a collapse triggered outside this component.
	t.clampCursor()
	switch {
	case key.Matches(msg, t.keys.Up):
		t.MoveUp()
	case key.Matches(msg, t.keys.Down):
		t.MoveDown()
	case key.Matches(msg, t.keys.Left):
		t.CollapseOrJumpToParent()
	case key.Matches(msg, t.keys.Right):
		t.ExpandOrMoveToChild()
	case key.Matches(msg, t.keys.Toggle):
		t.ToggleExpand()
	case key.Matches(msg, t.keys.ExpandAll):
		_ = t.ctrl.ExpandAll()
	case key.Matches(msg, t.keys.CollapseAll):
		_ = t.ctrl.CollapseAll()
		t.clampCursor()
	case key.Matches(msg, t.keys.Parent):
		t.JumpToParent()
	case key.Matches(msg, t.keys.Top):
		t.cursor = 0
	case key.Matches(msg, t.keys.Bottom):
		if n := t.ctrl.TreeSize(); n > 0 {
			t.cursor = n - 1
		}
	case key.Matches(msg, t.keys.HalfPageUp):
		t.page(-1)
	case key.Matches(msg, t.keys.HalfPageDown):
		t.page(1)
	case key.Matches(msg, t.keys.Help):
		t.help.ShowAll = !t.help.ShowAll
	}
	return t.maybeAnimate()
}

// ToggleExpand flips the node under the cursor.
func (t *TreeList[T]) ToggleExpand() {
	n := t.SelectedNode()
	if n == nil || n.IsLeaf() {
		return
	}
	if n.IsExpanded() {
		_ = t.ctrl.CollapseNode(n)
	} else {
		_ = t.ctrl.ExpandNode(n)
	}
	t.clampCursor()
}

// MoveDown moves the cursor down one row.
func (t *TreeList[T]) MoveDown() {
	if t.cursor < t.ctrl.TreeSize()-1 {
		t.cursor++
	}
}

// MoveUp moves the cursor up one row.
func (t *TreeList[T]) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// JumpToParent moves the cursor to the selected node's parent. Top-level
// rows stay put.
func (t *TreeList[T]) JumpToParent() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	parent := n.Parent()
	if parent == nil || parent.IsRoot() {
		return
	}
	if idx := t.ctrl.IndexOf(parent); idx >= 0 {
		t.cursor = idx
	}
}

// ExpandOrMoveToChild expands a collapsed branch, or steps into an
// already-expanded one.
func (t *TreeList[T]) ExpandOrMoveToChild() {
	n := t.SelectedNode()
	if n == nil || n.IsLeaf() {
		return
	}
	if !n.IsExpanded() {
		_ = t.ctrl.ExpandNode(n)
		return
	}
	if idx := t.ctrl.IndexOf(n.Children()[0]); idx >= 0 {
		t.cursor = idx
	}
}

// CollapseOrJumpToParent collapses an expanded branch, or jumps to the
// parent from a leaf or collapsed node.
func (t *TreeList[T]) CollapseOrJumpToParent() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	if !n.IsLeaf() && n.IsExpanded() {
		_ = t.ctrl.CollapseNode(n)
		t.clampCursor()
		return
	}
	t.JumpToParent()
}

func (t *TreeList[T]) page(dir int) {
	step := t.listHeight() / 2
	if step < 1 {
		step = 5
	}
	t.cursor += dir * step
	t.clampCursor()
}

func (t *TreeList[T]) clampCursor() {
	if max := t.ctrl.TreeSize() - 1; t.cursor > max {
		t.cursor = max
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// maybeAnimate starts the frame tick loop when transitions are in flight
// and no loop is running.
func (t *TreeList[T]) maybeAnimate() tea.Cmd {
	if t.ticking || t.coord.Active() == 0 {
		return nil
	}
	t.ticking = true
	return t.tick()
}

func (t *TreeList[T]) tick() tea.Cmd {
	return tea.Tick(t.frame, func(now time.Time) tea.Msg {
		return TickMsg(now)
	})
}

// listHeight is the row budget left after the help footer.
func (t *TreeList[T]) listHeight() int {
	h := t.height - 1
	if h < 1 {
		h = 20
	}
	return h
}

// displayRows interleaves the projection with ghost rows still animating
// out under their collapsed parent.
func (t *TreeList[T]) displayRows() []RowDescriptor[T] {
	size := t.ctrl.TreeSize()
	rows := make([]RowDescriptor[T], 0, size)
	for i := 0; i < size; i++ {
		n, err := t.ctrl.NodeAt(i)
		if err != nil {
			break
		}
		rows = append(rows, RowDescriptor[T]{Node: n, Anim: t.coord.Find(n.Key())})
		for _, ghost := range t.coord.Leaving(n.Key()) {
			rows = append(rows, RowDescriptor[T]{Node: ghost, Anim: t.coord.Find(ghost.Key()), Ghost: true})
		}
	}
	return rows
}

// View renders the visible window of rows plus the help footer.
func (t *TreeList[T]) View() string {
	rows := t.displayRows()
	if len(rows) == 0 {
		return t.emptyView()
	}

	// Keep the cursor row inside the window.
	cursorAt := 0
	for i, row := range rows {
		if !row.Ghost && t.ctrl.IndexOf(row.Node) == t.cursor {
			cursorAt = i
			break
		}
	}
	h := t.listHeight()
	if cursorAt < t.offset {
		t.offset = cursorAt
	}
	if cursorAt >= t.offset+h {
		t.offset = cursorAt - h + 1
	}
	if t.offset > len(rows)-1 {
		t.offset = len(rows) - 1
	}
	if t.offset < 0 {
		t.offset = 0
	}

	end := t.offset + h
	if end > len(rows) {
		end = len(rows)
	}

	var sb strings.Builder
	for i := t.offset; i < end; i++ {
		sb.WriteString(t.renderRow(rows[i], i == cursorAt))
		sb.WriteString("\n")
	}
	sb.WriteString(t.help.View(t.keys))
	return sb.String()
}

func (t *TreeList[T]) emptyView() string {
	muted := t.theme.Renderer.NewStyle().Foreground(t.theme.Muted)
	return muted.Render("No rows to display.") + "\n\n" + t.help.View(t.keys)
}

// renderRow renders one display row: tree guides, expand indicator, label
// and animation styling.
func (t *TreeList[T]) renderRow(row RowDescriptor[T], selected bool) string {
	n := row.Node
	r := t.theme.Renderer
	var sb strings.Builder

	prefix := t.treePrefix(n)
	sb.WriteString(prefix)

	indicator := "•"
	if !n.IsLeaf() {
		if n.IsExpanded() && !row.Ghost {
			indicator = "▾"
		} else {
			indicator = "▸"
		}
	}
	sb.WriteString(r.NewStyle().Foreground(t.theme.Secondary).Render(indicator))
	sb.WriteString(" ")

	label := t.render(n.Item())
	maxLabel := t.width - runewidth.StringWidth(prefix) - 4
	if maxLabel < 8 {
		maxLabel = 8
	}
	label = t.animateLabel(label, maxLabel, row)
	sb.WriteString(label)

	line := sb.String()
	switch {
	case selected:
		return t.theme.Selected.Render(line)
	case row.Ghost:
		return t.theme.Leaving.Render(line)
	case row.Anim != nil:
		return t.theme.Entering.Render(line)
	}
	return line
}

// animateLabel truncates the label to the row budget and, while a
// transition is in flight, reveals or conceals it proportionally so rows
// appear to grow in and shrink out.
func (t *TreeList[T]) animateLabel(label string, maxWidth int, row RowDescriptor[T]) string {
	budget := maxWidth
	if row.Anim != nil {
		p := row.Anim.Progress()
		if row.Anim.Direction() == anim.Collapsing {
			p = 1 - p
		}
		budget = int(float64(maxWidth) * p)
		if budget < 1 {
			budget = 1
		}
	}
	if runewidth.StringWidth(label) <= budget {
		return label
	}
	return runewidth.Truncate(label, budget, "…")
}

// treePrefix builds the indentation guides for a node: one column per
// ancestor level below the top, then the branch character. Top-level rows
// have no prefix.
func (t *TreeList[T]) treePrefix(n *tree.Node[T]) string {
	if n.Depth() <= 1 {
		return ""
	}
	guide := t.theme.Renderer.NewStyle().Foreground(t.theme.Muted)

	var parts []string
	for a := n.Parent(); a != nil && a.Depth() >= 2; a = a.Parent() {
		if hasSiblingsBelow(a) {
			parts = append([]string{"│   "}, parts...)
		} else {
			parts = append([]string{"    "}, parts...)
		}
	}
	if isLastChild(n) {
		parts = append(parts, "└── ")
	} else {
		parts = append(parts, "├── ")
	}
	return guide.Render(strings.Join(parts, ""))
}

func hasSiblingsBelow[T any](n *tree.Node[T]) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	siblings := parent.Children()
	for i, sib := range siblings {
		if sib == n {
			return i < len(siblings)-1
		}
	}
	return false
}

func isLastChild[T any](n *tree.Node[T]) bool {
	parent := n.Parent()
	if parent == nil {
		return true
	}
	siblings := parent.Children()
	return len(siblings) > 0 && siblings[len(siblings)-1] == n
}
