package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mz2/flattree/pkg/tree"
)

// App is the top-level bubbletea model: a title bar, the tree list, and a
// status line. It owns quit handling and optional expansion-state
// snapshot dumps; everything else is delegated to the TreeList.
type App[T any] struct {
	list  *TreeList[T]
	ctrl  *tree.Controller[T]
	theme Theme
	title string

	// OnSnapshot, when set, receives the expansion snapshot when the
	// user presses "s". Errors surface on the status line.
	OnSnapshot func(map[tree.Key]bool) error

	snapshotKey key.Binding
	status      string
}

// NewApp wraps the tree list in a runnable program model.
func NewApp[T any](ctrl *tree.Controller[T], list *TreeList[T], theme Theme, title string) *App[T] {
	return &App[T]{
		list:        list,
		ctrl:        ctrl,
		theme:       theme,
		title:       title,
		snapshotKey: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snapshot")),
	}
}

// Init implements tea.Model.
func (a *App[T]) Init() tea.Cmd {
	return a.list.Init()
}

// Update implements tea.Model.
func (a *App[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Reserve two lines for the title and status bars.
		a.list.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2})
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.list.keys.Quit) {
			return a, tea.Quit
		}
		if key.Matches(msg, a.snapshotKey) && a.OnSnapshot != nil {
			if err := a.OnSnapshot(a.ctrl.ExpansionSnapshot()); err != nil {
				a.status = fmt.Sprintf("snapshot failed: %v", err)
			} else {
				a.status = "snapshot written"
			}
			return a, nil
		}
	}
	return a, a.list.Update(msg)
}

// View implements tea.Model.
func (a *App[T]) View() string {
	r := a.theme.Renderer
	title := r.NewStyle().
		Bold(true).
		Foreground(a.theme.Primary).
		Render(a.title)
	count := r.NewStyle().
		Foreground(a.theme.Muted).
		Render(fmt.Sprintf(" %d rows", a.list.ItemCount()))
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, count)

	status := ""
	if a.status != "" {
		status = r.NewStyle().Foreground(a.theme.Muted).Render(a.status)
	}
	return header + "\n" + a.list.View() + "\n" + status
}
