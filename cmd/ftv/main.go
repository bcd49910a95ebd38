// Command ftv is the flattree viewer: it loads a hierarchical data file
// (JSON document or SQLite adjacency table), projects it onto an
// animated, virtualized tree list in the terminal, and live-reloads the
// tree when the file changes.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mz2/flattree/pkg/anim"
	"github.com/mz2/flattree/pkg/config"
	"github.com/mz2/flattree/pkg/delegate"
	"github.com/mz2/flattree/pkg/export"
	"github.com/mz2/flattree/pkg/tree"
	"github.com/mz2/flattree/pkg/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to flattree.yaml (default: ./flattree.yaml)")
	dataPath := flag.String("data", "", "Path to the tree data file (overrides config)")
	source := flag.String("source", "", "Data source: json or sqlite (overrides config)")
	table := flag.String("table", "", "SQLite table name (overrides config)")
	noWatch := flag.Bool("no-watch", false, "Disable live reload on file changes")
	plain := flag.Bool("plain", false, "Print the tree as plain text and exit")
	exportPath := flag.String("export", "", "Write the tree as a markdown outline to this file and exit")
	snapshotPath := flag.String("snapshot", "", "File to write expansion snapshots to (s key)")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *source != "" {
		cfg.Data.Source = *source
	}
	if *table != "" {
		cfg.Data.Table = *table
	}
	if cfg.Data.Path == "" {
		fmt.Fprintln(os.Stderr, "No data file given. Use -data, flattree.yaml, or FLATTREE_DATA.")
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	del, err := loadDelegate(cfg)
	if err != nil {
		logger.Fatal("load tree data", "err", err)
	}

	if *exportPath != "" {
		if err := export.SaveMarkdown(del.Roots(), "flattree export", *exportPath); err != nil {
			logger.Fatal("export markdown", "err", err)
		}
		return
	}

	ctrl := tree.NewController[*delegate.Item](del,
		tree.WithKeyFunc[*delegate.Item](delegate.Key),
		tree.WithLogger[*delegate.Item](logger),
	)
	defer ctrl.Dispose()

	// Non-interactive: dump the fully expanded tree and exit. Also the
	// fallback when stdout is not a terminal, so piping ftv into a file
	// produces something useful instead of escape soup.
	if *plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		_ = ctrl.ExpandAll()
		printPlain(os.Stdout, ctrl)
		return
	}

	curve, err := anim.CurveByName(cfg.Animation.Easing)
	if err != nil {
		logger.Fatal("invalid easing", "err", err)
	}
	coord := anim.New[*delegate.Item](
		anim.WithDuration(cfg.Animation.Duration()),
		anim.WithCurve(curve),
	)
	coord.Bind(ctrl)
	defer coord.Dispose()

	theme := ui.DefaultTheme(lipgloss.DefaultRenderer())
	list := ui.NewTreeList[*delegate.Item](ctrl, coord, func(it *delegate.Item) string {
		return it.Label
	}, theme)
	list.SetFrameInterval(cfg.Animation.FrameInterval())

	app := ui.NewApp[*delegate.Item](ctrl, list, theme, "flattree")
	if *snapshotPath != "" {
		app.OnSnapshot = func(snap map[tree.Key]bool) error {
			data, err := delegate.MarshalSnapshot(snap)
			if err != nil {
				return err
			}
			return os.WriteFile(*snapshotPath, data, 0o644)
		}
	}

	p := tea.NewProgram(app, tea.WithAltScreen())

	var watcher *delegate.Watcher
	if cfg.Data.WatchEnabled() && !*noWatch {
		watcher, err = delegate.NewWatcher(cfg.Data.Path, cfg.Data.Debounce(), func() {
			fresh, err := loadDelegate(cfg)
			if err != nil {
				logger.Warn("reload tree data", "err", err)
				return
			}
			p.Send(ui.DataChangedMsg[*delegate.Item]{Delegate: fresh})
		})
		if err != nil {
			logger.Warn("file watching disabled", "err", err)
		} else if err := watcher.Start(); err != nil {
			logger.Warn("file watching disabled", "err", err)
			watcher = nil
		}
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := p.Run()
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Fatal("run viewer", "err", err)
	}
}

// loadDelegate builds the delegate the config names.
func loadDelegate(cfg config.Config) (*delegate.Static, error) {
	switch cfg.Data.Source {
	case "sqlite":
		return delegate.LoadSQLite(cfg.Data.Path, cfg.Data.Table)
	default:
		return delegate.LoadJSON(cfg.Data.Path)
	}
}

// printPlain writes an indented text rendering of the whole tree.
func printPlain(w io.Writer, ctrl *tree.Controller[*delegate.Item]) {
	for i := 0; i < ctrl.TreeSize(); i++ {
		n, err := ctrl.NodeAt(i)
		if err != nil {
			return
		}
		indent := strings.Repeat("  ", n.Depth()-1)
		fmt.Fprintf(w, "%s%s\n", indent, n.Item().Label)
	}
}
