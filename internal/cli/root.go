// Package cli implements the plaintasks command line.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/plaintasks/internal/app"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/fsys"
)

// App holds the global flags and the environment of one invocation.
type App struct {
	ConfigPath string
	LogLevel   string
	Diff       bool
	DryRun     bool
	NoColor    bool

	fs    fsys.FS
	clock func() time.Time
}

// NewRootCmd builds the plaintasks command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{fs: fsys.OS, clock: time.Now})
}

func newRootCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "plaintasks",
		Short:        "Edit PlainTasks todo files from the command line",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Complete the tasks on lines 3 and 5
  plaintasks complete --line 3 --line 5 todo.todo

  # Archive every finished task, showing what changes
  plaintasks --diff archive todo.todo

  # Move a task under Work > Later, creating the missing projects
  plaintasks move --line 4 --section Work --project Later todo.todo
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(a.LogLevel) {
		case "debug", "info", "warn", "warning", "error":
			return nil
		}
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", a.LogLevel)
	}

	cmd.PersistentFlags().StringVarP(&a.ConfigPath, "config", "c", "", "Settings file (default: user and project settings files)")
	cmd.PersistentFlags().StringVar(&a.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&a.Diff, "diff", false, "Print the changes a command makes")
	cmd.PersistentFlags().BoolVarP(&a.DryRun, "dry-run", "n", false, "Do not write the file")
	cmd.PersistentFlags().BoolVar(&a.NoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newCompleteCmd(a))
	cmd.AddCommand(newCancelCmd(a))
	cmd.AddCommand(newNewTaskCmd(a))
	cmd.AddCommand(newArchiveCmd(a))
	cmd.AddCommand(newSortCmd(a))
	cmd.AddCommand(newMoveCmd(a))
	cmd.AddCommand(newArchiveFileCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newTreeCmd(a))
	cmd.AddCommand(newOpenLinkCmd(a))

	return cmd
}

// settingsPaths returns the settings layers for the document at file.
func (a *App) settingsPaths(file string) ([]string, error) {
	if a.ConfigPath != "" {
		if _, err := a.fs.Stat(a.ConfigPath); err != nil {
			return nil, fmt.Errorf("settings file: %w", err)
		}
		return []string{a.ConfigPath}, nil
	}
	abs, err := a.fs.Abs(file)
	if err != nil {
		return nil, err
	}
	return config.DefaultPaths(filepath.Dir(abs)), nil
}

// open starts a session for file and opens it.
func (a *App) open(cmd *cobra.Command, file string) (*app.Session, *app.Document, *printer, error) {
	paths, err := a.settingsPaths(file)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := config.NewStore(paths...)
	if err != nil {
		return nil, nil, nil, err
	}

	p := newPrinter(cmd, a.NoColor)
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(a.LogLevel),
		Output: cmd.ErrOrStderr(),
		Prefix: "plaintasks",
	})
	s := app.NewSession(
		app.WithFS(a.fs),
		app.WithStore(store),
		app.WithLogger(logger),
		app.WithClock(a.clock),
		app.WithNoticeHandler(p.notice),
	)
	doc, err := s.Open(file)
	if err != nil {
		s.Close()
		return nil, nil, nil, err
	}
	return s, doc, p, nil
}

type editFunc func(s *app.Session, doc *app.Document) (app.Report, error)

// edit runs an editing command on file and writes the result back unless
// nothing changed or --dry-run is set.
func (a *App) edit(cmd *cobra.Command, file string, fn editFunc) error {
	s, doc, p, err := a.open(cmd, file)
	if err != nil {
		return err
	}
	defer s.Close()

	before := doc.Buffer().Text()
	rep, err := fn(s, doc)
	if err != nil {
		return err
	}
	if !rep.Changed() {
		return nil
	}

	if a.Diff {
		p.diff(before, doc.Buffer().Text())
	}
	if a.DryRun {
		p.status("%s (dry run, %s not written)", rep.Detail, doc.Name)
		return nil
	}
	if err := s.Save(); err != nil {
		return err
	}
	p.status("%s", rep.Detail)
	return nil
}
