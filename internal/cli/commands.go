package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/plaintasks/internal/app"
	"github.com/dshills/plaintasks/internal/config/notify"
	"github.com/dshills/plaintasks/internal/config/watcher"
)

// lineFlag registers the repeatable 1-based --line flag.
func lineFlag(cmd *cobra.Command, lines *[]int, usage string, required bool) {
	cmd.Flags().IntSliceVarP(lines, "line", "l", nil, usage)
	if required {
		_ = cmd.MarkFlagRequired("line")
	}
}

func newCompleteCmd(a *App) *cobra.Command {
	var lines []int
	cmd := &cobra.Command{
		Use:   "complete FILE",
		Short: "Toggle completion of the tasks on the given lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(s *app.Session, doc *app.Document) (app.Report, error) {
				return s.Complete(doc, lines)
			})
		},
	}
	lineFlag(cmd, &lines, "Task line (repeatable)", true)
	return cmd
}

func newCancelCmd(a *App) *cobra.Command {
	var lines []int
	cmd := &cobra.Command{
		Use:   "cancel FILE",
		Short: "Toggle cancellation of the tasks on the given lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(s *app.Session, doc *app.Document) (app.Report, error) {
				return s.Cancel(doc, lines)
			})
		},
	}
	lineFlag(cmd, &lines, "Task line (repeatable)", true)
	return cmd
}

func newNewTaskCmd(a *App) *cobra.Command {
	var lines []int
	cmd := &cobra.Command{
		Use:   "new FILE",
		Short: "Add a task after each of the given lines",
		Long: `Add a task after each of the given lines.

The new task is indented like the task on the line, or one level deeper
below a project. Blank and note lines become tasks in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(s *app.Session, doc *app.Document) (app.Report, error) {
				return s.NewTask(doc, lines)
			})
		},
	}
	lineFlag(cmd, &lines, "Line to add a task after (repeatable)", true)
	return cmd
}

func newArchiveCmd(a *App) *cobra.Command {
	var lines []int
	cmd := &cobra.Command{
		Use:   "archive FILE",
		Short: "Move finished tasks to the archive section",
		Long: `Move finished tasks to the archive section, tagging each with the
projects it came from. With --line only the finished tasks on those lines
are archived.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(s *app.Session, doc *app.Document) (app.Report, error) {
				return s.Archive(doc, lines)
			})
		},
	}
	lineFlag(cmd, &lines, "Only archive the tasks on this line (repeatable)", false)
	return cmd
}

func newSortCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sort FILE",
		Short: "Order the archive section by date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(s *app.Session, doc *app.Document) (app.Report, error) {
				return s.Sort(doc)
			})
		},
	}
}

func newMoveCmd(a *App) *cobra.Command {
	var (
		lines   []int
		section string
		project string
	)
	cmd := &cobra.Command{
		Use:   "move FILE",
		Short: "Move tasks under a project, creating missing projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := splitProjectPath(project)
			return a.edit(cmd, args[0], func(s *app.Session, doc *app.Document) (app.Report, error) {
				return s.Move(doc, lines, section, path)
			})
		},
	}
	lineFlag(cmd, &lines, "Task line (repeatable)", true)
	cmd.Flags().StringVarP(&section, "section", "s", "", "Title of the destination section")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Destination project path, e.g. Work/Later")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

// splitProjectPath splits "A / B:" into its project names.
func splitProjectPath(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		part = strings.TrimSuffix(strings.TrimSpace(part), ":")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func newArchiveFileCmd(a *App) *cobra.Command {
	var line int
	cmd := &cobra.Command{
		Use:   "archive-file FILE",
		Short: "Append the project at a line to the archive file",
		Long: `Append the project heading at --line and everything below it to the
archive file, stamped with the current date, and remove it from FILE.
The archive file name comes from the archive_file_mask setting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(s *app.Session, doc *app.Document) (app.Report, error) {
				return s.ArchiveFile(doc, line)
			})
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "Project heading line")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}

func newStatsCmd(a *App) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Print task statistics",
		Long: `Print task statistics. With --watch the statistics are printed again
whenever FILE or one of its settings files changes, until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, doc, p, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			if watch {
				return watchStats(cmd.Context(), s, doc, p)
			}
			p.line("%s", s.Stats(doc))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print again whenever the file or its settings change")
	return cmd
}

// watchStats prints the statistics of doc, then again after every change
// to its file or settings until ctx is done.
func watchStats(ctx context.Context, s *app.Session, doc *app.Document, p *printer) error {
	changed := make(chan struct{}, 1)
	poke := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		p.status("watch: %v", err)
	}))
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Watch(doc.Path); err != nil {
		return err
	}
	w.OnChange(func(watcher.Event) { poke() })
	w.Start()

	if err := s.WatchSettings(); err != nil {
		return err
	}
	sub := s.SubscribeSettings(func(notify.Change) { poke() })
	defer sub.Unsubscribe()

	p.line("%s", s.Stats(doc))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			fresh, err := s.Reload(doc)
			if err != nil {
				// The file may be mid-rewrite; the next event retries.
				p.status("%v", err)
				continue
			}
			doc = fresh
			p.line("%s", s.Stats(doc))
		}
	}
}

func newTreeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the sections, projects and tasks of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, doc, p, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			p.tree(s.Tree(doc))
			return nil
		},
	}
}

func newOpenLinkCmd(a *App) *cobra.Command {
	var (
		line    int
		roots   []string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "open-link FILE",
		Short: "Find the file a link on a line points to",
		Long: `Find the file a link on --line points to. Plain paths, markdown links
and wiki links are recognized. The directory of FILE is searched first,
then every --root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, doc, p, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			matches, _, err := s.OpenLink(ctx, doc, line, roots)
			if errors.Is(err, context.DeadlineExceeded) {
				return errors.New("link search timed out")
			}
			if err != nil {
				return err
			}
			p.matches(matches)
			return nil
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "Line holding the link")
	cmd.Flags().StringArrayVarP(&roots, "root", "r", nil, "Additional directory to search (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up the search after this long")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}
