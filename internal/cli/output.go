package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/dshills/plaintasks/internal/app"
	"github.com/dshills/plaintasks/internal/linksearch"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/scope"
)

// printer writes command output to stdout and status lines to stderr.
type printer struct {
	out io.Writer
	err io.Writer

	info    *color.Color
	warn    *color.Color
	added   *color.Color
	removed *color.Color
	heading *color.Color
	done    *color.Color
	faint   *color.Color
}

func newPrinter(cmd *cobra.Command, noColor bool) *printer {
	p := &printer{
		out:     cmd.OutOrStdout(),
		err:     cmd.ErrOrStderr(),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow, color.Bold),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		heading: color.New(color.Bold),
		done:    color.New(color.FgGreen),
		faint:   color.New(color.Faint),
	}
	enable := !noColor && isTerminal(p.out)
	for _, c := range []*color.Color{p.info, p.warn, p.added, p.removed, p.heading, p.done, p.faint} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) status(format string, args ...any) {
	fmt.Fprintln(p.err, p.info.Sprintf(format, args...))
}

func (p *printer) notice(n app.Notice) {
	c := p.info
	if n.Level == app.NoticeWarn {
		c = p.warn
	}
	fmt.Fprintf(p.err, "%s: %s: %s\n", c.Sprint(n.Level), n.Op, n.Message)
}

// diff prints a line diff between before and after.
func (p *printer) diff(before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		for _, l := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				fmt.Fprintln(p.out, p.added.Sprint("+"+l))
			case diffmatchpatch.DiffDelete:
				fmt.Fprintln(p.out, p.removed.Sprint("-"+l))
			default:
				fmt.Fprintln(p.out, " "+l)
			}
		}
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// tree prints the hierarchy with two spaces per level.
func (p *printer) tree(sections []outline.SectionTree) {
	for i, st := range sections {
		if !st.Section.Root() || len(sections) > 1 {
			if i > 0 {
				fmt.Fprintln(p.out)
			}
			title := st.Section.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintln(p.out, p.heading.Sprintf("== %s ==", title))
		}
		for _, n := range st.Nodes {
			p.node(n, 0)
		}
	}
}

func (p *printer) node(n *outline.TreeNode, level int) {
	indent := strings.Repeat("  ", level)
	switch n.Kind {
	case scope.KindProject:
		fmt.Fprintln(p.out, indent+p.heading.Sprint(n.Text+":"))
	case scope.KindTask:
		switch n.Status {
		case scope.StatusCompleted:
			fmt.Fprintln(p.out, indent+p.done.Sprint("[x] "+n.Text))
		case scope.StatusCancelled:
			fmt.Fprintln(p.out, indent+p.faint.Sprint("[-] "+n.Text))
		default:
			fmt.Fprintln(p.out, indent+"[ ] "+n.Text)
		}
	default:
		fmt.Fprintln(p.out, indent+p.faint.Sprint(n.Text))
	}
	for _, c := range n.Children {
		p.node(c, level+1)
	}
}

// matches prints one location per line as path[:line[:column]].
func (p *printer) matches(ms []linksearch.Match) {
	for _, m := range ms {
		loc := m.Path
		if m.Dir {
			loc += string(os.PathSeparator)
		}
		if m.Line > 0 {
			loc += ":" + strconv.Itoa(m.Line)
			if m.Column > 0 {
				loc += ":" + strconv.Itoa(m.Column)
			}
		}
		fmt.Fprintln(p.out, loc)
	}
}
