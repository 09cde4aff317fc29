package scope

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/plaintasks/internal/region"
)

// Grammar holds the literals that drive annotation.
type Grammar struct {
	PendingBullets   []string
	CompletedBullets []string
	CancelledBullets []string
	DoneTag          string
	CancelledTag     string
	ArchiveName      string
}

// DefaultGrammar returns the bullets recognised out of the box.
func DefaultGrammar() Grammar {
	return Grammar{
		PendingBullets:   []string{"☐", "❍", "❑", "■", "□", "▪", "▫", "–", "—", "≡", "→", "›", "[ ]", "-"},
		CompletedBullets: []string{"✔", "✓", "☑", "+", "[x]"},
		CancelledBullets: []string{"✘", "x", "[-]"},
		DoneTag:          "done",
		CancelledTag:     "cancelled",
		ArchiveName:      "Archive:",
	}
}

// WithGlyphs returns a copy of g whose first bullets are the given glyphs.
func (g Grammar) WithGlyphs(pending, completed, cancelled string) Grammar {
	g.PendingBullets = prepend(pending, g.PendingBullets)
	g.CompletedBullets = prepend(completed, g.CompletedBullets)
	g.CancelledBullets = prepend(cancelled, g.CancelledBullets)
	return g
}

func prepend(s string, list []string) []string {
	out := []string{s}
	for _, l := range list {
		if l != s && l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Kind classifies a line.
type Kind uint8

const (
	KindBlank Kind = iota
	KindTask
	KindProject
	KindNote
	KindSeparator
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindTask:
		return "task"
	case KindProject:
		return "project"
	case KindNote:
		return "note"
	case KindSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Status of a task line.
type Status uint8

const (
	StatusNone Status = iota
	StatusPending
	StatusCompleted
	StatusCancelled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Line is one typed node of the parse.
type Line struct {
	Kind   Kind
	Region region.Region // newline excluded
	Indent string
	Status Status
	Bullet region.Region
	Name   string // project name
}

// Annotation is the Index produced by Annotate, with the typed lines kept
// alongside the tag table.
type Annotation struct {
	table
	lines []Line
}

// Lines returns the typed line nodes in document order.
func (a *Annotation) Lines() []Line {
	return a.lines
}

// Span returns the whole line, indentation included. A task's Region
// starts at its bullet.
func (l Line) Span() region.Region {
	if l.Kind == KindTask {
		return region.New(l.Region.Begin-len(l.Indent), l.Region.End)
	}
	return l.Region
}

// LineAt returns the typed node of the line containing p.
func (a *Annotation) LineAt(p int) (Line, bool) {
	i := sort.Search(len(a.lines), func(i int) bool { return a.lines[i].Region.End >= p })
	if i < len(a.lines) && a.lines[i].Span().Begin <= p {
		return a.lines[i], true
	}
	return Line{}, false
}

var (
	separatorRe = regexp.MustCompile(`^\s*(?:---.{3,5}---+|＿{3,})\s*$`)
	projectRe   = regexp.MustCompile(`^(\s*)(\S.*?):((?:\s+@[^\s(]+(?:\([^)]*\))?)*)\s*$`)
	inlineTagRe = regexp.MustCompile(`(?:^|\s)(@([\p{L}\p{N}_\-.]+)(\([^)]*\))?)`)
)

// Annotate parses text and returns its tag index.
func Annotate(text string, g Grammar) *Annotation {
	a := &Annotation{table: table{}}

	var sectionStarts []int
	pos := 0
	for pos <= len(text) {
		end := strings.IndexByte(text[pos:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += pos
		}
		l := a.annotateLine(text[pos:end], pos, g)
		if l.Kind == KindSeparator {
			sectionStarts = append(sectionStarts, pos)
		}
		a.lines = append(a.lines, l)
		if end >= len(text) {
			break
		}
		pos = end + 1
	}

	for i, s := range sectionStarts {
		e := len(text)
		if i+1 < len(sectionStarts) {
			e = sectionStarts[i+1]
		}
		a.add(TagSection, region.New(s, e))
	}
	return a
}

func (a *Annotation) annotateLine(s string, off int, g Grammar) Line {
	r := region.New(off, off+len(s))
	trimmed := strings.TrimSpace(s)
	indent := s[:len(s)-len(strings.TrimLeft(s, " \t"))]

	switch {
	case trimmed == "":
		return Line{Kind: KindBlank, Region: r}
	case separatorRe.MatchString(s):
		a.add(TagSeparator, r)
		return Line{Kind: KindSeparator, Region: r, Indent: indent}
	}

	body := s[len(indent):]
	if bullet, status, ok := matchBullet(body, g); ok {
		return a.annotateTask(s, off, indent, bullet, status, g)
	}

	if m := projectRe.FindStringSubmatchIndex(s); m != nil {
		a.add(TagProject, r)
		if m[3] > m[2] {
			a.add(TagProjectIndent, region.New(off+m[2], off+m[3]))
		}
		a.add(TagProjectTitle, region.New(off+m[4], off+m[5]))
		a.annotateInline(s, off, m[5])
		if g.ArchiveName != "" && trimmed == strings.TrimSpace(g.ArchiveName) {
			a.add(TagArchive, r)
		}
		return Line{Kind: KindProject, Region: r, Indent: indent, Name: s[m[4]:m[5]]}
	}

	a.add(TagNote, r)
	return Line{Kind: KindNote, Region: r, Indent: indent}
}

func (a *Annotation) annotateTask(s string, off int, indent, bullet string, status Status, g Grammar) Line {
	begin := off + len(indent)
	r := region.New(begin, off+len(s))
	br := region.New(begin, begin+len(bullet))

	rest := s[len(indent)+len(bullet):]
	names := inlineTags(rest)
	if status == StatusPending {
		switch {
		case containsFold(names, g.DoneTag):
			status = StatusCompleted
		case containsFold(names, g.CancelledTag):
			status = StatusCancelled
		}
	}

	a.add(TagTask, r)
	switch status {
	case StatusPending:
		a.add(TagPending, r)
	case StatusCompleted:
		a.add(TagCompleted, r)
	case StatusCancelled:
		a.add(TagCancelled, r)
	}
	a.add(TagBullet, br)
	a.add(TagHeading, r)
	a.annotateInline(s, off, len(indent)+len(bullet))

	return Line{Kind: KindTask, Region: r, Indent: indent, Status: status, Bullet: br}
}

func (a *Annotation) annotateInline(s string, off, from int) {
	for _, m := range inlineTagRe.FindAllStringSubmatchIndex(s[from:], -1) {
		tb, te := from+m[2], from+m[3]
		a.add(TagInline, region.New(off+tb, off+te))
		a.add(TagInlineName, region.New(off+from+m[4], off+from+m[5]))
		if m[6] >= 0 {
			a.add(TagInlineValue, region.New(off+from+m[6]+1, off+from+m[7]-1))
		}
	}
}

func inlineTags(s string) []string {
	var out []string
	for _, m := range inlineTagRe.FindAllStringSubmatch(s, -1) {
		out = append(out, m[2])
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, l := range list {
		if strings.EqualFold(l, s) {
			return true
		}
	}
	return false
}

// matchBullet reports the bullet at the start of body. A bullet must be
// followed by whitespace or the end of the line. Single-character ASCII
// bullets such as "x" also need text after them. Longer bullets win.
func matchBullet(body string, g Grammar) (string, Status, bool) {
	best, status := "", StatusNone
	try := func(list []string, st Status) {
		for _, b := range list {
			if len(b) <= len(best) || !strings.HasPrefix(body, b) {
				continue
			}
			rest := body[len(b):]
			if len(b) == 1 && strings.TrimSpace(rest) == "" {
				continue
			}
			if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
				best, status = b, st
			}
		}
	}
	try(g.PendingBullets, StatusPending)
	try(g.CompletedBullets, StatusCompleted)
	try(g.CancelledBullets, StatusCancelled)
	return best, status, best != ""
}
