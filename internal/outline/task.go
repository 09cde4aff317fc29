package outline

import (
	"sort"
	"strings"

	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

// Task is one task line.
type Task struct {
	doc    *Document
	region region.Region
	bullet region.Region
	indent string
	status scope.Status

	title string
	path  []*Project
	paths bool
}

func (d *Document) newTask(l scope.Line) *Task {
	return &Task{
		doc:    d,
		region: l.Region,
		bullet: l.Bullet,
		indent: l.Indent,
		status: l.Status,
	}
}

// Region spans the bullet to the end of the line, newline excluded.
func (t *Task) Region() region.Region {
	return t.region
}

// SetRegion moves the task after an edit changed its offsets or length.
func (t *Task) SetRegion(r region.Region) {
	shift := r.Begin - t.region.Begin
	t.bullet = t.bullet.Shift(shift)
	t.region = r
}

// Adjust translates the task across delta.
func (t *Task) Adjust(delta region.Region) {
	t.SetRegion(region.Adjust(t.region, delta))
}

// Resize records an edit of n bytes inside the task line.
func (t *Task) Resize(n int) {
	t.region.End += n
	t.title = ""
}

// SetBullet records a new bullet region after the glyph was replaced.
func (t *Task) SetBullet(r region.Region) {
	t.bullet = r
	t.title = ""
}

// SetStatus records the status reached by a mutation.
func (t *Task) SetStatus(s scope.Status) {
	t.status = s
}

// Line returns the task line with its indentation, newline excluded.
func (t *Task) Line() region.Region {
	return region.New(t.region.Begin-len(t.indent), t.region.End)
}

// Bullet returns the region of the status glyph.
func (t *Task) Bullet() region.Region {
	return t.bullet
}

// Indent returns the leading whitespace of the line.
func (t *Task) Indent() string {
	return t.indent
}

// Status returns the status the task had when it was derived.
func (t *Task) Status() scope.Status {
	return t.status
}

// Text returns the live text from the bullet to the end of the line.
func (t *Task) Text() string {
	return t.doc.buf.Substr(t.region)
}

// Title returns the task text without bullet or surrounding whitespace.
func (t *Task) Title() string {
	if t.title == "" {
		s := t.doc.buf.Substr(region.New(t.bullet.End, t.region.End))
		t.title = strings.TrimSpace(s)
	}
	return t.title
}

// Notes returns the note lines directly following the task, up to the first
// line that is not a note.
func (t *Task) Notes() []region.Region {
	lines := t.doc.Index().Lines()
	i := sort.Search(len(lines), func(i int) bool { return lines[i].Region.End >= t.region.End })
	var out []region.Region
	for i++; i < len(lines) && lines[i].Kind == scope.KindNote; i++ {
		out = append(out, lines[i].Region)
	}
	return out
}

// Block returns the task line and its notes as whole lines, trailing
// newline included when there is one.
func (t *Task) Block() region.Region {
	r := t.Line()
	if notes := t.Notes(); len(notes) > 0 {
		r.End = notes[len(notes)-1].End
	}
	return t.doc.buf.FullLine(r)
}

// Section returns the section the task belongs to.
func (t *Task) Section() Section {
	return t.doc.SectionAt(t.region.Begin)
}

// ProjectPath returns the projects enclosing the task, outermost first.
// The path is empty for a root-level task.
func (t *Task) ProjectPath() []*Project {
	if !t.paths {
		t.path = t.doc.projectPath(t.Line().Begin, len(t.indent))
		t.paths = true
	}
	return t.path
}

// ProjectNames returns the names along ProjectPath.
func (t *Task) ProjectNames() []string {
	var names []string
	for _, p := range t.ProjectPath() {
		names = append(names, p.Name())
	}
	return names
}

// InlineTag is one @name or @name(value) annotation.
type InlineTag struct {
	Name   string
	Value  string
	Region region.Region
	// HasValue distinguishes @name() from @name.
	HasValue bool
}

// Tags returns the inline tags on the task line.
func (t *Task) Tags() []InlineTag {
	idx := t.doc.Index()
	var out []InlineTag
	for _, r := range idx.Query(scope.TagInline, t.region) {
		tag := InlineTag{Region: r}
		if n, ok := scope.First(idx, scope.TagInlineName, r); ok {
			tag.Name = t.doc.buf.Substr(n)
		}
		if v, ok := scope.First(idx, scope.TagInlineValue, r); ok {
			tag.Value = t.doc.buf.Substr(v)
			tag.HasValue = true
		}
		out = append(out, tag)
	}
	return out
}

// Tag returns the first tag named name, compared case-insensitively.
func (t *Task) Tag(name string) (InlineTag, bool) {
	for _, tag := range t.Tags() {
		if strings.EqualFold(tag.Name, name) {
			return tag, true
		}
	}
	return InlineTag{}, false
}

// projectPath walks the project headings between the section start and pos
// backward. A project joins the path only when it is shallower than every
// project already taken.
func (d *Document) projectPath(pos, depth int) []*Project {
	sec := d.SectionAt(pos)
	projects := d.ProjectsIn(region.New(sec.Region.Begin, pos))

	var path []*Project
	limit := depth
	for i := len(projects) - 1; i >= 0 && limit > 0; i-- {
		p := projects[i]
		if p.Depth() < limit {
			path = append(path, p)
			limit = p.Depth()
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
