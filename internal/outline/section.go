package outline

import (
	"strings"

	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

// Section is a run of the document delimited by separator lines. The text
// before the first separator is the root section, whose Separator is empty.
type Section struct {
	// Title is the name of the first project heading in the section, or ""
	// when the section has none.
	Title string
	// Separator is the separator line opening the section.
	Separator region.Region
	// Region spans the section up to the next separator or the end of text.
	Region region.Region
}

// Root reports whether s is the section before any separator.
func (s Section) Root() bool {
	return s.Separator.Empty()
}

// Sections returns every section in document order.
func (d *Document) Sections() []Section {
	idx := d.Index()
	size := d.buf.Size()
	tagged := idx.QueryAll(scope.TagSection)

	rootEnd := size
	if len(tagged) > 0 {
		rootEnd = tagged[0].Begin
	}

	var out []Section
	if len(tagged) == 0 || rootEnd > 0 {
		out = append(out, d.section(region.Point(0), region.New(0, rootEnd)))
	}
	for _, r := range tagged {
		sep := d.buf.Line(r.Begin)
		out = append(out, d.section(sep, r))
	}
	return out
}

func (d *Document) section(sep, r region.Region) Section {
	s := Section{Separator: sep, Region: r}
	if ps := d.ProjectsIn(r); len(ps) > 0 {
		s.Title = ps[0].Name()
	}
	return s
}

// SectionAt returns the section containing p. The end of the document
// belongs to the last section.
func (d *Document) SectionAt(p int) Section {
	secs := d.Sections()
	for _, s := range secs {
		if s.Region.Contains(p) {
			return s
		}
	}
	return secs[len(secs)-1]
}

// FindSection returns the first section with the given title, compared
// without surrounding whitespace or trailing colon.
func (d *Document) FindSection(title string) (Section, bool) {
	title = strings.TrimSuffix(strings.TrimSpace(title), ":")
	for _, s := range d.Sections() {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}
