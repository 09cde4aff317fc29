package outline

import (
	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

// Project is a "Name:" heading line.
type Project struct {
	doc    *Document
	region region.Region
	indent string
	name   string
}

func (d *Document) newProject(l scope.Line) *Project {
	return &Project{doc: d, region: l.Region, indent: l.Indent, name: l.Name}
}

// Region returns the heading line, indentation included, newline excluded.
func (p *Project) Region() region.Region {
	return p.region
}

// Name returns the heading text without the colon.
func (p *Project) Name() string {
	return p.name
}

// Indent returns the leading whitespace of the heading.
func (p *Project) Indent() string {
	return p.indent
}

// Depth is the length of the leading indentation.
func (p *Project) Depth() int {
	return len(p.indent)
}

// Block returns the lines indented below the heading, or an empty region
// at the end of the heading when there are none.
func (p *Project) Block() region.Region {
	return p.doc.buf.IndentedRegion(p.region.Begin)
}

// LastContent returns the end of the last non-blank line of the project,
// the heading itself when the project is empty.
func (p *Project) LastContent() int {
	b := p.Block()
	if b.Empty() {
		return p.region.End
	}
	return b.End
}

// Children returns the tasks and projects whose nearest enclosing project
// is p, in document order.
func (p *Project) Children() []Node {
	var out []Node
	block := p.Block()
	if block.Empty() {
		return nil
	}
	for _, l := range p.doc.Index().Lines() {
		if !block.Covers(l.Span()) {
			continue
		}
		switch l.Kind {
		case scope.KindTask:
			t := p.doc.newTask(l)
			if parent := last(t.ProjectPath()); parent != nil && parent.region == p.region {
				out = append(out, t)
			}
		case scope.KindProject:
			c := p.doc.newProject(l)
			if parent := last(p.doc.projectPath(c.region.Begin, c.Depth())); parent != nil && parent.region == p.region {
				out = append(out, c)
			}
		}
	}
	return out
}

// Parent returns the enclosing project, or nil at the top level.
func (p *Project) Parent() *Project {
	return last(p.doc.projectPath(p.region.Begin, p.Depth()))
}

func last(ps []*Project) *Project {
	if len(ps) == 0 {
		return nil
	}
	return ps[len(ps)-1]
}
