package outline

import (
	"strings"

	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

// Node is an entity that occupies a region of the document.
type Node interface {
	Region() region.Region
}

// TreeNode is one element of the typed hierarchy built by Tree.
type TreeNode struct {
	Kind     scope.Kind
	Status   scope.Status
	Text     string
	Depth    int
	Region   region.Region
	Children []*TreeNode
}

// SectionTree is the hierarchy of one section.
type SectionTree struct {
	Section Section
	Nodes   []*TreeNode
}

// Tree builds the typed hierarchy of the whole document. Projects own the
// deeper lines after them; notes hang under the task they follow.
func (d *Document) Tree() []SectionTree {
	lines := d.Index().Lines()
	var out []SectionTree
	for _, sec := range d.Sections() {
		st := SectionTree{Section: sec}
		var stack []*TreeNode
		var lastTask *TreeNode

		for _, l := range lines {
			if !sec.Region.Covers(l.Region) || l.Kind == scope.KindSeparator {
				continue
			}
			text := d.buf.Substr(l.Region)
			n := &TreeNode{Kind: l.Kind, Status: l.Status, Depth: len(l.Indent), Region: l.Span()}

			switch l.Kind {
			case scope.KindBlank:
				lastTask = nil
				continue
			case scope.KindNote:
				if lastTask == nil {
					continue
				}
				n.Text = strings.TrimSpace(text)
				lastTask.Children = append(lastTask.Children, n)
				continue
			case scope.KindProject:
				n.Text = l.Name
			case scope.KindTask:
				n.Text = strings.TrimSpace(d.buf.Substr(region.New(l.Bullet.End, l.Region.End)))
			}

			for len(stack) > 0 && stack[len(stack)-1].Depth >= n.Depth {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				st.Nodes = append(st.Nodes, n)
			} else {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, n)
			}

			lastTask = nil
			if l.Kind == scope.KindProject {
				stack = append(stack, n)
			} else {
				lastTask = n
			}
		}
		out = append(out, st)
	}
	return out
}
