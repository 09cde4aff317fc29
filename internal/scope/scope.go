// Package scope provides the semantic tag index that the task engines query.
//
// The engines only depend on the Index interface: given a tag and a region it
// returns the tagged sub-regions. Annotate is the index shipped with this
// module; it parses the plain text line by line into typed nodes and records
// a region for every tag it recognises.
package scope

import (
	"sort"

	"github.com/dshills/plaintasks/internal/region"
)

// Tag names a semantic label attached to a sub-range of the document.
type Tag string

// Tags produced by Annotate.
const (
	TagTask      Tag = "meta.item.todo"
	TagPending   Tag = "meta.item.todo.pending"
	TagCompleted Tag = "meta.item.todo.completed"
	TagCancelled Tag = "meta.item.todo.cancelled"
	TagBullet    Tag = "meta.item.bullet"
	TagHeading   Tag = "meta.item.heading"

	TagInline      Tag = "meta.tag.todo"
	TagInlineName  Tag = "support.constant.name.tag"
	TagInlineValue Tag = "meta.tag.value"

	TagProject       Tag = "meta.project.todo"
	TagProjectTitle  Tag = "keyword.project.title.todo"
	TagProjectIndent Tag = "keyword.project.indent.todo"

	TagNote      Tag = "notes.todo"
	TagSeparator Tag = "meta.punctuation.separator.todo"
	TagSection   Tag = "meta.section.todo"
	TagArchive   Tag = "meta.archive.todo"
)

// Index answers tag queries over one immutable state of the document.
type Index interface {
	// Query returns every region tagged tag that lies fully inside r.
	Query(tag Tag, r region.Region) []region.Region

	// QueryAll returns every region tagged tag, in document order.
	QueryAll(tag Tag) []region.Region

	// Extract returns the first region tagged tag that contains p.
	Extract(tag Tag, p int) (region.Region, bool)
}

// First returns the first region of tag fully inside r.
func First(idx Index, tag Tag, r region.Region) (region.Region, bool) {
	rs := idx.Query(tag, r)
	if len(rs) == 0 {
		return region.Region{}, false
	}
	return rs[0], true
}

// Intersecting returns every region of tag that intersects r.
func Intersecting(idx Index, tag Tag, r region.Region) []region.Region {
	var out []region.Region
	for _, t := range idx.QueryAll(tag) {
		if t.Begin > r.End {
			break
		}
		if t.Intersects(r) {
			out = append(out, t)
		}
	}
	return out
}

// table is a sorted per-tag region table implementing Index.
type table map[Tag][]region.Region

func (t table) add(tag Tag, r region.Region) {
	t[tag] = append(t[tag], r)
}

func (t table) Query(tag Tag, r region.Region) []region.Region {
	rs := t[tag]
	i := sort.Search(len(rs), func(i int) bool { return rs[i].Begin >= r.Begin })
	var out []region.Region
	for ; i < len(rs) && rs[i].Begin <= r.End; i++ {
		if r.Covers(rs[i]) {
			out = append(out, rs[i])
		}
	}
	return out
}

func (t table) QueryAll(tag Tag) []region.Region {
	rs := t[tag]
	out := make([]region.Region, len(rs))
	copy(out, rs)
	return out
}

func (t table) Extract(tag Tag, p int) (region.Region, bool) {
	for _, r := range t[tag] {
		if r.Begin > p {
			break
		}
		if r.Contains(p) || (r.Empty() && r.Begin == p) {
			return r, true
		}
	}
	return region.Region{}, false
}
