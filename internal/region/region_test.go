package region

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegionBasics(t *testing.T) {
	r := New(3, 8)

	if r.Size() != 5 {
		t.Errorf("Size() = %d, want 5", r.Size())
	}
	if !r.Contains(3) || r.Contains(8) {
		t.Error("Contains should be half-open")
	}
	if !r.Covers(New(4, 8)) || r.Covers(New(2, 4)) {
		t.Error("Covers mismatch")
	}
	if !r.Intersects(New(7, 10)) || r.Intersects(New(8, 10)) {
		t.Error("Intersects mismatch")
	}
	if !r.Intersects(Point(8)) {
		t.Error("empty region at the end should intersect")
	}
	if got := Deletion(10, 4).Size(); got != 4 {
		t.Errorf("deletion Size() = %d, want 4", got)
	}
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name  string
		r     Region
		delta Region
		want  Region
	}{
		{"insert before", New(10, 15), Insertion(2, 3), New(13, 18)},
		{"insert after", New(10, 15), Insertion(20, 3), New(10, 15)},
		{"insert at begin", New(10, 15), Insertion(10, 3), New(10, 15)},
		{"line insert at begin", New(10, 15), LineInsertion(10, 3), New(13, 18)},
		{"delete before", New(10, 15), Deletion(2, 4), New(6, 11)},
		{"delete after", New(10, 15), Deletion(15, 4), New(10, 15)},
		{"delete ending at begin", New(10, 15), Deletion(6, 4), New(6, 11)},
		{"empty delta", New(10, 15), Point(3), New(10, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Adjust(tt.r, tt.delta); got != tt.want {
				t.Errorf("Adjust(%v, %v) = %v, want %v", tt.r, tt.delta, got, tt.want)
			}
		})
	}
}

// lineRegions returns the region of every line (newline excluded).
func lineRegions(text string) []Region {
	var out []Region
	pos := 0
	for _, l := range strings.SplitAfter(text, "\n") {
		if l == "" {
			continue
		}
		body := strings.TrimSuffix(l, "\n")
		out = append(out, New(pos, pos+len(body)))
		pos += len(l)
	}
	return out
}

func TestAdjustMatchesRescan(t *testing.T) {
	text := "alpha\nbravo\ncharlie\ndelta\necho\n"
	live := lineRegions(text)
	names := []string{"alpha", "bravo", "charlie", "delta", "echo"}

	type edit struct {
		insert bool
		line   int
		text   string
	}
	edits := []edit{
		{insert: true, line: 1, text: "new one\n"},
		{insert: false, line: 3},
		{insert: true, line: 0, text: "top\n"},
		{insert: false, line: 0},
	}

	for _, e := range edits {
		var delta Region
		if e.insert {
			pos := live[e.line].Begin
			text = text[:pos] + e.text + text[pos:]
			delta = LineInsertion(pos, len(e.text))
		} else {
			r := live[e.line]
			full := New(r.Begin, r.End+1)
			text = text[:full.Begin] + text[full.End:]
			delta = Deletion(full.Begin, full.Size())
			live = append(live[:e.line:e.line], live[e.line+1:]...)
			names = append(names[:e.line:e.line], names[e.line+1:]...)
		}
		live = AdjustAll(live, delta)

		for i, r := range live {
			if got := text[r.Begin:r.End]; got != names[i] {
				t.Fatalf("after %+v: region %v = %q, want %q (text %q)", e, r, got, names[i], text)
			}
		}
	}
}

func TestBatchTracksNetDelta(t *testing.T) {
	b := NewBatch()
	before := b.Track(New(5, 10))
	after := b.Track(New(40, 50))

	// Move text from 30 to 0: erase at 30, insert at 0.
	b.Apply(Deletion(30, 6))
	b.Apply(LineInsertion(0, 6))

	if got := b.Get(before); got != New(11, 16) {
		t.Errorf("before = %v, want [11:16)", got)
	}
	if got := b.Get(after); got != New(40, 50) {
		t.Errorf("after = %v, want [40:50)", got)
	}
	if b.Net() != 0 {
		t.Errorf("Net() = %d, want 0", b.Net())
	}
	if got := b.Translate(New(35, 36)); got != New(35, 36) {
		t.Errorf("Translate = %v, want [35:36)", got)
	}

	b.Release(before)
	b.Apply(Insertion(1, 2))
	if got := b.Get(before); got != New(11, 16) {
		t.Errorf("released region moved to %v", got)
	}

	want := []Region{Deletion(30, 6), LineInsertion(0, 6), Insertion(1, 2)}
	if diff := cmp.Diff(want, b.Deltas()); diff != "" {
		t.Errorf("Deltas() mismatch (-want +got):\n%s", diff)
	}
}

func TestSortDescending(t *testing.T) {
	rs := []Region{New(4, 6), New(0, 2), New(9, 12), New(0, 1)}
	SortDescending(rs)
	want := []Region{New(9, 12), New(4, 6), New(0, 2), New(0, 1)}
	if diff := cmp.Diff(want, rs); diff != "" {
		t.Errorf("SortDescending mismatch (-want +got):\n%s", diff)
	}
}
