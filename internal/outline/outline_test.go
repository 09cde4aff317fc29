package outline

import (
	"testing"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
	"github.com/google/go-cmp/cmp"
)

func newDoc(text string) *Document {
	return New(buffer.New(text), scope.DefaultGrammar())
}

func TestProjectPath(t *testing.T) {
	tests := []struct {
		name string
		text string
		task string
		want []string
	}{
		{
			name: "nested",
			text: "Proj:\n\tSub:\n\t\t☐ item1\n",
			task: "item1",
			want: []string{"Proj", "Sub"},
		},
		{
			name: "blank lines between",
			text: "Proj:\n\n\tSub:\n\n\n\t\t☐ item1\n",
			task: "item1",
			want: []string{"Proj", "Sub"},
		},
		{
			name: "root level",
			text: "Proj:\n\t☐ a\n☐ root\n",
			task: "root",
			want: nil,
		},
		{
			name: "equal depth does not nest",
			text: "A:\nB:\n\t☐ b1\n",
			task: "b1",
			want: []string{"B"},
		},
		{
			name: "sibling project skipped",
			text: "A:\n\tB:\n\t\t☐ b1\n\tC:\n\t☐ a1\n",
			task: "a1",
			want: []string{"A"},
		},
		{
			name: "section boundary truncates",
			text: "A:\n\t☐ a1\n＿＿＿\n\t☐ orphan\n",
			task: "orphan",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(tt.text)
			var found *Task
			for _, task := range d.Tasks() {
				if task.Title() == tt.task {
					found = task
				}
			}
			if found == nil {
				t.Fatalf("task %q not found", tt.task)
			}
			if diff := cmp.Diff(tt.want, found.ProjectNames()); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTaskAccessors(t *testing.T) {
	text := "P:\n\t✔ ship it @done(20-01-01 10:00) @Due\n\t\tnote one\n\t\tnote two\n\n\t☐ next\n"
	d := newDoc(text)

	tasks := d.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	done := tasks[0]
	if done.Status() != scope.StatusCompleted || done.Indent() != "\t" {
		t.Errorf("status %v indent %q", done.Status(), done.Indent())
	}
	if done.Title() != "ship it @done(20-01-01 10:00) @Due" {
		t.Errorf("Title() = %q", done.Title())
	}
	if got := len(done.Notes()); got != 2 {
		t.Errorf("Notes() returned %d lines, want 2", got)
	}
	if got := d.Buffer().Substr(done.Block()); got != "\t✔ ship it @done(20-01-01 10:00) @Due\n\t\tnote one\n\t\tnote two\n" {
		t.Errorf("Block() = %q", got)
	}

	tag, ok := done.Tag("due")
	if !ok || tag.HasValue {
		t.Errorf("Tag(due) = %+v %v", tag, ok)
	}
	tag, ok = done.Tag("done")
	if !ok || tag.Value != "20-01-01 10:00" {
		t.Errorf("Tag(done) = %+v %v", tag, ok)
	}

	if len(tasks[1].Notes()) != 0 {
		t.Error("last task should have no notes")
	}
}

func TestTasksInAndTaskAt(t *testing.T) {
	text := "☐ a\n☐ b\nnote\n☐ c\n"
	d := newDoc(text)

	got := d.TasksIn(region.New(2, 8))
	if len(got) != 2 {
		t.Fatalf("TasksIn returned %d tasks, want 2", len(got))
	}
	if _, ok := d.TaskAt(13); ok {
		t.Error("TaskAt on a note line should fail")
	}
	if task, ok := d.TaskAt(len(text) - 2); !ok || task.Title() != "c" {
		t.Errorf("TaskAt = %v %v", task, ok)
	}
	if cursor := d.TasksIn(region.Point(0)); len(cursor) != 1 {
		t.Errorf("TasksIn of a caret returned %d tasks", len(cursor))
	}

	indented := newDoc("Proj:\n\t☐ a\n")
	for _, p := range []int{6, 7, 10} {
		if task, ok := indented.TaskAt(p); !ok || task.Title() != "a" {
			t.Errorf("TaskAt(%d) on an indented task = %v %v", p, task, ok)
		}
	}
	if l, ok := indented.Index().LineAt(6); !ok || l.Kind != scope.KindTask {
		t.Errorf("LineAt(6) = %v %v, want the task line", l.Kind, ok)
	}
}

func TestSections(t *testing.T) {
	text := "Work:\n\t☐ a\n--- ✄ ---\nHome:\n\t☐ b\n＿＿＿\nArchive:\n"
	d := newDoc(text)

	secs := d.Sections()
	var titles []string
	for _, s := range secs {
		titles = append(titles, s.Title)
	}
	if diff := cmp.Diff([]string{"Work", "Home", "Archive"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if !secs[0].Root() || secs[1].Root() {
		t.Error("only the first section is the root section")
	}

	home, ok := d.FindSection("Home:")
	if !ok || d.SectionAt(home.Region.Begin+12).Title != "Home" {
		t.Errorf("FindSection(Home) = %+v %v", home, ok)
	}
	if d.SectionAt(len(text)).Title != "Archive" {
		t.Error("end of document should belong to the last section")
	}

	m, ok := d.ArchiveMarker()
	if !ok || d.Buffer().Substr(m) != "Archive:" {
		t.Errorf("ArchiveMarker() = %v %v", m, ok)
	}
}

func TestProjectChildrenAndTree(t *testing.T) {
	text := "A:\n\t☐ a1\n\tB:\n\t\t☐ b1\n\t\tnote\n\t☐ a2\nC:\n"
	d := newDoc(text)

	projects := d.Projects()
	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}
	a := projects[0]
	if got := len(a.Children()); got != 3 {
		t.Errorf("A has %d children, want 3", got)
	}
	if projects[1].Parent() == nil || projects[1].Parent().Name() != "A" {
		t.Error("B should nest under A")
	}
	if projects[2].Parent() != nil || len(projects[2].Children()) != 0 {
		t.Error("C is an empty top-level project")
	}

	tree := d.Tree()
	if len(tree) != 1 || len(tree[0].Nodes) != 2 {
		t.Fatalf("unexpected tree %+v", tree)
	}
	b := tree[0].Nodes[0].Children[1]
	if b.Text != "B" || len(b.Children) != 1 || len(b.Children[0].Children) != 1 {
		t.Errorf("unexpected B node %+v", b)
	}
}

func TestIndexFollowsRevision(t *testing.T) {
	d := newDoc("☐ a\n")
	first := d.Index()
	if d.Index() != first {
		t.Error("index should be reused while the buffer is unchanged")
	}
	if _, err := d.Buffer().Insert(d.Buffer().Size(), "☐ b\n"); err != nil {
		t.Fatal(err)
	}
	if len(d.Tasks()) != 2 {
		t.Error("index not refreshed after an edit")
	}
}
