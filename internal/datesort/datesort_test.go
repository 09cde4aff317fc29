package datesort

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/outline"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"%y-%m-%d %H:%M", true},
		{"%Y.%m.%d %H:%M:%S", true},
		{"%Y/%m/%d%H%M", true},
		{"%d-%m-%y %H:%M", false},
		{"%m/%d/%Y", false},
		{"(%y-%m-%d)", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.format); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestSortNewestFirst(t *testing.T) {
	text := "☐ open\n" +
		"＿＿＿\n" +
		"Archive:\n" +
		"\t✔ january @done(20-01-01 00:00)\n" +
		"\t\tjanuary note\n" +
		"\t✘ march @cancelled(20-03-01 00:00)\n" +
		"\t✔ february @done(20-02-01 00:00)\n" +
		"\t✔ undated @done\n"
	doc := outline.New(buffer.New(text), config.Default().Grammar())

	res, err := Sort(doc, config.Default())
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if res.Entries != 3 {
		t.Errorf("sorted %d entries, want 3", res.Entries)
	}

	want := "☐ open\n" +
		"＿＿＿\n" +
		"Archive:\n" +
		"\t✘ march @cancelled(20-03-01 00:00)\n" +
		"\t✔ february @done(20-02-01 00:00)\n" +
		"\t✔ january @done(20-01-01 00:00)\n" +
		"\t\tjanuary note\n" +
		"\t✔ undated @done\n"
	if got := doc.Buffer().Text(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSortOldestFirst(t *testing.T) {
	text := "Archive:\n\t✔ b @done(20-02-01 00:00)\n\t✔ a @done(20-01-01 00:00)"
	doc := outline.New(buffer.New(text), config.Default().Grammar())

	s := config.Default()
	s.NewOnTop = false
	if _, err := Sort(doc, s); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := "Archive:\n\t✔ a @done(20-01-01 00:00)\n\t✔ b @done(20-02-01 00:00)"
	if got := doc.Buffer().Text(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSortTiesKeepDocumentOrder(t *testing.T) {
	text := "Archive:\n" +
		"\t✔ zeta @done(20-01-01 00:00)\n" +
		"\t✔ later @done(20-02-01 00:00)\n" +
		"\t✔ alpha @done(20-01-01 00:00)"
	for _, newOnTop := range []bool{true, false} {
		doc := outline.New(buffer.New(text), config.Default().Grammar())
		s := config.Default()
		s.NewOnTop = newOnTop
		if _, err := Sort(doc, s); err != nil {
			t.Fatalf("Sort: %v", err)
		}
		got := doc.Buffer().Text()
		if strings.Index(got, "zeta") > strings.Index(got, "alpha") {
			t.Errorf("new_on_top=%v: equal dates reordered:\n%s", newOnTop, got)
		}
	}
}

func TestSortErrors(t *testing.T) {
	doc := outline.New(buffer.New("☐ a\n"), config.Default().Grammar())
	if _, err := Sort(doc, config.Default()); !errors.Is(err, ErrNothingToSort) {
		t.Errorf("expected ErrNothingToSort, got %v", err)
	}

	s := config.Default()
	s.DateFormat = "%d.%m.%Y"
	if _, err := Sort(doc, s); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
