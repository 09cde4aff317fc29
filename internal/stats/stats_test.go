package stats

import (
	"testing"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/outline"
)

const sample = "Work:\n" +
	"\t☐ a @bug\n" +
	"\t✔ b @done(20-01-02 10:00)\n" +
	"\t✘ c @cancelled(20-01-01 09:00)\n" +
	"\t✔ d @done(bogus) @bug\n" +
	"＿＿＿\n" +
	"Archive:\n" +
	"\t✔ e @done(19-05-05 05:05)\n"

func newDoc(text string) *outline.Document {
	return outline.New(buffer.New(text), config.Default().Grammar())
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name          string
		ignoreArchive bool
		want          Counts
	}{
		{"whole document", false, Counts{Pending: 1, Completed: 3, Cancelled: 1}},
		{"without archive", true, Counts{Pending: 1, Completed: 2, Cancelled: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.Default()
			s.StatsIgnoreArchive = tt.ignoreArchive
			got := Compute(newDoc(sample), s)
			if got.Counts != tt.want {
				t.Errorf("counts = %+v, want %+v", got.Counts, tt.want)
			}
			if got.Last != "(20-01-02 10:00)" {
				t.Errorf("last = %q", got.Last)
			}
		})
	}
}

func TestComputeEmpty(t *testing.T) {
	got := Compute(newDoc("Notes:\n\tjust text\n"), config.Default())
	if got.All() != 0 || got.Percent() != 0 || got.Last != "(UNKNOWN)" {
		t.Errorf("unexpected stats %+v", got)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, ""},
		{4, ""},
		{25, "■■□□□□□□□□"},
		{80, "■■■■■■■■□□"},
		{95, "■■■■■■■■■□"},
		{100, "■■■■■■■■■■"},
	}
	for _, tt := range tests {
		if got := Progress(tt.percent, "■", "□"); got != tt.want {
			t.Errorf("Progress(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{
			name:   "default",
			format: config.Default().StatsFormat,
			want:   "4/5 done (80%) ■■■■■■■■□□ Last task @done (20-01-02 10:00)",
		},
		{
			name:   "counts",
			format: "$o pending, $d done, $c cancelled",
			want:   "1 pending, 3 done, 1 cancelled",
		},
		{
			name:   "special interest",
			format: "bugs {{@bug}} of $a",
			want:   "bugs 1/1/0 of 5",
		},
		{
			name:   "invalid pattern is kept",
			format: "{{(}}",
			want:   "{{(}}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.Default()
			s.StatsFormat = tt.format
			if got := Format(newDoc(sample), s); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
