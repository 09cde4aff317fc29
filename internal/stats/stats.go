// Package stats computes the status line summary of a task document.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/ncruces/go-strftime"

	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/scope"
)

// Counts holds task totals by status.
type Counts struct {
	Pending   int
	Completed int
	Cancelled int
}

// Finished returns completed plus cancelled tasks.
func (c Counts) Finished() int { return c.Completed + c.Cancelled }

// All returns the number of tasks.
func (c Counts) All() int { return c.Pending + c.Finished() }

// Percent returns the finished share of all tasks, 0 when there are none.
func (c Counts) Percent() float64 {
	if c.All() == 0 {
		return 0
	}
	return float64(c.Finished()) / float64(c.All()) * 100
}

func (c *Counts) add(s scope.Status) {
	switch s {
	case scope.StatusPending:
		c.Pending++
	case scope.StatusCompleted:
		c.Completed++
	case scope.StatusCancelled:
		c.Cancelled++
	}
}

// Stats is the summary of a document.
type Stats struct {
	Counts
	// Last is the latest parseable @done value with its parentheses, or
	// "(UNKNOWN)".
	Last string
}

// Compute counts the tasks of doc. With s.StatsIgnoreArchive the archive
// section is left out of the counts.
func Compute(doc *outline.Document, s config.Settings) Stats {
	limit := doc.Buffer().Size()
	if s.StatsIgnoreArchive {
		limit = doc.ArchiveStart()
	}

	var st Stats
	var dates []string
	for _, t := range doc.Tasks() {
		if t.Line().Begin < limit {
			st.add(t.Status())
		}
		if tag, ok := t.Tag(s.DoneTag); ok && tag.HasValue {
			if _, err := strftime.Parse(s.DateFormat, strings.TrimSpace(tag.Value)); err == nil {
				dates = append(dates, "("+tag.Value+")")
			}
		}
	}

	st.Last = "(UNKNOWN)"
	if len(dates) > 0 {
		sort.Sort(sort.Reverse(sort.StringSlice(dates)))
		st.Last = dates[0]
	}
	return st
}

// Progress draws a ten cell bar of percent, or "" below five percent.
func Progress(percent float64, full, empty string) string {
	factor := int(math.RoundToEven(percent / 10))
	if percent >= 90 {
		factor = int(percent / 10)
	}
	if factor == 0 {
		return ""
	}
	return strings.Repeat(full, factor) + strings.Repeat(empty, 10-factor)
}

var interest = regexp2.MustCompile(`\{\{.*?\}\}`, regexp2.None)

// Format renders s.StatsFormat for doc.
//
// A {{pattern}} group is replaced by pending/completed/cancelled counts of
// the tasks whose line matches pattern. The placeholders $o $d $c $n $a
// $percent $progress and $last are then substituted.
func Format(doc *outline.Document, s config.Settings) string {
	msg := s.StatsFormat
	for _, group := range matches(interest, msg) {
		msg = strings.Replace(msg, group, interestCounts(doc, strings.Trim(group, "{}")), 1)
	}

	st := Compute(doc, s)
	r := strings.NewReplacer(
		"$percent", strconv.Itoa(int(st.Percent())),
		"$progress", Progress(st.Percent(), s.BarFull, s.BarEmpty),
		"$last", st.Last,
		"$o", strconv.Itoa(st.Pending),
		"$d", strconv.Itoa(st.Completed),
		"$c", strconv.Itoa(st.Cancelled),
		"$n", strconv.Itoa(st.Finished()),
		"$a", strconv.Itoa(st.All()),
	)
	return r.Replace(msg)
}

func interestCounts(doc *outline.Document, pattern string) string {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return "{{" + pattern + "}}"
	}
	var c Counts
	buf := doc.Buffer()
	for _, t := range doc.Tasks() {
		if ok, err := re.MatchString(buf.Substr(t.Line())); err == nil && ok {
			c.add(t.Status())
		}
	}
	return strconv.Itoa(c.Pending) + "/" + strconv.Itoa(c.Completed) + "/" + strconv.Itoa(c.Cancelled)
}

func matches(re *regexp2.Regexp, s string) []string {
	var out []string
	m, _ := re.FindStringMatch(s)
	for m != nil {
		out = append(out, m.String())
		m, _ = re.FindNextMatch(m)
	}
	return out
}
