// Package linksearch parses file links written in task lines and looks for
// their targets in the background.
package linksearch

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// ErrNoLink is returned when a line holds no file link.
var ErrNoLink = errors.New("line does not contain a valid link to file")

// Kind identifies the link syntax.
type Kind uint8

const (
	// KindPlain is ./path>symbol:line:column"text".
	KindPlain Kind = iota
	// KindMarkdown is [label](path "options").
	KindMarkdown
	// KindWiki is [[path::option]] or [[path][label]] "options".
	KindWiki
)

// String returns the name of the link syntax.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindMarkdown:
		return "markdown"
	case KindWiki:
		return "wiki"
	default:
		return "unknown"
	}
}

// Link is a parsed file link.
type Link struct {
	Kind   Kind
	Path   string
	Symbol string
	Line   int
	Column int
	// Text is searched for once the file is opened.
	Text string
}

const matchTimeout = 100 * time.Millisecond

var (
	plainLink = compile(`(?:^|[ \t])\.[\\/]` +
		`(?<fn>(?:[a-z]:[\\/])?(?:[^\\/:">]+[\\/]?)+)` +
		`(?=[\\/:">])` +
		`(?:>(?<sym>\w+))?(?::(?<line>\d+))?(?::(?<col>\d+))?(?:"(?<text>[^\n]*)")?`)

	markdownLink = compile(`\][ \t]*\(<?(?:file:///?)?` +
		`(?<fn>(?:\\.|[^)\\])+?)` +
		`>?[ \t]*` +
		`(?:"(?:(?::(?<line>\d+))?(?::(?<col>\d+))?|>(?<sym>\w+)|(?<text>[^\n]*))")?` +
		`\)`)

	wikiLink = compile(`\[\[(?:file(?:\+(?:sys|emacs))?:)?(?:\.[\\/])?` +
		`(?<fn>(?:\\.|[^\]\\])+?)` +
		`(?:::(?:(?<line>\d+)(?::(?<col>\d+))?|\*(?<sym>\w+)|(?<text>(?:\\.|[^\]\\])*)))?` +
		`\](?:\[[^\]]*\])?\]` +
		`(?:[ \t]*"(?:(?::(?<linen>\d+))?(?::(?<coln>\d+))?|>(?<symn>\w+)|(?<textn>[^\n]*))")?`)
)

func compile(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.IgnoreCase)
	re.MatchTimeout = matchTimeout
	return re
}

// ParseLink returns the first link of line. Plain links win over markdown
// links, which win over wiki links.
func ParseLink(line string) (Link, error) {
	if m := find(plainLink, line); m != nil {
		return Link{
			Kind:   KindPlain,
			Path:   group(m, "fn"),
			Symbol: group(m, "sym"),
			Line:   number(group(m, "line")),
			Column: number(group(m, "col")),
			Text:   group(m, "text"),
		}, nil
	}
	if m := find(markdownLink, line); m != nil {
		unescape := strings.NewReplacer(`\(`, "(", `\)`, ")")
		return Link{
			Kind:   KindMarkdown,
			Path:   unescape.Replace(strings.TrimSpace(group(m, "fn"))),
			Symbol: group(m, "sym"),
			Line:   number(group(m, "line")),
			Column: number(group(m, "col")),
			Text:   group(m, "text"),
		}, nil
	}
	if m := find(wikiLink, line); m != nil {
		unescape := strings.NewReplacer(`\[`, "[", `\]`, "]")
		return Link{
			Kind:   KindWiki,
			Path:   unescape.Replace(group(m, "fn")),
			Symbol: either(group(m, "sym"), group(m, "symn")),
			Line:   number(either(group(m, "line"), group(m, "linen"))),
			Column: number(either(group(m, "col"), group(m, "coln"))),
			Text:   unescape.Replace(either(group(m, "text"), group(m, "textn"))),
		}, nil
	}
	return Link{}, ErrNoLink
}

// find returns nil when re does not match or times out.
func find(re *regexp2.Regexp, s string) *regexp2.Match {
	m, err := re.FindStringMatch(s)
	if err != nil {
		return nil
	}
	return m
}

func group(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

func either(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func number(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
