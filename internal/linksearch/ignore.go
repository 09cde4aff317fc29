package linksearch

import (
	"path"
	"strings"
)

// Ignore matches paths against gitignore-style patterns:
//   - *.log              files ending in .log at any depth
//   - /build/            the build directory at the search root
//   - **/node_modules/** node_modules anywhere
//   - !keep.log          do not ignore keep.log
//
// Later patterns override earlier ones. An Ignore is immutable.
type Ignore struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	original string
	glob     string
	negation bool
	dirOnly  bool
	rooted   bool
}

// NewIgnore compiles patterns. Empty lines and # comments are skipped.
func NewIgnore(patterns ...string) *Ignore {
	ig := &Ignore{}
	for _, raw := range patterns {
		p := strings.TrimRight(raw, " \t")
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		ip := ignorePattern{original: p}
		if strings.HasPrefix(p, "!") {
			ip.negation = true
			p = p[1:]
		}
		if strings.HasSuffix(p, "/") {
			ip.dirOnly = true
			p = strings.TrimSuffix(p, "/")
		}
		if strings.HasPrefix(p, "/") {
			ip.rooted = true
			p = p[1:]
		}
		if p == "" {
			continue
		}
		ip.glob = p
		ig.patterns = append(ig.patterns, ip)
	}
	return ig
}

// Patterns returns the compiled patterns as written.
func (ig *Ignore) Patterns() []string {
	if ig == nil {
		return nil
	}
	out := make([]string, len(ig.patterns))
	for i, p := range ig.patterns {
		out[i] = p.original
	}
	return out
}

// Match reports whether rel, a slash-separated path relative to the search
// root, is ignored.
func (ig *Ignore) Match(rel string, isDir bool) bool {
	if ig == nil {
		return false
	}
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return false
	}
	ignored := false
	for _, p := range ig.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.match(rel) {
			ignored = !p.negation
		}
	}
	return ignored
}

func (p ignorePattern) match(rel string) bool {
	if strings.Contains(p.glob, "**") {
		return matchDoubleStar(p.glob, rel)
	}
	parts := strings.Split(rel, "/")
	if p.rooted {
		if strings.Contains(p.glob, "/") {
			return glob(p.glob, rel)
		}
		return glob(p.glob, parts[0])
	}
	if !strings.Contains(p.glob, "/") {
		return glob(p.glob, parts[len(parts)-1])
	}
	for i := range parts {
		if glob(p.glob, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func glob(pattern, name string) bool {
	ok, _ := path.Match(pattern, name)
	return ok
}

// matchDoubleStar handles patterns where ** stands for any number of
// path components.
func matchDoubleStar(pattern, rel string) bool {
	parts := strings.Split(rel, "/")

	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if middle, ok := strings.CutSuffix(rest, "/**"); ok {
			for _, part := range parts {
				if glob(middle, part) {
					return true
				}
			}
			return false
		}
		if middle, ok := strings.CutSuffix(rest, "/*"); ok {
			for _, part := range parts[:len(parts)-1] {
				if glob(middle, part) {
					return true
				}
			}
			return false
		}
		for i := range parts {
			if glob(rest, strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	prefix, suffix, ok := strings.Cut(pattern, "**")
	if !ok || strings.Contains(suffix, "**") {
		return glob(pattern, rel)
	}
	prefix = strings.TrimSuffix(prefix, "/")
	suffix = strings.TrimPrefix(suffix, "/")
	if prefix != "" && rel != prefix && !strings.HasPrefix(rel, prefix+"/") {
		return false
	}
	if suffix == "" {
		return true
	}
	for i := range parts {
		if glob(suffix, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}
