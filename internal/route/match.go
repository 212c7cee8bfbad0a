package route

import (
	"sort"
	"strings"

	"storefront/pagegen/internal/domain"
)

type segmentKind int

// Ordered by precedence
const (
	segmentStatic segmentKind = iota
	segmentParam
	segmentCatchAll
)

type segment struct {
	kind  segmentKind
	value string // literal for static segments, name for params
}

type pattern struct {
	segments []segment
	page     domain.PageDescriptor
}

// Matcher resolves request paths against the matchPath of client-only pages
type Matcher struct {
	patterns []pattern
}

// Match is a resolved client-only page and the params captured from the path
type Match struct {
	Page   domain.PageDescriptor
	Params map[string]string
}

// NewMatcher compiles the client-only pages. Pages without a matchPath are ignored.
func NewMatcher(pages []domain.PageDescriptor) *Matcher {
	m := &Matcher{}
	for _, page := range pages {
		if !page.IsClientOnly() {
			continue
		}
		m.patterns = append(m.patterns, pattern{
			segments: compilePattern(page.MatchPath),
			page:     page,
		})
	}

	sort.SliceStable(m.patterns, func(i, j int) bool {
		return morePrecise(m.patterns[i].segments, m.patterns[j].segments)
	})

	return m
}

// Match returns the most specific page whose pattern matches path
func (m *Matcher) Match(path string) (*Match, bool) {
	parts := splitPath(path)
	for _, p := range m.patterns {
		if params, ok := p.match(parts); ok {
			return &Match{Page: p.page, Params: params}, true
		}
	}
	return nil, false
}

func (p pattern) match(parts []string) (map[string]string, bool) {
	params := map[string]string{}
	for i, seg := range p.segments {
		if seg.kind == segmentCatchAll {
			params["*"] = strings.Join(parts[i:], "/")
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		switch seg.kind {
		case segmentStatic:
			if parts[i] != seg.value {
				return nil, false
			}
		case segmentParam:
			if parts[i] == "" {
				return nil, false
			}
			params[seg.value] = parts[i]
		}
	}

	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

func compilePattern(matchPath string) []segment {
	parts := splitPath(matchPath)
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == "*":
			segments = append(segments, segment{kind: segmentCatchAll})
		case strings.HasPrefix(part, ":"):
			segments = append(segments, segment{kind: segmentParam, value: part[1:]})
		default:
			segments = append(segments, segment{kind: segmentStatic, value: part})
		}
	}
	return segments
}

// morePrecise orders patterns segment by segment by precedence; on a shared
// prefix the longer pattern wins.
func morePrecise(a, b []segment) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].kind != b[i].kind {
			return a[i].kind < b[i].kind
		}
	}
	return len(a) > len(b)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
