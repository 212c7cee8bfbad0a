package route

import (
	"fmt"
	"strings"

	"storefront/pagegen/internal/domain"
)

// UnroutableRouteError is returned for paths that match none of the route shapes
type UnroutableRouteError struct {
	Path string
}

func (e *UnroutableRouteError) Error() string {
	return fmt.Sprintf("unroutable route: %q", e.Path)
}

// Classify determines the route kind of a static path.
//
// The split keeps the empty leading segment, so "/x" has two parts and is a
// search page, and "/a/b/c/p" has five and is a search page too.
func Classify(path string) (domain.RouteKind, error) {
	if path == "/" {
		return domain.RouteKindRoot, nil
	}

	parts := strings.Split(path, "/")

	if len(parts) == 3 && strings.HasSuffix(path, "/p") {
		return domain.RouteKindProduct, nil
	}

	if len(parts) >= 2 {
		return domain.RouteKindSearch, nil
	}

	return domain.RouteKindUnknown, &UnroutableRouteError{Path: path}
}

// Describe classifies a path and builds its page descriptor. The second
// return value is false for the root path, which gets no page.
func Describe(path string) (domain.PageDescriptor, bool, error) {
	kind, err := Classify(path)
	if err != nil {
		return domain.PageDescriptor{}, false, err
	}

	parts := strings.Split(path, "/")

	switch kind {
	case domain.RouteKindProduct:
		return domain.PageDescriptor{
			Path:     path,
			Template: domain.TemplateProduct,
			Context: domain.PageContext{
				"slug":       parts[1],
				"staticPath": true,
			},
		}, true, nil

	case domain.RouteKindSearch:
		return domain.PageDescriptor{
			Path:     path,
			Template: domain.TemplateSearch,
			Context:  searchContext(parts),
		}, true, nil

	default:
		return domain.PageDescriptor{}, false, nil
	}
}

// BuildPageDescriptors describes every path in order. The first unroutable
// path aborts the pass and no descriptors are returned.
func BuildPageDescriptors(paths []string) ([]domain.PageDescriptor, error) {
	pages := make([]domain.PageDescriptor, 0, len(paths))

	for _, path := range paths {
		page, ok, err := Describe(path)
		if err != nil {
			return nil, err
		}
		if ok {
			pages = append(pages, page)
		}
	}

	return pages, nil
}

func searchContext(parts []string) domain.PageContext {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}

	mapping := make([]string, len(segments))
	facets := make([]domain.Facet, len(segments))
	for i, segment := range segments {
		mapping[i] = "c"
		facets[i] = domain.Facet{Key: "c", Value: segment}
	}

	return domain.PageContext{
		"orderBy":        "",
		"query":          strings.Join(segments, "/"),
		"map":            strings.Join(mapping, ","),
		"selectedFacets": facets,
		"staticPath":     true,
	}
}
