package domain

type RouteKind int

const (
	// RouteKindUnknown is returned alongside classification errors
	RouteKindUnknown RouteKind = iota
	RouteKindRoot
	RouteKindProduct
	RouteKindSearch
)

func (k RouteKind) String() string {
	switch k {
	case RouteKindRoot:
		return "root"
	case RouteKindProduct:
		return "product"
	case RouteKindSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Template is the logical template a page is rendered with
type Template string

func (t Template) String() string {
	return string(t)
}

const (
	TemplateProduct  Template = "product"
	TemplateSearch   Template = "search"
	TemplateNotFound Template = "not-found"
)
