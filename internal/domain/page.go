package domain

// PageContext is the data injected into a template at build or request time.
// Values are scalars or arrays of scalars / facets.
type PageContext map[string]any

type Facet struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type PageDescriptor struct {
	Path      string      `json:"path"`
	MatchPath string      `json:"matchPath,omitempty"` // Set for client-only pages
	Template  Template    `json:"template"`
	Context   PageContext `json:"context"`
}

// IsClientOnly reports whether the page is resolved by pattern at request time
func (p PageDescriptor) IsClientOnly() bool {
	return p.MatchPath != ""
}

type Redirect struct {
	FromPath   string `json:"fromPath"`
	ToPath     string `json:"toPath"`
	StatusCode int    `json:"statusCode"`
}

// Registration is everything one registration pass hands to the renderer
type Registration struct {
	Pages     []PageDescriptor `json:"pages"`
	Redirects []Redirect       `json:"redirects"`
}

// StaticPages returns the pages generated ahead of time
func (r *Registration) StaticPages() []PageDescriptor {
	pages := make([]PageDescriptor, 0, len(r.Pages))
	for _, page := range r.Pages {
		if !page.IsClientOnly() {
			pages = append(pages, page)
		}
	}
	return pages
}

// ClientOnlyPages returns the pages matched by pattern at request time
func (r *Registration) ClientOnlyPages() []PageDescriptor {
	pages := make([]PageDescriptor, 0, 3)
	for _, page := range r.Pages {
		if page.IsClientOnly() {
			pages = append(pages, page)
		}
	}
	return pages
}
