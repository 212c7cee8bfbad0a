package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pagegen/internal/domain"
)

func TestMatcherFallbacks(t *testing.T) {
	m := NewMatcher(FallbackPages())

	tests := []struct {
		path     string
		template domain.Template
		params   map[string]string
	}{
		{"/wireless-mouse/p", domain.TemplateProduct, map[string]string{"slug": "wireless-mouse"}},
		{"/electronics/computers", domain.TemplateSearch, map[string]string{"*": "electronics/computers"}},
		{"/", domain.TemplateSearch, map[string]string{"*": ""}},
		{"/a/b/p", domain.TemplateSearch, map[string]string{"*": "a/b/p"}},
		{"/404/anything", domain.TemplateNotFound, map[string]string{"*": "anything"}},
		{"/404/__not_found__", domain.TemplateNotFound, map[string]string{"*": "__not_found__"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			match, ok := m.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.template, match.Page.Template)
			assert.Equal(t, tt.params, match.Params)
		})
	}
}

func TestMatcherIgnoresStaticPages(t *testing.T) {
	m := NewMatcher([]domain.PageDescriptor{
		{Path: "/shoes", Template: domain.TemplateSearch},
	})

	_, ok := m.Match("/shoes")
	assert.False(t, ok)
}

func TestMatcherPrecedence(t *testing.T) {
	m := NewMatcher([]domain.PageDescriptor{
		{Path: "/a", MatchPath: "/*", Template: domain.TemplateSearch},
		{Path: "/b", MatchPath: "/:slug/p", Template: domain.TemplateProduct},
		{Path: "/c", MatchPath: "/sale/p", Template: domain.TemplateNotFound},
	})

	match, ok := m.Match("/sale/p")
	require.True(t, ok)
	assert.Equal(t, "/c", match.Page.Path)

	match, ok = m.Match("/boots/p")
	require.True(t, ok)
	assert.Equal(t, "/b", match.Page.Path)

	match, ok = m.Match("/boots/q")
	require.True(t, ok)
	assert.Equal(t, "/a", match.Page.Path)
}
