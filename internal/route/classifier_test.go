package route

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pagegen/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		path string
		want domain.RouteKind
	}{
		{"root", "/", domain.RouteKindRoot},
		{"product", "/wireless-mouse/p", domain.RouteKindProduct},
		{"category", "/electronics/computers", domain.RouteKindSearch},
		{"single segment", "/x", domain.RouteKindSearch},
		{"bare p segment", "/p", domain.RouteKindSearch},
		{"deep path ending in p", "/a/b/c/p", domain.RouteKindSearch},
		{"trailing slash", "/electronics/", domain.RouteKindSearch},
		{"empty slug product", "//p", domain.RouteKindProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyUnroutable(t *testing.T) {
	for _, path := range []string{"", "electronics", "p"} {
		kind, err := Classify(path)
		require.Error(t, err, path)
		assert.Equal(t, domain.RouteKindUnknown, kind)
		assert.NotEqual(t, domain.RouteKindRoot, kind)

		var unroutable *UnroutableRouteError
		require.True(t, errors.As(err, &unroutable))
		assert.Equal(t, path, unroutable.Path)
	}
}

func TestDescribeProduct(t *testing.T) {
	page, ok, err := Describe("/wireless-mouse/p")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "/wireless-mouse/p", page.Path)
	assert.Equal(t, domain.TemplateProduct, page.Template)
	assert.Equal(t, domain.PageContext{"slug": "wireless-mouse", "staticPath": true}, page.Context)
	assert.False(t, page.IsClientOnly())
}

func TestDescribeSearch(t *testing.T) {
	page, ok, err := Describe("/electronics/computers")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, domain.TemplateSearch, page.Template)
	assert.Equal(t, domain.PageContext{
		"orderBy": "",
		"query":   "electronics/computers",
		"map":     "c,c",
		"selectedFacets": []domain.Facet{
			{Key: "c", Value: "electronics"},
			{Key: "c", Value: "computers"},
		},
		"staticPath": true,
	}, page.Context)
}

func TestDescribeSearchDropsEmptySegments(t *testing.T) {
	page, ok, err := Describe("/a//b/")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "a/b", page.Context["query"])
	assert.Equal(t, "c,c", page.Context["map"])
}

func TestDescribeRoot(t *testing.T) {
	_, ok, err := Describe("/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildPageDescriptors(t *testing.T) {
	paths := []string{"/", "/wireless-mouse/p", "/electronics"}

	pages, err := BuildPageDescriptors(paths)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "/wireless-mouse/p", pages[0].Path)
	assert.Equal(t, "/electronics", pages[1].Path)

	again, err := BuildPageDescriptors(paths)
	require.NoError(t, err)
	assert.Equal(t, pages, again)
}

func TestBuildPageDescriptorsAbortsOnUnroutable(t *testing.T) {
	pages, err := BuildPageDescriptors([]string{"/electronics", "broken", "/other"})
	require.Error(t, err)
	assert.Nil(t, pages)

	var unroutable *UnroutableRouteError
	require.ErrorAs(t, err, &unroutable)
	assert.Equal(t, "broken", unroutable.Path)
}
