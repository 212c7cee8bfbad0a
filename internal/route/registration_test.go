package route

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pagegen/internal/domain"
)

func TestRegisterEmptyInput(t *testing.T) {
	registration, skipped, err := Register(nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, skipped)

	assert.Equal(t, FallbackPages(), registration.Pages)
	assert.Empty(t, registration.StaticPages())
	require.Len(t, registration.Redirects, 1)
	assert.Equal(t, domain.Redirect{
		FromPath:   "/404",
		ToPath:     "/404/__not_found__",
		StatusCode: http.StatusNotFound,
	}, registration.Redirects[0])
}

func TestRegisterAppendsFallbacks(t *testing.T) {
	registration, _, err := Register([]string{"/", "/shoes/p", "/shoes"}, Options{})
	require.NoError(t, err)

	require.Len(t, registration.Pages, 5)
	assert.Len(t, registration.StaticPages(), 2)

	clientOnly := registration.ClientOnlyPages()
	require.Len(t, clientOnly, 3)
	assert.Equal(t, "/:slug/p", clientOnly[0].MatchPath)
	assert.Equal(t, domain.PageContext{"staticPath": false}, clientOnly[0].Context)
	assert.Equal(t, "/*", clientOnly[1].MatchPath)
	assert.Equal(t, domain.TemplateNotFound, clientOnly[2].Template)
	assert.Empty(t, clientOnly[2].Context)
}

func TestRegisterFailsOnUnroutable(t *testing.T) {
	registration, _, err := Register([]string{"/shoes", "nope"}, Options{})
	require.Error(t, err)
	assert.Nil(t, registration)
}

func TestRegisterSkipsUnroutable(t *testing.T) {
	registration, skipped, err := Register([]string{"/shoes", "nope", "", "/hats/p"}, Options{SkipUnroutable: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"nope", ""}, skipped)
	static := registration.StaticPages()
	require.Len(t, static, 2)
	assert.Equal(t, "/shoes", static[0].Path)
	assert.Equal(t, "/hats/p", static[1].Path)
}
