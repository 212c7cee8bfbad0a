package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierWithoutProxies(t *testing.T) {
	s, err := NewSupplier(context.Background(), nil, "http://example.com")
	require.NoError(t, err)

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "", s.Next())
}

func TestSupplierRoundRobin(t *testing.T) {
	s := &roundRobin{proxies: []string{"http://a", "http://b"}}

	assert.Equal(t, "http://a", s.Next())
	assert.Equal(t, "http://b", s.Next())
	assert.Equal(t, "http://a", s.Next())
}

func TestSupplierDropsDeadProxies(t *testing.T) {
	// A plain HTTP server acts as a forward proxy for http:// targets.
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer alive.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dead.Close()

	s, err := NewSupplier(context.Background(), []string{dead.URL, alive.URL}, "http://sitemap.invalid/sitemap.xml")
	require.NoError(t, err)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, alive.URL, s.Next())
}
