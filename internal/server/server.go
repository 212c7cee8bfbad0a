package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront/pagegen/internal/config"
	"storefront/pagegen/internal/domain"
	"storefront/pagegen/internal/metrics"
	"storefront/pagegen/internal/route"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Server resolves request paths against a registration the way the static
// host would: redirects first, then pre-generated pages, then client-only
// patterns, then the not-found page.
type Server struct {
	storeID   string
	locales   *localeResolver
	static    map[string]domain.PageDescriptor
	redirects map[string]domain.Redirect
	matcher   *route.Matcher
	notFound  domain.PageDescriptor
	metrics   *metrics.Metrics

	metricsHandler http.Handler
}

// Resolution is the page chosen for a request path
type Resolution struct {
	StoreID  string             `json:"storeId"`
	Locale   string             `json:"locale"`
	Path     string             `json:"path"`
	PagePath string             `json:"pagePath"`
	Template domain.Template    `json:"template"`
	Context  domain.PageContext `json:"context"`
	Params   map[string]string  `json:"params,omitempty"`
}

func New(store config.StoreConfig, registration *domain.Registration, m *metrics.Metrics, metricsHandler http.Handler) *Server {
	s := &Server{
		storeID:        store.StoreID,
		locales:        newLocaleResolver(store.Locales, store.DefaultLocale),
		static:         make(map[string]domain.PageDescriptor),
		redirects:      make(map[string]domain.Redirect),
		matcher:        route.NewMatcher(registration.Pages),
		metrics:        m,
		metricsHandler: metricsHandler,
		notFound: domain.PageDescriptor{
			Path:     route.NotFoundPath,
			Template: domain.TemplateNotFound,
			Context:  domain.PageContext{},
		},
	}

	for _, page := range registration.Pages {
		if page.Template == domain.TemplateNotFound {
			s.notFound = page
		}
		if !page.IsClientOnly() {
			s.static[page.Path] = page
		}
	}
	for _, redirect := range registration.Redirects {
		s.redirects[redirect.FromPath] = redirect
	}

	log.Infof("📚 Serving %d static pages, %d redirects for store %s",
		len(s.static), len(s.redirects), s.storeID)
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}
	r.Get("/*", s.handlePage)

	return r
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if redirect, ok := s.redirects[path]; ok && isHTTPRedirect(redirect.StatusCode) {
		http.Redirect(w, r, redirect.ToPath, redirect.StatusCode)
		return
	}

	resolution, status := s.Resolve(path)
	resolution.Locale = s.locales.resolve(r.Header.Get("Accept-Language"))

	s.metrics.PageServed(resolution.Template.String(), status)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Vary", "Accept-Language")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resolution); err != nil {
		log.Errorf("❌ Failed to encode resolution for %s: %v", path, err)
	}
}

// Resolve finds the page for path and the status code to serve it with.
// Redirects with a non-3xx status are rewrites: the target page is served
// under the redirect's status.
func (s *Server) Resolve(path string) (*Resolution, int) {
	status := http.StatusOK
	target := path

	if redirect, ok := s.redirects[path]; ok && !isHTTPRedirect(redirect.StatusCode) {
		target = redirect.ToPath
		status = redirect.StatusCode
	}

	if page, ok := s.static[target]; ok {
		return s.resolution(path, page, nil), status
	}

	if match, ok := s.matcher.Match(target); ok {
		if match.Page.Template == domain.TemplateNotFound && status == http.StatusOK {
			status = http.StatusNotFound
		}
		return s.resolution(path, match.Page, match.Params), status
	}

	return s.resolution(path, s.notFound, nil), http.StatusNotFound
}

func (s *Server) resolution(path string, page domain.PageDescriptor, params map[string]string) *Resolution {
	return &Resolution{
		StoreID:  s.storeID,
		Path:     path,
		PagePath: page.Path,
		Template: page.Template,
		Context:  page.Context,
		Params:   params,
	}
}

func isHTTPRedirect(status int) bool {
	return status >= 300 && status < 400
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🌐 Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("🛑 Shutting down server")
	return srv.Shutdown(shutdownCtx)
}
