package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// StaticPathProvider enumerates the paths to generate pages for at build time
type StaticPathProvider interface {
	GetStaticPaths(ctx context.Context) ([]string, error)
}

// StaticProvider serves a fixed list of paths, usually from configuration
type StaticProvider struct {
	paths []string
}

func NewStaticProvider(paths []string) *StaticProvider {
	return &StaticProvider{paths: paths}
}

func (p *StaticProvider) GetStaticPaths(context.Context) ([]string, error) {
	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out, nil
}

// MultiProvider concatenates providers in order and drops repeated paths,
// keeping the first occurrence
type MultiProvider struct {
	providers []StaticPathProvider
}

func NewMultiProvider(providers ...StaticPathProvider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

func (p *MultiProvider) GetStaticPaths(ctx context.Context) ([]string, error) {
	var all []string
	for _, provider := range p.providers {
		paths, err := provider.GetStaticPaths(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, paths...)
	}

	unique := dedupe(all)
	if dropped := len(all) - len(unique); dropped > 0 {
		log.Debugf("Dropped %d duplicate paths", dropped)
	}
	return unique, nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out
}

// pathOf reduces a sitemap location to the URL path the page is served at
func pathOf(loc string) (string, error) {
	loc = strings.TrimSpace(loc)
	u, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("invalid sitemap location %q: %w", loc, err)
	}
	// Keep percent-encoding: a decoded %2F would add a segment
	path := u.EscapedPath()
	if path == "" {
		return "/", nil
	}
	return path, nil
}
