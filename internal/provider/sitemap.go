package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/pagegen/internal/config"
	"storefront/pagegen/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

// SitemapProvider reads static paths from a sitemap. A sitemap index is
// followed one level deep.
type SitemapProvider struct {
	rl            ratelimit.Limiter
	sitemapURL    string
	maxWorkers    int
	httpClient    *resty.Client
	proxySupplier proxy.Supplier
}

func NewSitemapProvider(cfg config.PathsConfig, proxySupplier proxy.Supplier) *SitemapProvider {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Next(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using proxy: %s", proxyURL)
		}
	}

	return &SitemapProvider{
		rl:            ratelimit.New(max(1, cfg.MaxRequestsPerSecond)),
		sitemapURL:    cfg.SitemapURL,
		maxWorkers:    max(1, cfg.MaxWorkers),
		httpClient:    client,
		proxySupplier: proxySupplier,
	}
}

func (p *SitemapProvider) GetStaticPaths(ctx context.Context) ([]string, error) {
	root, err := p.fetchSitemap(ctx, p.sitemapURL)
	if err != nil {
		return nil, err
	}

	locations := root.Pages
	if root.isIndex() {
		log.Infof("🗺️ Sitemap index with %d child sitemaps", len(root.Children))

		children := make([][]string, len(root.Children))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.maxWorkers)

		for i, childURL := range root.Children {
			g.Go(func() error {
				child, err := p.fetchSitemap(gctx, childURL)
				if err != nil {
					return err
				}
				if child.isIndex() {
					log.Warnf("⚠️ Ignoring nested sitemap index %s", childURL)
				}
				children[i] = child.Pages
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, pages := range children {
			locations = append(locations, pages...)
		}
	}

	paths := make([]string, 0, len(locations))
	for _, loc := range locations {
		path, err := pathOf(loc)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	paths = dedupe(paths)
	log.Infof("✅ Sitemap %s yielded %d paths", p.sitemapURL, len(paths))
	return paths, nil
}

func (p *SitemapProvider) fetchSitemap(ctx context.Context, url string) (*sitemap, error) {
	body, err := p.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", url, err)
	}

	parsed, err := parseSitemap(body)
	if err != nil {
		return nil, fmt.Errorf("sitemap %s: %w", url, err)
	}

	log.Debugf("Parsed sitemap %s: %d pages, %d children", url, len(parsed.Pages), len(parsed.Children))
	return parsed, nil
}

func (p *SitemapProvider) fetch(ctx context.Context, url string) (string, error) {
	p.rl.Take()

	resp, err := p.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", err
	}

	if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() == http.StatusForbidden {
		if retried, ok := p.retryWithNextProxy(ctx, url); ok {
			return retried, nil
		}
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %s", resp.Status())
	}

	return resp.String(), nil
}

// retryWithNextProxy switches the client to another proxy after the origin
// refused the current one and repeats the request once
func (p *SitemapProvider) retryWithNextProxy(ctx context.Context, url string) (string, bool) {
	if p.proxySupplier == nil || p.proxySupplier.Len() < 2 {
		return "", false
	}

	next := p.proxySupplier.Next()
	log.Infof("🔄 Switching to proxy %s for %s", next, url)
	p.httpClient.SetProxy(next)

	resp, err := p.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil || resp.IsError() {
		return "", false
	}
	return resp.String(), true
}
