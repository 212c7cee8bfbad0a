package provider

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type sitemap struct {
	// Locations of pages in a urlset
	Pages []string
	// Locations of child sitemaps in a sitemapindex
	Children []string
}

func (s *sitemap) isIndex() bool {
	return len(s.Children) > 0
}

// parseSitemap reads either a <urlset> or a <sitemapindex> document.
// goquery lower-cases element names, which matches the sitemap schema.
func parseSitemap(body string) (*sitemap, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	result := &sitemap{}

	doc.Find("sitemapindex sitemap loc").Each(func(_ int, s *goquery.Selection) {
		if loc := strings.TrimSpace(s.Text()); loc != "" {
			result.Children = append(result.Children, loc)
		}
	})

	doc.Find("urlset url loc").Each(func(_ int, s *goquery.Selection) {
		if loc := strings.TrimSpace(s.Text()); loc != "" {
			result.Pages = append(result.Pages, loc)
		}
	})

	if doc.Find("urlset, sitemapindex").Length() == 0 {
		return nil, fmt.Errorf("document is neither a urlset nor a sitemapindex")
	}

	return result, nil
}
