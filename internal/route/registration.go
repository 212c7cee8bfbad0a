package route

import (
	"errors"
	"net/http"

	"storefront/pagegen/internal/domain"

	log "github.com/sirupsen/logrus"
)

const (
	ClientProductPath = "/__client_side_product__/p"
	ClientSearchPath  = "/__client_side_search__"
	NotFoundPath      = "/404/__not_found__"

	ProductMatchPath  = "/:slug/p"
	SearchMatchPath   = "/*"
	NotFoundMatchPath = "/404/*"
)

// FallbackPages returns the client-only pages registered on every pass
func FallbackPages() []domain.PageDescriptor {
	return []domain.PageDescriptor{
		{
			Path:      ClientProductPath,
			MatchPath: ProductMatchPath,
			Template:  domain.TemplateProduct,
			Context:   domain.PageContext{"staticPath": false},
		},
		{
			Path:      ClientSearchPath,
			MatchPath: SearchMatchPath,
			Template:  domain.TemplateSearch,
			Context:   domain.PageContext{"staticPath": false},
		},
		{
			Path:      NotFoundPath,
			MatchPath: NotFoundMatchPath,
			Template:  domain.TemplateNotFound,
			Context:   domain.PageContext{},
		},
	}
}

// NotFoundRedirect sends /404 to the not-found page with a real 404 status.
// Static hosts serve a bare /404 page with 200 otherwise.
func NotFoundRedirect() domain.Redirect {
	return domain.Redirect{
		FromPath:   "/404",
		ToPath:     NotFoundPath,
		StatusCode: http.StatusNotFound,
	}
}

type Options struct {
	// SkipUnroutable logs and skips unroutable paths instead of failing the pass
	SkipUnroutable bool
}

// Register builds the full registration for a list of static paths: one page
// per routable path, the fallback pages and the not-found redirect. Skipped
// paths are returned when opts.SkipUnroutable is set.
func Register(paths []string, opts Options) (*domain.Registration, []string, error) {
	var (
		pages   []domain.PageDescriptor
		skipped []string
		err     error
	)

	if opts.SkipUnroutable {
		pages = make([]domain.PageDescriptor, 0, len(paths))
		for _, path := range paths {
			page, ok, describeErr := Describe(path)
			if describeErr != nil {
				var unroutable *UnroutableRouteError
				if !errors.As(describeErr, &unroutable) {
					return nil, nil, describeErr
				}
				log.Warnf("⚠️ Skipping %v", describeErr)
				skipped = append(skipped, path)
				continue
			}
			if ok {
				pages = append(pages, page)
			}
		}
	} else {
		pages, err = BuildPageDescriptors(paths)
		if err != nil {
			return nil, nil, err
		}
	}

	registration := &domain.Registration{
		Pages:     append(pages, FallbackPages()...),
		Redirects: []domain.Redirect{NotFoundRedirect()},
	}

	return registration, skipped, nil
}
