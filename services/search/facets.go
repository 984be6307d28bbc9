package search

import (
	"context"
	"sort"

	"github.com/meghashyamc/vidcat/db/searchdb"
	"golang.org/x/sync/errgroup"
)

// Facets are the filter values available for a text query.
type Facets struct {
	Categories []string
	Platforms  []string
	Qualities  []string
}

// aggregateFacets only looks at the text of the query, so the facets a client
// is offered do not shrink as it applies structural filters.
func (s *Service) aggregateFacets(ctx context.Context, normalized string) (*Facets, error) {
	filter := facetTextPredicate(normalized)
	facets := &Facets{}

	g, gctx := errgroup.WithContext(ctx)
	distinct := func(field searchdb.Field, dst *[]string) {
		g.Go(func() error {
			values, err := s.db.Distinct(gctx, field, filter)
			if err != nil {
				return err
			}
			*dst = cleanFacetValues(values)
			return nil
		})
	}
	distinct(searchdb.FieldCategoryName, &facets.Categories)
	distinct(searchdb.FieldPlatformName, &facets.Platforms)
	distinct(searchdb.FieldPlatformQuality, &facets.Qualities)

	if err := g.Wait(); err != nil {
		s.logger.Error("could not aggregate facets", "query", normalized, "err", err.Error())
		return nil, err
	}
	return facets, nil
}

func cleanFacetValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		cleaned = append(cleaned, value)
	}
	sort.Strings(cleaned)
	return cleaned
}
