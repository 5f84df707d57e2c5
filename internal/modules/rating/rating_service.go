package rating

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"rate-shopping/internal/models"
)

// StaticRaterInterface is the pre-existing fallback calculator path used when
// live rating does not apply to a package.
type StaticRaterInterface interface {
	CalculateRates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error)
	ChooseDefault(rates []*models.ShippingRate)
	SortByCost(rates []*models.ShippingRate)
}

// ServiceInterface exposes rate aggregation to handlers.
type ServiceInterface interface {
	GetShippingRates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error)
}

// Options carries the feature flags the orchestrator gates on. They are fixed
// at construction; there is no ambient configuration state.
type Options struct {
	DynamicRating         bool
	FrontendDynamicRating bool
}

// Service decides per request whether live rating applies, fans out to the
// configured rate sources, and merges their quotes.
type Service struct {
	sources []RateSource
	static  StaticRaterInterface
	opts    Options
}

// NewService builds the orchestrator with an ordered list of rate sources.
func NewService(sources []RateSource, static StaticRaterInterface, opts Options) *Service {
	return &Service{sources: sources, static: static, opts: opts}
}

// GetShippingRates returns the quotes for a package. The caller always gets a
// (possibly empty) list; a rate source failing drops only that source's
// contribution. Only catalog-store failures surface as errors.
func (s *Service) GetShippingRates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error) {
	if !s.useDynamicRates(pkg, audience) {
		rates, err := s.static.CalculateRates(ctx, pkg, audience)
		if err != nil {
			return nil, err
		}
		s.static.ChooseDefault(rates)
		s.static.SortByCost(rates)
		return rates, nil
	}

	// Sources are independent and read-only towards each other; the shared
	// registry writes are serialized by the admin_name unique constraint.
	results := make([][]*models.ShippingRate, len(s.sources))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range s.sources {
		g.Go(func() error {
			rates, err := source.Rates(gctx, pkg, audience)
			if err != nil {
				if errors.Is(err, models.ErrSourceUnavailable) ||
					errors.Is(err, context.DeadlineExceeded) {
					log.Printf("rating: %s source unavailable: %v", source.Name(), err)
					failed.Add(1)
					return nil
				}
				return err
			}
			results[i] = rates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quotes := selectRates(lo.Flatten(results), audience)
	if len(quotes) == 0 && int(failed.Load()) == len(s.sources) {
		log.Printf("rating: no rates available, all %d sources failed", len(s.sources))
	}
	return quotes, nil
}

// useDynamicRates is the gate for the live-rating path: the system-wide flag
// and the package's own flag must be on, the package must have weight, and
// front-end audiences additionally need the front-end flag.
func (s *Service) useDynamicRates(pkg *models.Package, audience models.Audience) bool {
	if !s.opts.DynamicRating || !pkg.LiveRatesEnabled {
		return false
	}
	if pkg.WeightKg <= 0 {
		return false
	}
	return audience == models.AudienceBackEnd || s.opts.FrontendDynamicRating
}
