package rating

import (
	"github.com/samber/lo"

	"rate-shopping/internal/models"
)

// selectRates merges adapter outputs into the final quote list: re-assert the
// visibility policy (sources already filter, this is the invariant boundary)
// and flag the cheapest quote as the default selection. Ties go to the first
// quote encountered.
func selectRates(rates []*models.ShippingRate, audience models.Audience) []*models.ShippingRate {
	visible := lo.Filter(rates, func(r *models.ShippingRate, _ int) bool {
		return r.Method != nil && r.Method.AvailableTo(audience)
	})
	if len(visible) == 0 {
		return []*models.ShippingRate{}
	}

	cheapest := lo.MinBy(visible, func(a, b *models.ShippingRate) bool {
		return a.Cost.LessThan(b.Cost)
	})
	cheapest.Selected = true
	return visible
}
