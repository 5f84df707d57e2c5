package staticrates

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"rate-shopping/internal/models"
)

// RaterInterface defines the contract for the static (non-live) rate path.
type RaterInterface interface {
	CalculateRates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error)
	ChooseDefault(rates []*models.ShippingRate)
	SortByCost(rates []*models.ShippingRate)
}

// WeightBandRater is a simple built-in rater (replace with the full static
// calculator integration in production).
type WeightBandRater struct {
	// Add catalog/config fields here if needed
}

func NewWeightBandRater() *WeightBandRater {
	return &WeightBandRater{}
}

// CalculateRates produces standard and express quotes from the package
// weight.
func (r *WeightBandRater) CalculateRates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error) {
	weight := decimal.NewFromFloat(pkg.WeightKg)
	standard := decimal.NewFromFloat(4.90).Add(weight.Mul(decimal.NewFromFloat(0.75)))
	express := decimal.NewFromFloat(9.90).Add(weight.Mul(decimal.NewFromFloat(1.50)))

	return []*models.ShippingRate{
		{Name: "Standard", Cost: standard.Round(2)},
		{Name: "Express", Cost: express.Round(2)},
	}, nil
}

// ChooseDefault flags the cheapest rate as the default selection.
func (r *WeightBandRater) ChooseDefault(rates []*models.ShippingRate) {
	if len(rates) == 0 {
		return
	}
	cheapest := rates[0]
	for _, rate := range rates {
		rate.Selected = false
		if rate.Cost.LessThan(cheapest.Cost) {
			cheapest = rate
		}
	}
	cheapest.Selected = true
}

// SortByCost orders rates ascending by cost for display.
func (r *WeightBandRater) SortByCost(rates []*models.ShippingRate) {
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].Cost.LessThan(rates[j].Cost)
	})
}
