package rating

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"rate-shopping/internal/models"
	"rate-shopping/internal/modules/catalog"
)

// priceSackSource evaluates a vendor's flat "price sack" rules locally.
// While live rating is active only free sack rates surface; paid flat rates
// are already covered by the static fallback path.
type priceSackSource struct {
	catalog CatalogService
}

func NewPriceSackSource(catalogSvc CatalogService) RateSource {
	return &priceSackSource{catalog: catalogSvc}
}

func (s *priceSackSource) Name() string { return "price_sack" }

func (s *priceSackSource) Rates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error) {
	vendor := pkg.Vendor()
	if vendor == nil {
		return nil, nil
	}

	methods, err := s.catalog.VendorPriceSackMethods(ctx, vendor.ID)
	if err != nil {
		return nil, err
	}

	var rates []*models.ShippingRate
	for _, method := range methods {
		if !method.AvailableTo(audience) || !method.AvailableToCountry(pkg.Destination.Country) {
			continue
		}
		calc, cerr := catalog.CalculatorFor(method)
		if cerr != nil {
			log.Printf("rating: price sack: method %q: %v", method.AdminName, cerr)
			continue
		}
		if currency := calc.Preferences()["currency"]; currency != "" && !strings.EqualFold(currency, pkg.Currency) {
			continue
		}
		if !calc.AppliesTo(pkg) {
			continue
		}
		cost, cerr := calc.Compute(pkg)
		if cerr != nil || cost.IsPositive() {
			continue
		}

		gross := cost
		var taxRateID *uuid.UUID
		if method.TaxCategoryID != nil {
			taxRate, terr := s.catalog.FirstTaxRateForCategory(ctx, *method.TaxCategoryID)
			if terr != nil {
				return nil, terr
			}
			if taxRate != nil {
				taxRateID = &taxRate.ID
				if !taxRate.IncludedInPrice {
					gross = cost.Add(cost.Mul(taxRate.Amount))
				}
			}
		}

		rates = append(rates, &models.ShippingRate{
			Name:             method.Name,
			Cost:             gross,
			ShippingMethodID: method.ID,
			Method:           method,
			TaxRateID:        taxRateID,
		})
	}
	return rates, nil
}
