package rating

import (
	"context"
	"errors"

	"rate-shopping/internal/models"
	"rate-shopping/internal/modules/catalog"
)

// storefrontSource quotes a package through the vendor's external storefront
// checkout API. The session is closed on every exit path.
type storefrontSource struct {
	catalog CatalogService
	client  StorefrontClient
}

func NewStorefrontSource(catalogSvc CatalogService, client StorefrontClient) RateSource {
	return &storefrontSource{catalog: catalogSvc, client: client}
}

func (s *storefrontSource) Name() string { return "storefront" }

func (s *storefrontSource) Rates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error) {
	vendor := pkg.Vendor()
	if vendor == nil {
		return nil, nil
	}

	cred, err := s.catalog.StorefrontCredential(ctx, vendor.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Vendor is not connected to a storefront; nothing to quote.
			return nil, nil
		}
		return nil, err
	}

	session, err := s.client.OpenSession(cred.Domain, cred.AccessToken)
	if err != nil {
		if errors.Is(err, models.ErrNoStorefrontCredential) {
			return nil, nil
		}
		return nil, err
	}
	defer session.Close()

	checkout, err := session.CreateCheckout(ctx, pkg)
	if err != nil {
		return nil, err
	}

	rates := make([]*models.ShippingRate, 0, len(checkout.ShippingRateOptions))
	if len(checkout.ShippingRateOptions) == 0 {
		return rates, nil
	}

	// One tax rate per checkout; every option shares the checkout's tax total.
	taxRate, err := s.catalog.FindOrCreateTaxRate(ctx, &vendor.ID, checkout.TotalTax)
	if err != nil {
		return nil, err
	}

	for _, option := range checkout.ShippingRateOptions {
		method, merr := s.catalog.FindOrCreateMethod(ctx, option.Title, catalog.MethodDefaults{
			Name:           option.Title,
			DisplayOn:      models.DisplayOnBoth,
			CalculatorType: models.CalculatorFlatRate,
			CalculatorParams: map[string]string{
				"amount":   option.Amount.String(),
				"currency": pkg.Currency,
			},
			VendorID: &vendor.ID,
		})
		if merr != nil {
			return nil, merr
		}

		rates = append(rates, &models.ShippingRate{
			Name:             option.Title,
			Cost:             option.Amount,
			ShippingMethodID: method.ID,
			Method:           method,
			TaxRateID:        &taxRate.ID,
		})
	}
	return rates, nil
}
