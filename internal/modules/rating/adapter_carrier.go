package rating

import (
	"context"
	"fmt"
	"log"
	"sort"

	"rate-shopping/internal/models"
	"rate-shopping/internal/modules/catalog"
)

// carrierSource quotes a package against the live carrier-rate provider.
type carrierSource struct {
	catalog  CatalogService
	provider CarrierProvider
}

func NewCarrierSource(catalogSvc CatalogService, provider CarrierProvider) RateSource {
	return &carrierSource{catalog: catalogSvc, provider: provider}
}

func (s *carrierSource) Name() string { return "carrier" }

func (s *carrierSource) Rates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error) {
	session, err := pkg.CarrierSession(func() (*models.RateSession, error) {
		return s.provider.CreateSession(ctx, pkg)
	})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	raw := make([]models.CarrierRate, len(session.Rates))
	copy(raw, session.Rates)
	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].Amount.Round(0).IntPart() < raw[j].Amount.Round(0).IntPart()
	})

	rates := make([]*models.ShippingRate, 0, len(raw))
	for _, r := range raw {
		adminName := fmt.Sprintf("%s %s", r.Carrier, r.Service)

		var method *models.ShippingMethod
		if vendor := pkg.Vendor(); vendor != nil {
			// Vendor catalogs are provisioned out of band: lookup only,
			// and an unknown carrier/service pair skips the rate.
			method, err = s.catalog.VendorMethodByAdminName(ctx, vendor.ID, adminName)
			if err != nil {
				return nil, err
			}
			if method == nil {
				continue
			}
		} else {
			method, err = s.catalog.FindOrCreateMethod(ctx, adminName, catalog.MethodDefaults{
				Name:           adminName,
				DisplayOn:      models.DisplayOnBackEnd,
				Code:           r.Service,
				CalculatorType: models.CalculatorCarrierRate,
			})
			if err != nil {
				return nil, err
			}
		}

		cost := r.Amount
		if method.CalculatorType != models.CalculatorCarrierRate {
			calc, cerr := catalog.CalculatorFor(method)
			if cerr != nil {
				log.Printf("rating: carrier: method %q: %v", method.AdminName, cerr)
				continue
			}
			if cost, cerr = calc.Compute(pkg); cerr != nil {
				log.Printf("rating: carrier: compute %q: %v", method.AdminName, cerr)
				continue
			}
		}

		if !method.AvailableTo(audience) {
			continue
		}
		rates = append(rates, &models.ShippingRate{
			Name:               adminName,
			Cost:               cost,
			ShippingMethodID:   method.ID,
			Method:             method,
			ExternalRateID:     r.ID,
			ExternalShipmentID: session.ShipmentID,
		})
	}
	return rates, nil
}
