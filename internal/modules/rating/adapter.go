package rating

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rate-shopping/internal/models"
	"rate-shopping/internal/modules/catalog"
)

// RateSource produces raw rate candidates for a package. An empty result is
// normal ("no rates available"); an error means the source itself failed.
type RateSource interface {
	Name() string
	Rates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error)
}

// CatalogService is the slice of the catalog module the rate sources need.
type CatalogService interface {
	FindOrCreateMethod(ctx context.Context, adminName string, defaults catalog.MethodDefaults) (*models.ShippingMethod, error)
	VendorMethodByAdminName(ctx context.Context, vendorID uuid.UUID, adminName string) (*models.ShippingMethod, error)
	VendorPriceSackMethods(ctx context.Context, vendorID uuid.UUID) ([]*models.ShippingMethod, error)
	FirstTaxRateForCategory(ctx context.Context, taxCategoryID uuid.UUID) (*models.TaxRate, error)
	FindOrCreateTaxRate(ctx context.Context, vendorID *uuid.UUID, amount decimal.Decimal) (*models.TaxRate, error)
	StorefrontCredential(ctx context.Context, vendorID uuid.UUID) (*models.StorefrontCredential, error)
	FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

// timeoutSource bounds how long a source may block. Past the deadline the
// source fails instead of stalling the whole batch.
type timeoutSource struct {
	inner   RateSource
	timeout time.Duration
}

// WithTimeout wraps a source with a per-call deadline.
func WithTimeout(s RateSource, timeout time.Duration) RateSource {
	return &timeoutSource{inner: s, timeout: timeout}
}

func (t *timeoutSource) Name() string { return t.inner.Name() }

func (t *timeoutSource) Rates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Rates(ctx, pkg, audience)
}
