package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rate-shopping/internal/models"
)

// MethodDefaults are the creation-time values used when a find-or-create
// lookup misses. They are ignored when the entry already exists.
type MethodDefaults struct {
	Name             string
	DisplayOn        string
	Code             string
	CalculatorType   string
	CalculatorParams map[string]string
	VendorID         *uuid.UUID
	TaxCategoryID    *uuid.UUID
	CategoryIDs      []uuid.UUID
}

// ServiceInterface is the catalog registry consumed by the rating module.
type ServiceInterface interface {
	FindOrCreateMethod(ctx context.Context, adminName string, defaults MethodDefaults) (*models.ShippingMethod, error)
	VendorMethodByAdminName(ctx context.Context, vendorID uuid.UUID, adminName string) (*models.ShippingMethod, error)
	VendorPriceSackMethods(ctx context.Context, vendorID uuid.UUID) ([]*models.ShippingMethod, error)
	FirstTaxRateForCategory(ctx context.Context, taxCategoryID uuid.UUID) (*models.TaxRate, error)
	FindOrCreateTaxRate(ctx context.Context, vendorID *uuid.UUID, amount decimal.Decimal) (*models.TaxRate, error)
	StorefrontCredential(ctx context.Context, vendorID uuid.UUID) (*models.StorefrontCredential, error)
	FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

// Service implements the catalog registry on top of the repository.
type Service struct {
	repo RepositoryInterface
	// Calculator type stamped on tax rates created from storefront totals.
	taxCalculator string
}

func NewService(repo RepositoryInterface, taxCalculator string) *Service {
	return &Service{repo: repo, taxCalculator: taxCalculator}
}

// FindOrCreateMethod returns the shipping method with the given admin name,
// creating it from defaults when absent. The admin_name unique constraint
// makes the operation atomic: losing a create race is recovered by
// re-reading the winner, so concurrent callers always converge on one entry.
func (s *Service) FindOrCreateMethod(ctx context.Context, adminName string, defaults MethodDefaults) (*models.ShippingMethod, error) {
	m, err := s.repo.FindMethodByAdminName(ctx, adminName)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	method := &models.ShippingMethod{
		Name:             defaults.Name,
		AdminName:        adminName,
		DisplayOn:        defaults.DisplayOn,
		Code:             defaults.Code,
		CalculatorType:   defaults.CalculatorType,
		CalculatorParams: defaults.CalculatorParams,
		VendorID:         defaults.VendorID,
		TaxCategoryID:    defaults.TaxCategoryID,
		CategoryIDs:      defaults.CategoryIDs,
	}
	if method.Name == "" {
		method.Name = adminName
	}
	if method.DisplayOn == "" {
		method.DisplayOn = models.DisplayOnFrontEnd
	}
	if len(method.CategoryIDs) == 0 {
		category, cerr := s.repo.DefaultShippingCategory(ctx)
		if cerr != nil && !errors.Is(cerr, models.ErrNotFound) {
			return nil, cerr
		}
		if category != nil {
			method.CategoryIDs = []uuid.UUID{category.ID}
		}
	}

	if err := s.repo.InsertMethod(ctx, method); err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Another request created it first; their row wins.
			return s.repo.FindMethodByAdminName(ctx, adminName)
		}
		return nil, fmt.Errorf("FindOrCreateMethod: %w", err)
	}
	return method, nil
}

// VendorMethodByAdminName looks up a method inside a vendor's catalog.
// A miss returns (nil, nil): vendor rate catalogs are provisioned out of
// band, so an unknown carrier/service pair just means "skip this rate".
func (s *Service) VendorMethodByAdminName(ctx context.Context, vendorID uuid.UUID, adminName string) (*models.ShippingMethod, error) {
	m, err := s.repo.FindVendorMethodByAdminName(ctx, vendorID, adminName)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) VendorPriceSackMethods(ctx context.Context, vendorID uuid.UUID) ([]*models.ShippingMethod, error) {
	return s.repo.ListVendorMethodsByCalculator(ctx, vendorID, models.CalculatorPriceSack)
}

// FirstTaxRateForCategory returns the first tax rate configured for the
// category, or (nil, nil) when the category has none.
func (s *Service) FirstTaxRateForCategory(ctx context.Context, taxCategoryID uuid.UUID) (*models.TaxRate, error) {
	t, err := s.repo.FirstTaxRateForCategory(ctx, taxCategoryID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// FindOrCreateTaxRate resolves a vendor tax rate matching the given amount,
// creating one when absent. Same race recovery as FindOrCreateMethod.
func (s *Service) FindOrCreateTaxRate(ctx context.Context, vendorID *uuid.UUID, amount decimal.Decimal) (*models.TaxRate, error) {
	t, err := s.repo.FindTaxRateByAmount(ctx, vendorID, amount)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	rate := &models.TaxRate{
		Amount:          amount,
		IncludedInPrice: true,
		VendorID:        vendorID,
		CalculatorType:  s.taxCalculator,
	}
	if err := s.repo.InsertTaxRate(ctx, rate); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return s.repo.FindTaxRateByAmount(ctx, vendorID, amount)
		}
		return nil, fmt.Errorf("FindOrCreateTaxRate: %w", err)
	}
	return rate, nil
}

func (s *Service) StorefrontCredential(ctx context.Context, vendorID uuid.UUID) (*models.StorefrontCredential, error) {
	return s.repo.StorefrontCredential(ctx, vendorID)
}

func (s *Service) FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	return s.repo.FindVendor(ctx, id)
}
