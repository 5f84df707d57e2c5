package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rate-shopping/internal/models"
)

// RepositoryInterface defines the catalog-store operations the service needs:
// shipping-method lookup/insert, tax rates, categories, vendors and their
// storefront credentials.
type RepositoryInterface interface {
	// ===== Shipping methods =====
	FindMethodByAdminName(ctx context.Context, adminName string) (*models.ShippingMethod, error)
	FindVendorMethodByAdminName(ctx context.Context, vendorID uuid.UUID, adminName string) (*models.ShippingMethod, error)
	ListVendorMethodsByCalculator(ctx context.Context, vendorID uuid.UUID, calculatorType string) ([]*models.ShippingMethod, error)
	InsertMethod(ctx context.Context, m *models.ShippingMethod) error

	// ===== Tax rates =====
	FirstTaxRateForCategory(ctx context.Context, taxCategoryID uuid.UUID) (*models.TaxRate, error)
	FindTaxRateByAmount(ctx context.Context, vendorID *uuid.UUID, amount decimal.Decimal) (*models.TaxRate, error)
	InsertTaxRate(ctx context.Context, t *models.TaxRate) error

	// ===== Categories / vendors =====
	DefaultShippingCategory(ctx context.Context) (*models.ShippingCategory, error)
	FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	StorefrontCredential(ctx context.Context, vendorID uuid.UUID) (*models.StorefrontCredential, error)
}

// Repository implements RepositoryInterface against PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const methodColumns = `
	id, name, admin_name, display_on, COALESCE(code, ''),
	calculator_type, calculator_params,
	vendor_id, tax_category_id, COALESCE(countries, '{}'),
	created_at, updated_at`

func (r *Repository) FindMethodByAdminName(ctx context.Context, adminName string) (*models.ShippingMethod, error) {
	query := `
		SELECT ` + methodColumns + `
		FROM shipping_methods
		WHERE admin_name = $1`
	m, err := scanMethod(r.db.QueryRow(ctx, query, adminName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("FindMethodByAdminName failed: %w", err)
	}
	return m, nil
}

func (r *Repository) FindVendorMethodByAdminName(ctx context.Context, vendorID uuid.UUID, adminName string) (*models.ShippingMethod, error) {
	query := `
		SELECT ` + methodColumns + `
		FROM shipping_methods
		WHERE vendor_id = $1 AND admin_name = $2`
	m, err := scanMethod(r.db.QueryRow(ctx, query, vendorID, adminName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("FindVendorMethodByAdminName failed: %w", err)
	}
	return m, nil
}

func (r *Repository) ListVendorMethodsByCalculator(ctx context.Context, vendorID uuid.UUID, calculatorType string) ([]*models.ShippingMethod, error) {
	query := `
		SELECT ` + methodColumns + `
		FROM shipping_methods
		WHERE vendor_id = $1 AND calculator_type = $2
		ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, vendorID, calculatorType)
	if err != nil {
		return nil, fmt.Errorf("ListVendorMethodsByCalculator failed: %w", err)
	}
	defer rows.Close()

	var methods []*models.ShippingMethod
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("ListVendorMethodsByCalculator Scan failed: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListVendorMethodsByCalculator rows failed: %w", err)
	}
	return methods, nil
}

// InsertMethod creates a shipping method and its category links in one
// transaction. A concurrent create on the same admin_name surfaces as
// models.ErrConflict via the unique constraint.
func (r *Repository) InsertMethod(ctx context.Context, m *models.ShippingMethod) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("InsertMethod begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	params, err := json.Marshal(m.CalculatorParams)
	if err != nil {
		return fmt.Errorf("InsertMethod params failed: %w", err)
	}

	const query = `
		INSERT INTO shipping_methods (
			id, name, admin_name, display_on, code,
			calculator_type, calculator_params,
			vendor_id, tax_category_id, countries,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, now(), now())
		RETURNING created_at, updated_at`
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	err = tx.QueryRow(ctx, query,
		m.ID, m.Name, m.AdminName, m.DisplayOn, nullIfEmpty(m.Code),
		m.CalculatorType, params,
		m.VendorID, m.TaxCategoryID, m.Countries,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("InsertMethod failed: %w", err)
	}

	for _, categoryID := range m.CategoryIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO shipping_method_categories (shipping_method_id, shipping_category_id)
			VALUES ($1, $2)`, m.ID, categoryID)
		if err != nil {
			return fmt.Errorf("InsertMethod categories failed: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) FirstTaxRateForCategory(ctx context.Context, taxCategoryID uuid.UUID) (*models.TaxRate, error) {
	const query = `
		SELECT id, amount, included_in_price, tax_category_id, vendor_id, calculator_type, created_at
		FROM tax_rates
		WHERE tax_category_id = $1
		ORDER BY created_at
		LIMIT 1`
	t := &models.TaxRate{}
	err := r.db.QueryRow(ctx, query, taxCategoryID).Scan(
		&t.ID, &t.Amount, &t.IncludedInPrice,
		&t.TaxCategoryID, &t.VendorID, &t.CalculatorType, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("FirstTaxRateForCategory failed: %w", err)
	}
	return t, nil
}

func (r *Repository) FindTaxRateByAmount(ctx context.Context, vendorID *uuid.UUID, amount decimal.Decimal) (*models.TaxRate, error) {
	const query = `
		SELECT id, amount, included_in_price, tax_category_id, vendor_id, calculator_type, created_at
		FROM tax_rates
		WHERE vendor_id IS NOT DISTINCT FROM $1 AND amount = $2
		LIMIT 1`
	t := &models.TaxRate{}
	err := r.db.QueryRow(ctx, query, vendorID, amount).Scan(
		&t.ID, &t.Amount, &t.IncludedInPrice,
		&t.TaxCategoryID, &t.VendorID, &t.CalculatorType, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("FindTaxRateByAmount failed: %w", err)
	}
	return t, nil
}

func (r *Repository) InsertTaxRate(ctx context.Context, t *models.TaxRate) error {
	const query = `
		INSERT INTO tax_rates (id, amount, included_in_price, tax_category_id, vendor_id, calculator_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING created_at`
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, query,
		t.ID, t.Amount, t.IncludedInPrice,
		t.TaxCategoryID, t.VendorID, t.CalculatorType,
	).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("InsertTaxRate failed: %w", err)
	}
	return nil
}

func (r *Repository) DefaultShippingCategory(ctx context.Context) (*models.ShippingCategory, error) {
	const query = `
		SELECT id, name
		FROM shipping_categories
		ORDER BY created_at
		LIMIT 1`
	c := &models.ShippingCategory{}
	if err := r.db.QueryRow(ctx, query).Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("DefaultShippingCategory failed: %w", err)
	}
	return c, nil
}

func (r *Repository) FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	const query = `
		SELECT id, name, created_at
		FROM vendors
		WHERE id = $1`
	v := &models.Vendor{}
	if err := r.db.QueryRow(ctx, query, id).Scan(&v.ID, &v.Name, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("FindVendor failed: %w", err)
	}
	return v, nil
}

func (r *Repository) StorefrontCredential(ctx context.Context, vendorID uuid.UUID) (*models.StorefrontCredential, error) {
	const query = `
		SELECT vendor_id, domain, access_token
		FROM vendor_storefront_credentials
		WHERE vendor_id = $1`
	c := &models.StorefrontCredential{}
	if err := r.db.QueryRow(ctx, query, vendorID).Scan(&c.VendorID, &c.Domain, &c.AccessToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("StorefrontCredential failed: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMethod(row rowScanner) (*models.ShippingMethod, error) {
	m := &models.ShippingMethod{}
	var params []byte
	if err := row.Scan(
		&m.ID, &m.Name, &m.AdminName, &m.DisplayOn, &m.Code,
		&m.CalculatorType, &params,
		&m.VendorID, &m.TaxCategoryID, &m.Countries,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &m.CalculatorParams); err != nil {
			return nil, fmt.Errorf("calculator_params: %w", err)
		}
	}
	return m, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (a concurrent create race lost to an existing row).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
