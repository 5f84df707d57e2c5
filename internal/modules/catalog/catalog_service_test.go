package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rate-shopping/internal/models"
)

// ----------------------------------------------------------------------------
// fakeRepo simulates the catalog store in memory. The mutex matters: the
// registry must behave under concurrent find-or-create calls.
// ----------------------------------------------------------------------------
type fakeRepo struct {
	mu              sync.Mutex
	methods         map[string]*models.ShippingMethod // keyed by admin name
	taxRates        []*models.TaxRate
	defaultCategory *models.ShippingCategory
	vendors         map[uuid.UUID]*models.Vendor
	creds           map[uuid.UUID]*models.StorefrontCredential

	// missNextFind forces the next FindMethodByAdminName to miss even when
	// the row exists, simulating a lost create race.
	missNextFind bool
	inserts      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		methods: make(map[string]*models.ShippingMethod),
		vendors: make(map[uuid.UUID]*models.Vendor),
		creds:   make(map[uuid.UUID]*models.StorefrontCredential),
	}
}

func (f *fakeRepo) FindMethodByAdminName(ctx context.Context, adminName string) (*models.ShippingMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missNextFind {
		f.missNextFind = false
		return nil, models.ErrNotFound
	}
	m, ok := f.methods[adminName]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) FindVendorMethodByAdminName(ctx context.Context, vendorID uuid.UUID, adminName string) (*models.ShippingMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.methods[adminName]
	if !ok || m.VendorID == nil || *m.VendorID != vendorID {
		return nil, models.ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) ListVendorMethodsByCalculator(ctx context.Context, vendorID uuid.UUID, calculatorType string) ([]*models.ShippingMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ShippingMethod
	for _, m := range f.methods {
		if m.VendorID != nil && *m.VendorID == vendorID && m.CalculatorType == calculatorType {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) InsertMethod(ctx context.Context, m *models.ShippingMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if _, exists := f.methods[m.AdminName]; exists {
		return models.ErrConflict
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	f.methods[m.AdminName] = m
	return nil
}

func (f *fakeRepo) FirstTaxRateForCategory(ctx context.Context, taxCategoryID uuid.UUID) (*models.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.taxRates {
		if t.TaxCategoryID != nil && *t.TaxCategoryID == taxCategoryID {
			return t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) FindTaxRateByAmount(ctx context.Context, vendorID *uuid.UUID, amount decimal.Decimal) (*models.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.taxRates {
		sameVendor := (t.VendorID == nil && vendorID == nil) ||
			(t.VendorID != nil && vendorID != nil && *t.VendorID == *vendorID)
		if sameVendor && t.Amount.Equal(amount) {
			return t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) InsertTaxRate(ctx context.Context, t *models.TaxRate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.taxRates = append(f.taxRates, t)
	return nil
}

func (f *fakeRepo) DefaultShippingCategory(ctx context.Context) (*models.ShippingCategory, error) {
	if f.defaultCategory == nil {
		return nil, models.ErrNotFound
	}
	return f.defaultCategory, nil
}

func (f *fakeRepo) FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	v, ok := f.vendors[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return v, nil
}

func (f *fakeRepo) StorefrontCredential(ctx context.Context, vendorID uuid.UUID) (*models.StorefrontCredential, error) {
	c, ok := f.creds[vendorID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return c, nil
}

// ----------------------------------------------------------------------------

func TestFindOrCreateMethodIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.defaultCategory = &models.ShippingCategory{ID: uuid.New(), Name: "Default"}
	svc := NewService(repo, "default_tax")
	ctx := context.Background()

	defaults := MethodDefaults{
		Name:           "UPS Ground",
		DisplayOn:      models.DisplayOnBackEnd,
		Code:           "Ground",
		CalculatorType: models.CalculatorCarrierRate,
	}

	first, err := svc.FindOrCreateMethod(ctx, "UPS Ground", defaults)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, models.DisplayOnBackEnd, first.DisplayOn)
	assert.Len(t, first.CategoryIDs, 1, "default category should be attached on create")

	// Defaults are creation-time only: a second call with different defaults
	// returns the existing entry untouched.
	second, err := svc.FindOrCreateMethod(ctx, "UPS Ground", MethodDefaults{DisplayOn: models.DisplayOnBoth})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.DisplayOnBackEnd, second.DisplayOn)
	assert.Equal(t, 1, repo.inserts)
}

func TestFindOrCreateMethodRecoversFromCreateRace(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, "default_tax")
	ctx := context.Background()

	winner := &models.ShippingMethod{
		ID:        uuid.New(),
		Name:      "FedEx 2Day",
		AdminName: "FedEx 2Day",
		DisplayOn: models.DisplayOnBackEnd,
	}
	repo.methods["FedEx 2Day"] = winner
	// The row exists but our initial lookup raced ahead of the other
	// writer's commit; our insert then hits the unique constraint.
	repo.missNextFind = true

	m, err := svc.FindOrCreateMethod(ctx, "FedEx 2Day", MethodDefaults{DisplayOn: models.DisplayOnBoth})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, m.ID, "conflict must resolve to the winner's row")
}

func TestFindOrCreateMethodConcurrent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, "default_tax")
	ctx := context.Background()

	const workers = 8
	results := make([]*models.ShippingMethod, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := svc.FindOrCreateMethod(ctx, "USPS Priority", MethodDefaults{
				DisplayOn:      models.DisplayOnBackEnd,
				CalculatorType: models.CalculatorCarrierRate,
			})
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = m
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	for i := 1; i < workers; i++ {
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].ID, results[i].ID, "all workers must get the same entry")
	}
	assert.Len(t, repo.methods, 1)
}

func TestVendorMethodByAdminNameMissIsNotAnError(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, "default_tax")

	m, err := svc.VendorMethodByAdminName(context.Background(), uuid.New(), "DHL Express")
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, 0, repo.inserts, "vendor-scoped lookups never create")
}

func TestFindOrCreateTaxRate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, "default_tax")
	ctx := context.Background()
	vendorID := uuid.New()

	amount := decimal.RequireFromString("1.50")
	first, err := svc.FindOrCreateTaxRate(ctx, &vendorID, amount)
	require.NoError(t, err)
	assert.Equal(t, "default_tax", first.CalculatorType)
	assert.True(t, first.IncludedInPrice)

	second, err := svc.FindOrCreateTaxRate(ctx, &vendorID, amount)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
