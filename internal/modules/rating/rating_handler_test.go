package rating

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rate-shopping/internal/models"
)

type fakeRatingService struct {
	pkg      *models.Package
	audience models.Audience
	rates    []*models.ShippingRate
	err      error
}

func (f *fakeRatingService) GetShippingRates(ctx context.Context, pkg *models.Package, audience models.Audience) ([]*models.ShippingRate, error) {
	f.pkg = pkg
	f.audience = audience
	return f.rates, f.err
}

func postRates(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/rates", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetRates(e.NewContext(req, rec)))
	return rec
}

func TestGetRatesRejectsUnknownAudience(t *testing.T) {
	h := NewHandler(&fakeRatingService{}, newFakeCatalog())
	rec := postRates(t, h, `{"audience":"wholesale","weight_kg":1,"destination":{"street1":"1 Main St","city":"Portland","country":"US"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRatesRejectsMissingDestination(t *testing.T) {
	h := NewHandler(&fakeRatingService{}, newFakeCatalog())
	rec := postRates(t, h, `{"audience":"front_end","weight_kg":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRatesUnknownVendorIs404(t *testing.T) {
	h := NewHandler(&fakeRatingService{}, newFakeCatalog())
	body := `{"audience":"back_end","weight_kg":1,"vendor_id":"` + uuid.NewString() + `","destination":{"street1":"1 Main St","city":"Portland","country":"US"}}`
	rec := postRates(t, h, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRatesBuildsPackage(t *testing.T) {
	fc := newFakeCatalog()
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme"}
	fc.vendors[vendor.ID] = vendor

	svc := &fakeRatingService{rates: []*models.ShippingRate{{Name: "Standard", Cost: d("4.90"), Selected: true}}}
	h := NewHandler(svc, fc)

	body := `{
		"audience": "back_end",
		"weight_kg": 2.5,
		"currency": "USD",
		"live_rates": true,
		"vendor_id": "` + vendor.ID.String() + `",
		"items": [{"sellable_id":"` + uuid.NewString() + `","quantity":2,"unit_price":"19.99"}],
		"destination": {"street1":"1 Main St","city":"Portland","country":"US"}
	}`
	rec := postRates(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, svc.pkg)
	assert.Equal(t, models.AudienceBackEnd, svc.audience)
	assert.Equal(t, 2.5, svc.pkg.WeightKg)
	assert.True(t, svc.pkg.LiveRatesEnabled)
	require.NotNil(t, svc.pkg.Vendor())
	assert.Equal(t, vendor.ID, svc.pkg.Vendor().ID)
	require.Len(t, svc.pkg.Contents, 1)
	assert.True(t, svc.pkg.ItemTotal().Equal(d("39.98")))
	assert.Contains(t, rec.Body.String(), `"Standard"`)
}
