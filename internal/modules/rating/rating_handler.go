package rating

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"rate-shopping/internal/models"
)

// Handler handles HTTP requests for rate quotes.
type Handler struct {
	svc      ServiceInterface
	catalog  CatalogService
	validate *validator.Validate // For request body validation
}

// NewHandler creates a new rating handler.
func NewHandler(svc ServiceInterface, catalogSvc CatalogService) *Handler {
	return &Handler{
		svc:      svc,
		catalog:  catalogSvc,
		validate: validator.New(),
	}
}

func (h *Handler) GetRates(c echo.Context) error {
	var req models.RateQuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	pkg, err := h.buildPackage(c, req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Vendor not found"})
		}
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	rates, err := h.svc.GetShippingRates(c.Request().Context(), pkg, req.Audience)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to get shipping rates"})
	}
	return c.JSON(http.StatusOK, rates)
}

func (h *Handler) buildPackage(c echo.Context, req models.RateQuoteRequest) (*models.Package, error) {
	pkg := &models.Package{
		WeightKg:         req.WeightKg,
		Currency:         req.Currency,
		Destination:      req.Destination,
		LiveRatesEnabled: req.LiveRates,
	}
	if req.VendorID != nil {
		vendor, err := h.catalog.FindVendor(c.Request().Context(), *req.VendorID)
		if err != nil {
			return nil, err
		}
		pkg.Origin.Vendor = vendor
	}
	for _, item := range req.Items {
		price := decimal.Zero
		if item.UnitPrice != "" {
			var err error
			if price, err = decimal.NewFromString(item.UnitPrice); err != nil {
				return nil, errors.New("invalid unit_price on line item")
			}
		}
		pkg.Contents = append(pkg.Contents, models.LineItem{
			SellableID:     item.SellableID,
			ExternalItemID: item.ExternalItemID,
			Quantity:       item.Quantity,
			UnitPrice:      price,
		})
	}
	return pkg, nil
}
