package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarrierRate is one raw rate returned by the live carrier provider.
type CarrierRate struct {
	ID       string          `json:"id"`
	Carrier  string          `json:"carrier"`
	Service  string          `json:"service"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

// RateSession is the provider-side shipment created to quote a package.
// It is created at most once per package (see Package.CarrierSession).
type RateSession struct {
	ShipmentID string        `json:"shipment_id"`
	Rates      []CarrierRate `json:"rates"`
}

// RateOption is one shipping option computed by the storefront checkout API.
type RateOption struct {
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}

// Checkout is the storefront checkout resource created for a package.
type Checkout struct {
	ID                  string          `json:"id"`
	ShippingRateOptions []RateOption    `json:"shipping_rate_options"`
	TotalTax            decimal.Decimal `json:"total_tax"`
}

// ShippingRate is a single normalized quote shown to the caller. Exactly one
// rate in a non-empty result set carries Selected = true.
type ShippingRate struct {
	Name               string          `json:"name"`
	Cost               decimal.Decimal `json:"cost"`
	ShippingMethodID   uuid.UUID       `json:"shipping_method_id"`
	Method             *ShippingMethod `json:"-"`
	TaxRateID          *uuid.UUID      `json:"tax_rate_id,omitempty"`
	ExternalRateID     string          `json:"external_rate_id,omitempty"`
	ExternalShipmentID string          `json:"external_shipment_id,omitempty"`
	Selected           bool            `json:"selected"`
}

// RateQuoteItem is a line item in a rate quote request.
type RateQuoteItem struct {
	SellableID     uuid.UUID `json:"sellable_id" validate:"required"`
	ExternalItemID string    `json:"external_item_id,omitempty"`
	Quantity       int       `json:"quantity" validate:"required,min=1"`
	UnitPrice      string    `json:"unit_price,omitempty"`
}

// RateQuoteRequest is the payload accepted by the rating endpoint.
type RateQuoteRequest struct {
	Audience    Audience        `json:"audience" validate:"required,oneof=front_end back_end"`
	WeightKg    float64         `json:"weight_kg" validate:"gte=0"`
	Currency    string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	LiveRates   bool            `json:"live_rates"`
	VendorID    *uuid.UUID      `json:"vendor_id,omitempty"`
	Items       []RateQuoteItem `json:"items" validate:"dive"`
	Destination Address         `json:"destination" validate:"required"`
}

// ErrorResponse is the standard error body returned by handlers.
type ErrorResponse struct {
	Message string `json:"message"`
}
