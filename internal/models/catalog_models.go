package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Display policies for a shipping method's catalog entry.
const (
	DisplayOnFrontEnd = "front_end"
	DisplayOnBackEnd  = "back_end"
	DisplayOnBoth     = "both"
	DisplayOnNone     = "none"
)

// Calculator types referenced by shipping methods.
const (
	CalculatorCarrierRate = "carrier_rate"
	CalculatorPriceSack   = "price_sack"
	CalculatorFlatRate    = "flat_rate"
)

// ShippingMethod is a catalog entry. AdminName is the unique internal key;
// Name is the customer-facing label and may change freely.
type ShippingMethod struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	AdminName        string            `json:"admin_name"`
	DisplayOn        string            `json:"display_on"`
	Code             string            `json:"code,omitempty"`
	CalculatorType   string            `json:"calculator_type"`
	CalculatorParams map[string]string `json:"calculator_params,omitempty"`
	VendorID         *uuid.UUID        `json:"vendor_id,omitempty"`
	TaxCategoryID    *uuid.UUID        `json:"tax_category_id,omitempty"`
	Countries        []string          `json:"countries,omitempty"`
	CategoryIDs      []uuid.UUID       `json:"category_ids,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Some shipping methods are only meant to be set via backend.
func (m *ShippingMethod) Frontend() bool {
	return m.DisplayOn != DisplayOnBackEnd && !m.None()
}

// Some shipping methods should not be displayed at all.
func (m *ShippingMethod) None() bool {
	return m.DisplayOn == DisplayOnNone
}

func (m *ShippingMethod) Both() bool {
	return m.DisplayOn == DisplayOnBoth
}

func (m *ShippingMethod) IsPriceSack() bool {
	return m.CalculatorType == CalculatorPriceSack
}

// AvailableTo reports whether the method should be shown to the given
// audience. Every rate source answers this the same way.
func (m *ShippingMethod) AvailableTo(audience Audience) bool {
	switch m.DisplayOn {
	case DisplayOnNone:
		return false
	case DisplayOnBackEnd:
		return audience == AudienceBackEnd
	case DisplayOnBoth:
		return true
	default:
		return audience == AudienceFrontEnd
	}
}

// AvailableToCountry reports destination applicability. An empty country
// list matches everywhere.
func (m *ShippingMethod) AvailableToCountry(country string) bool {
	if len(m.Countries) == 0 {
		return true
	}
	for _, c := range m.Countries {
		if c == country {
			return true
		}
	}
	return false
}

// ShippingCategory groups sellables for method applicability.
type ShippingCategory struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TaxRate is a tax charge referenced by quotes. For category rates Amount is
// a fraction (0.10 = 10%); rates mirrored from an external checkout store the
// checkout's absolute tax total instead.
type TaxRate struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	IncludedInPrice bool            `json:"included_in_price"`
	TaxCategoryID   *uuid.UUID      `json:"tax_category_id,omitempty"`
	VendorID        *uuid.UUID      `json:"vendor_id,omitempty"`
	CalculatorType  string          `json:"calculator_type"`
	CreatedAt       time.Time       `json:"created_at"`
}
