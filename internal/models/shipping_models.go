package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Audience identifies who the rate list is being built for.
type Audience string

const (
	AudienceFrontEnd Audience = "front_end"
	AudienceBackEnd  Audience = "back_end"
)

// Address is a shipping destination.
type Address struct {
	Name    string `json:"name,omitempty"`
	Street1 string `json:"street1" validate:"required"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country" validate:"required,len=2"`
	Phone   string `json:"phone,omitempty"`
}

// Vendor owns a stock location and, optionally, its own shipping-method
// catalog and storefront credential.
type Vendor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StorefrontCredential is a vendor's access to the external checkout API.
type StorefrontCredential struct {
	VendorID    uuid.UUID `json:"vendor_id"`
	Domain      string    `json:"domain"`
	AccessToken string    `json:"-"`
}

// StockLocation is a package's origin. Vendor is nil for house stock.
type StockLocation struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Vendor *Vendor   `json:"vendor,omitempty"`
}

// LineItem is one sellable in a package.
type LineItem struct {
	SellableID     uuid.UUID       `json:"sellable_id"`
	ExternalItemID string          `json:"external_item_id,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// Package is the unit of shipment being rated. It is built once per rating
// request and not mutated afterwards, except for the memoized carrier rate
// session which is fetched on first access.
type Package struct {
	WeightKg         float64
	Currency         string
	Contents         []LineItem
	Origin           StockLocation
	Destination      Address
	LiveRatesEnabled bool

	sessionOnce sync.Once
	session     *RateSession
	sessionErr  error
}

// Vendor returns the vendor owning the package's origin, or nil.
func (p *Package) Vendor() *Vendor {
	return p.Origin.Vendor
}

// ItemTotal is the monetary total of the package contents.
func (p *Package) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range p.Contents {
		total = total.Add(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	return total
}

// CarrierSession returns the package's live-rate session, fetching it once
// via fetch and memoizing the result. Subsequent calls return the same
// session (or the same error) without calling fetch again.
func (p *Package) CarrierSession(fetch func() (*RateSession, error)) (*RateSession, error) {
	p.sessionOnce.Do(func() {
		p.session, p.sessionErr = fetch()
	})
	return p.session, p.sessionErr
}
