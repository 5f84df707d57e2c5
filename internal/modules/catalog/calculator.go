package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rate-shopping/internal/models"
)

// Calculator computes a shipping cost for a package. Implementations are
// reconstructed from a method's calculator type and stored parameters.
type Calculator interface {
	Compute(pkg *models.Package) (decimal.Decimal, error)
	AppliesTo(pkg *models.Package) bool
	// Preferences exposes calculator settings relevant to rate selection,
	// e.g. the currency a price-sack rule is constrained to.
	Preferences() map[string]string
}

// CalculatorFor builds the calculator configured on a shipping method.
func CalculatorFor(m *models.ShippingMethod) (Calculator, error) {
	switch m.CalculatorType {
	case models.CalculatorCarrierRate:
		return carrierRateCalculator{}, nil
	case models.CalculatorPriceSack:
		return newPriceSackCalculator(m.CalculatorParams)
	case models.CalculatorFlatRate:
		return newFlatRateCalculator(m.CalculatorParams)
	default:
		return nil, fmt.Errorf("unknown calculator type %q on method %q", m.CalculatorType, m.AdminName)
	}
}

// carrierRateCalculator marks a method whose cost comes straight from the
// live carrier provider; it never computes anything itself.
type carrierRateCalculator struct{}

func (carrierRateCalculator) Compute(*models.Package) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (carrierRateCalculator) AppliesTo(*models.Package) bool { return true }

func (carrierRateCalculator) Preferences() map[string]string { return nil }

// priceSackCalculator is a vendor flat-rate rule: packages whose item total
// stays under the minimal amount pay the normal amount, everything above it
// pays the discounted amount.
type priceSackCalculator struct {
	minimalAmount  decimal.Decimal
	normalAmount   decimal.Decimal
	discountAmount decimal.Decimal
	currency       string
}

func newPriceSackCalculator(params map[string]string) (Calculator, error) {
	c := priceSackCalculator{currency: params["currency"]}
	var err error
	if c.minimalAmount, err = paramDecimal(params, "minimal_amount"); err != nil {
		return nil, err
	}
	if c.normalAmount, err = paramDecimal(params, "normal_amount"); err != nil {
		return nil, err
	}
	if c.discountAmount, err = paramDecimal(params, "discount_amount"); err != nil {
		return nil, err
	}
	return c, nil
}

func (c priceSackCalculator) Compute(pkg *models.Package) (decimal.Decimal, error) {
	if pkg.ItemTotal().LessThan(c.minimalAmount) {
		return c.normalAmount, nil
	}
	return c.discountAmount, nil
}

func (c priceSackCalculator) AppliesTo(pkg *models.Package) bool {
	return len(pkg.Contents) > 0
}

func (c priceSackCalculator) Preferences() map[string]string {
	return map[string]string{"currency": c.currency}
}

// flatRateCalculator charges a fixed amount regardless of the package.
type flatRateCalculator struct {
	amount   decimal.Decimal
	currency string
}

func newFlatRateCalculator(params map[string]string) (Calculator, error) {
	amount, err := paramDecimal(params, "amount")
	if err != nil {
		return nil, err
	}
	return flatRateCalculator{amount: amount, currency: params["currency"]}, nil
}

func (c flatRateCalculator) Compute(*models.Package) (decimal.Decimal, error) {
	return c.amount, nil
}

func (c flatRateCalculator) AppliesTo(*models.Package) bool { return true }

func (c flatRateCalculator) Preferences() map[string]string {
	return map[string]string{"currency": c.currency}
}

func paramDecimal(params map[string]string, key string) (decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("calculator param %q: %w", key, err)
	}
	return d, nil
}
