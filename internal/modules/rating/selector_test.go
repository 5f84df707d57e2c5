package rating

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rate-shopping/internal/models"
)

func quote(name, cost, displayOn string) *models.ShippingRate {
	return &models.ShippingRate{
		Name: name,
		Cost: d(cost),
		Method: &models.ShippingMethod{
			ID:        uuid.New(),
			AdminName: name,
			DisplayOn: displayOn,
		},
	}
}

func TestSelectRatesFlagsSingleCheapestDefault(t *testing.T) {
	rates := []*models.ShippingRate{
		quote("a", "12.50", models.DisplayOnBoth),
		quote("b", "9.00", models.DisplayOnBoth),
		quote("c", "15.00", models.DisplayOnBoth),
	}

	out := selectRates(rates, models.AudienceFrontEnd)
	require.Len(t, out, 3)

	selected := 0
	for _, r := range out {
		if r.Selected {
			selected++
			assert.Equal(t, "b", r.Name)
		}
		assert.True(t, out[1].Cost.LessThanOrEqual(r.Cost), "default must be minimal")
	}
	assert.Equal(t, 1, selected)
}

func TestSelectRatesTieGoesToFirstEncountered(t *testing.T) {
	rates := []*models.ShippingRate{
		quote("first", "5.00", models.DisplayOnBoth),
		quote("second", "5.00", models.DisplayOnBoth),
	}

	out := selectRates(rates, models.AudienceBackEnd)
	require.Len(t, out, 2)
	assert.True(t, out[0].Selected)
	assert.False(t, out[1].Selected)
}

func TestSelectRatesReassertsVisibility(t *testing.T) {
	rates := []*models.ShippingRate{
		quote("visible", "9.00", models.DisplayOnBoth),
		quote("backend only", "1.00", models.DisplayOnBackEnd),
		quote("hidden", "0.50", models.DisplayOnNone),
	}

	out := selectRates(rates, models.AudienceFrontEnd)
	require.Len(t, out, 1)
	assert.Equal(t, "visible", out[0].Name)
	assert.True(t, out[0].Selected, "cheapest among visible, not overall")
}

func TestSelectRatesEmptyInput(t *testing.T) {
	out := selectRates(nil, models.AudienceFrontEnd)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSelectRatesDropsQuotesWithoutMethod(t *testing.T) {
	out := selectRates([]*models.ShippingRate{{Name: "orphan", Cost: d("1.00")}}, models.AudienceBackEnd)
	assert.Empty(t, out)
}
