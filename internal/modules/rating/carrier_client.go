package rating

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"rate-shopping/internal/models"
)

// CarrierProvider opens a live-rate session for a package with the external
// carrier-rate API.
type CarrierProvider interface {
	CreateSession(ctx context.Context, pkg *models.Package) (*models.RateSession, error)
}

// carrierHTTPProvider talks to the carrier-rate API over HTTP.
type carrierHTTPProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewCarrierProvider builds the default HTTP-backed carrier provider.
func NewCarrierProvider(baseURL, apiKey string) CarrierProvider {
	return &carrierHTTPProvider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// CreateSession posts the package to the provider's /shipments endpoint and
// returns the created shipment with its quoted rates. Rates the provider
// returns without a price are dropped here rather than failing the batch.
func (p *carrierHTTPProvider) CreateSession(ctx context.Context, pkg *models.Package) (*models.RateSession, error) {
	payload := map[string]any{
		"parcel": map[string]any{
			"weight_kg": pkg.WeightKg,
		},
		"to_address": map[string]string{
			"street1": pkg.Destination.Street1,
			"street2": pkg.Destination.Street2,
			"city":    pkg.Destination.City,
			"state":   pkg.Destination.State,
			"zip":     pkg.Destination.Zip,
			"country": pkg.Destination.Country,
		},
		"from_address": map[string]string{
			"name": pkg.Origin.Name,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal shipment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/shipments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build shipment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: carrier api: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: carrier api status %s", models.ErrSourceUnavailable, resp.Status)
	}

	var out struct {
		ObjectID string `json:"object_id"`
		Rates    []struct {
			ObjectID string `json:"object_id"`
			Carrier  string `json:"carrier"`
			Service  string `json:"service"`
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode carrier response: %v", models.ErrSourceUnavailable, err)
	}

	session := &models.RateSession{ShipmentID: out.ObjectID}
	for _, r := range out.Rates {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil || r.Carrier == "" || r.Service == "" {
			// Unpriced or incomplete candidate; skip it, keep the batch.
			log.Printf("carrier: %v: rate %q", models.ErrMalformedRate, r.ObjectID)
			continue
		}
		session.Rates = append(session.Rates, models.CarrierRate{
			ID:       r.ObjectID,
			Carrier:  r.Carrier,
			Service:  r.Service,
			Amount:   amount,
			Currency: r.Currency,
		})
	}
	return session, nil
}
