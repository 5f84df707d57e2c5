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

// StorefrontSession is an authenticated session against a vendor's external
// storefront checkout API. Close must be called on every exit path; a leaked
// authenticated session is a correctness bug.
type StorefrontSession interface {
	CreateCheckout(ctx context.Context, pkg *models.Package) (*models.Checkout, error)
	Close()
}

// StorefrontClient opens storefront sessions from a vendor credential.
type StorefrontClient interface {
	OpenSession(domain, accessToken string) (StorefrontSession, error)
}

type storefrontHTTPClient struct {
	apiVersion string
}

// NewStorefrontClient builds the default HTTP-backed storefront client.
// apiVersion selects the checkout API revision on the provider side.
func NewStorefrontClient(apiVersion string) StorefrontClient {
	return &storefrontHTTPClient{apiVersion: apiVersion}
}

func (c *storefrontHTTPClient) OpenSession(domain, accessToken string) (StorefrontSession, error) {
	if domain == "" || accessToken == "" {
		return nil, models.ErrNoStorefrontCredential
	}
	return &storefrontHTTPSession{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     fmt.Sprintf("https://%s/api/%s", domain, c.apiVersion),
		accessToken: accessToken,
	}, nil
}

type storefrontHTTPSession struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// CreateCheckout creates a checkout resource for the package's line items and
// destination, then reads back its computed shipping rate options and tax.
func (s *storefrontHTTPSession) CreateCheckout(ctx context.Context, pkg *models.Package) (*models.Checkout, error) {
	if s.httpClient == nil {
		return nil, fmt.Errorf("storefront session already closed")
	}

	lines := make([]map[string]any, 0, len(pkg.Contents))
	for _, li := range pkg.Contents {
		lines = append(lines, map[string]any{
			"variant_id": li.ExternalItemID,
			"quantity":   li.Quantity,
		})
	}
	payload := map[string]any{
		"checkout": map[string]any{
			"line_items": lines,
			"shipping_address": map[string]string{
				"address1": pkg.Destination.Street1,
				"address2": pkg.Destination.Street2,
				"city":     pkg.Destination.City,
				"province": pkg.Destination.State,
				"zip":      pkg.Destination.Zip,
				"country":  pkg.Destination.Country,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/checkouts.json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("X-Storefront-Access-Token", s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: storefront api: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: storefront api status %s", models.ErrSourceUnavailable, resp.Status)
	}

	var out struct {
		Checkout struct {
			ID            string `json:"id"`
			TotalTax      string `json:"total_tax"`
			ShippingRates []struct {
				Title string `json:"title"`
				Price string `json:"price"`
			} `json:"shipping_rates"`
		} `json:"checkout"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode checkout response: %v", models.ErrSourceUnavailable, err)
	}

	checkout := &models.Checkout{ID: out.Checkout.ID}
	if tax, err := decimal.NewFromString(out.Checkout.TotalTax); err == nil {
		checkout.TotalTax = tax
	}
	for _, r := range out.Checkout.ShippingRates {
		price, err := decimal.NewFromString(r.Price)
		if err != nil || r.Title == "" {
			// Unpriced option; skip it, keep the rest.
			log.Printf("storefront: %v: option %q", models.ErrMalformedRate, r.Title)
			continue
		}
		checkout.ShippingRateOptions = append(checkout.ShippingRateOptions, models.RateOption{
			Title:  r.Title,
			Amount: price,
		})
	}
	return checkout, nil
}

// Close drops the session's credential and transport so it cannot be reused.
func (s *storefrontHTTPSession) Close() {
	s.accessToken = ""
	s.httpClient = nil
}
