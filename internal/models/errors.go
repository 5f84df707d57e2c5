package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrConflict = errors.New("resource conflict, item already exists")

// ErrSourceUnavailable indicates that an external rate provider could not be
// reached or refused the request. Other rate sources still contribute.
var ErrSourceUnavailable = errors.New("rate source unavailable")

// ErrMalformedRate indicates that a provider returned a rate candidate with
// missing or unparsable fields. The candidate is skipped, not the batch.
var ErrMalformedRate = errors.New("malformed rate from provider")

var ErrNoStorefrontCredential = errors.New("vendor has no storefront credential")

// Add other common domain errors
