// Package source fetches company store datasets.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
)

// Source returns the full store dataset of one company.
type Source interface {
	FetchStores(ctx context.Context, companyID string) ([]domain.Store, error)
}

// CompanyLister is implemented by sources that can enumerate their
// companies.
type CompanyLister interface {
	Companies(ctx context.Context) ([]string, error)
}

// ErrCompanyNotFound is returned when a source has no dataset for a company.
var ErrCompanyNotFound = errors.New("company dataset not found")

// PayloadError carries the message of an `{"error": "..."}` response.
type PayloadError struct {
	Message string
}

func (e *PayloadError) Error() string {
	return e.Message
}

// errorPayload is the object a data source answers with instead of an array.
type errorPayload struct {
	Error string `json:"error"`
}

// decodeDataset decodes either a store array or an error object.
func decodeDataset(body []byte) ([]domain.Store, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var payload errorPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if payload.Error != "" {
			return nil, &PayloadError{Message: payload.Error}
		}
		return nil, errors.New("unexpected response: expected a list of stores")
	}

	stores, err := domain.DecodeStores(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return stores, nil
}

// Func adapts a function to Source.
type Func func(ctx context.Context, companyID string) ([]domain.Store, error)

// FetchStores implements Source.
func (f Func) FetchStores(ctx context.Context, companyID string) ([]domain.Store, error) {
	return f(ctx, companyID)
}
