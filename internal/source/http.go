package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
)

// defaultFailureMessage is reported when a non-2xx response has no error text.
const defaultFailureMessage = "failed to load data from the API"

// maxResponseBody caps dataset responses; datasets are hundreds of records.
const maxResponseBody = 8 << 20

// HTTPSource fetches `<endpoint>?companyId=<id>`.
type HTTPSource struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// HTTPConfig defines dependencies required by HTTPSource.
type HTTPConfig struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
	Logger   *zap.Logger
}

// NewHTTPSource constructs an HTTP data source.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		client:   client,
		logger:   logger,
	}
}

// FetchStores implements Source.
func (s *HTTPSource) FetchStores(ctx context.Context, companyID string) ([]domain.Store, error) {
	target, err := s.datasetURL(companyID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch stores: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("data source returned non-success status",
			zap.String("company_id", companyID),
			zap.Int("status", resp.StatusCode))
		var payload errorPayload
		if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
			return nil, &PayloadError{Message: payload.Error}
		}
		return nil, &PayloadError{Message: defaultFailureMessage}
	}

	stores, err := decodeDataset(body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("dataset fetched",
		zap.String("company_id", companyID),
		zap.Int("stores", len(stores)))
	return stores, nil
}

func (s *HTTPSource) datasetURL(companyID string) (string, error) {
	if s.endpoint == "" {
		return "", fmt.Errorf("data source endpoint is not configured")
	}
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("companyId", companyID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
