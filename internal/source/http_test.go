package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHTTPSource(t *testing.T, handler http.HandlerFunc) *HTTPSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPSource(HTTPConfig{
		Endpoint: srv.URL + "/exec",
		Client:   srv.Client(),
		Logger:   zaptest.NewLogger(t),
	})
}

func TestHTTPSourceFetchesCompanyDataset(t *testing.T) {
	var gotQuery string
	src := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("companyId")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Cafe", "lat": 25.03, "lng": 121.56}]`))
	})

	stores, err := src.FetchStores(context.Background(), "moda")

	require.NoError(t, err)
	assert.Equal(t, "moda", gotQuery)
	require.Len(t, stores, 1)
	assert.Equal(t, "Cafe", stores[0].Name)
}

func TestHTTPSourceErrorPayload(t *testing.T) {
	src := newTestHTTPSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "unknown company"}`))
	})

	_, err := src.FetchStores(context.Background(), "nope")

	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, "unknown company", err.Error())
}

func TestHTTPSourceNonSuccessStatus(t *testing.T) {
	t.Run("with error payload", func(t *testing.T) {
		src := newTestHTTPSource(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "no such company"}`))
		})
		_, err := src.FetchStores(context.Background(), "x")
		require.Error(t, err)
		assert.Equal(t, "no such company", err.Error())
	})

	t.Run("without payload", func(t *testing.T) {
		src := newTestHTTPSource(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		})
		_, err := src.FetchStores(context.Background(), "x")
		require.Error(t, err)
		assert.Equal(t, defaultFailureMessage, err.Error())
	})
}

func TestHTTPSourceMalformedBody(t *testing.T) {
	src := newTestHTTPSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1,`))
	})

	_, err := src.FetchStores(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestHTTPSourceHonoursContext(t *testing.T) {
	src := newTestHTTPSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchStores(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSourceWithoutEndpoint(t *testing.T) {
	_, err := NewHTTPSource(HTTPConfig{}).FetchStores(context.Background(), "x")
	assert.Error(t, err)
}
