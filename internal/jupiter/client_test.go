package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestClient creates a new test server and a Client configured to use it.
func setupTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return c, server
}

func TestGetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/order", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "MintA", q.Get("inputMint"))
			assert.Equal(t, "MintB", q.Get("outputMint"))
			assert.Equal(t, "1000000", q.Get("amount"))
			assert.Equal(t, "Taker1", q.Get("taker"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"requestId": "req-1",
				"transaction": "AQID",
				"inAmount": "1000000",
				"outAmount": "420000"
			}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		order, err := c.GetOrder(context.Background(), "MintA", "MintB", "1000000", "Taker1")

		assert.NoError(t, err)
		assert.Equal(t, "req-1", order.RequestID)
		assert.Equal(t, "AQID", order.Transaction)
		assert.Equal(t, "420000", order.OutAmount)
	})

	t.Run("TakerOmitted", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasTaker := r.URL.Query()["taker"]
			assert.False(t, hasTaker)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"requestId": "req-2", "outAmount": "1"}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		_, err := c.GetOrder(context.Background(), "MintA", "MintB", "1", "")
		assert.NoError(t, err)
	})

	t.Run("HTTPError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream exploded`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		order, err := c.GetOrder(context.Background(), "MintA", "MintB", "1", "")

		assert.Error(t, err)
		assert.Nil(t, order)
		assert.Contains(t, err.Error(), "502")
		assert.Contains(t, err.Error(), "upstream exploded")
	})

	t.Run("ErrorPayload", func(t *testing.T) {
		// A 200 response whose body carries an error field still fails.
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error": "no route found"}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		order, err := c.GetOrder(context.Background(), "MintA", "MintB", "1", "")

		assert.Error(t, err)
		assert.Nil(t, order)
		assert.Contains(t, err.Error(), "no route found")
	})
}

func TestExecuteOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/execute", r.URL.Path)

			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "req-1", body["requestId"])
			assert.Equal(t, "c2lnbmVk", body["signedTransaction"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"signature": "sig-1",
				"status": "Success",
				"inputAmountResult": "1000000",
				"outputAmountResult": "420000"
			}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		result, err := c.ExecuteOrder(context.Background(), "req-1", "c2lnbmVk")

		assert.NoError(t, err)
		assert.Equal(t, "sig-1", result.Signature)
		assert.Equal(t, "1000000", result.InputAmountResult)
		assert.Equal(t, "420000", result.OutputAmountResult)
	})

	t.Run("HTTPError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "simulation failed"}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		result, err := c.ExecuteOrder(context.Background(), "req-1", "c2lnbmVk")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "simulation failed")
	})
}

func TestSearchToken(t *testing.T) {
	t.Run("FirstMatchUsed", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "MintB", r.URL.Query().Get("query"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id": "MintB", "name": "Test Token", "symbol": "TT", "decimals": 6},
				{"id": "MintC", "name": "Other", "symbol": "OTH", "decimals": 9}
			]`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		info, err := c.SearchToken(context.Background(), "MintB")

		assert.NoError(t, err)
		assert.Equal(t, "MintB", info.Mint)
		assert.Equal(t, "Test Token", info.Name)
		assert.Equal(t, "TT", info.Symbol)
		assert.Equal(t, int32(6), info.Decimals)
	})

	t.Run("NoMatch", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		info, err := c.SearchToken(context.Background(), "MintX")

		assert.Error(t, err)
		assert.Nil(t, info)
		assert.Contains(t, err.Error(), "no token info found")
	})

	t.Run("HTTPError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`rate limited`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		_, err := c.SearchToken(context.Background(), "MintX")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})
}
