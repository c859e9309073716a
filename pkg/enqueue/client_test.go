package enqueue

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	config := DefaultConfig()
	config.Host = parsed.Hostname()
	config.Port = port
	return NewClient(config, nil)
}

func TestEnqueuePostsJSONAndDecodesResponse(t *testing.T) {
	var receivedBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/queue/default/enqueue_batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&receivedBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "queued 1 batch"}`))
	}))
	defer server.Close()

	result, err := testClient(t, server).Enqueue(context.Background(), map[string]interface{}{"runs": 1})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "queued 1 batch", result.Message)
	assert.Equal(t, map[string]interface{}{"runs": float64(1)}, receivedBody)
}

func TestEnqueueDecodesGzipResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`{"message": "compressed"}`))
		_ = gz.Close()
	}))
	defer server.Close()

	result, err := testClient(t, server).Enqueue(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "compressed", result.Message)
}

func TestEnqueueDecodesDeflateResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "deflate")
		zw := zlib.NewWriter(w)
		_, _ = zw.Write([]byte(`{"message": "deflated"}`))
		_ = zw.Close()
	}))
	defer server.Close()

	result, err := testClient(t, server).Enqueue(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "deflated", result.Message)
}

func TestEnqueueNonSuccessStatusIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue is stopped", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(t, server).Enqueue(context.Background(), map[string]interface{}{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "queue is stopped")
}

func TestEnqueueNonJSONSuccessKeepsDefaultMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result, err := testClient(t, server).Enqueue(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "Batch enqueued successfully!", result.Message)
}

func TestEnqueueRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(t, server).Enqueue(ctx, map[string]interface{}{})
	assert.Error(t, err)
}
