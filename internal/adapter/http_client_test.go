package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lv-asc/vangarments-app-sub017/internal/config"
	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
	"github.com/lv-asc/vangarments-app-sub017/models"
)

func newTestClient(t *testing.T, serverURL string) RemoteClient {
	t.Helper()
	return NewHTTPRemoteClient(config.Adapter{
		BaseURL:   serverURL,
		AuthToken: "test-token",
	}, logger.Nop())
}

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ── PushBatch ───────────────────────────────────────────────────────────────

func TestPushBatch_Success(t *testing.T) {
	items := []models.PushItem{
		{ClientID: "c1", LastModified: 100, Payload: models.ItemPayload{Name: "jacket"}},
		{ClientID: "c2", LastModified: 101, Payload: models.ItemPayload{Name: "scarf"}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/items/batch", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Items, 2)
		assert.Equal(t, 2, req.Length)

		_ = json.NewEncoder(w).Encode(models.PushResponse{Results: []models.PushResult{
			{ClientID: "c1", RemoteID: "srv-1", Accepted: true},
			{ClientID: "c2", Reject: "invalid_category"},
		}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	results, err := c.PushBatch(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Accepted)
	assert.Equal(t, "srv-1", results[0].RemoteID)
	assert.Equal(t, "invalid_category", results[1].Reject)
}

func TestPushBatch_ServerError(t *testing.T) {
	srv := statusServer(t, http.StatusInternalServerError)

	c := newTestClient(t, srv.URL)
	_, err := c.PushBatch(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnreachable)
}

func TestPushBatch_BadRequest(t *testing.T) {
	srv := statusServer(t, http.StatusBadRequest)

	c := newTestClient(t, srv.URL)
	_, err := c.PushBatch(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteRejected)
}

func TestPushBatch_Unauthorized(t *testing.T) {
	srv := statusServer(t, http.StatusUnauthorized)

	c := newTestClient(t, srv.URL)
	_, err := c.PushBatch(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPushBatch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(t, srv.URL)
	_, err := c.PushBatch(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnreachable)
}

// ── UploadImage ─────────────────────────────────────────────────────────────

func TestUploadImage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/items/srv-7/image", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg bytes"), body)

		_ = json.NewEncoder(w).Encode(models.ImageUploadResponse{URL: "https://cdn/srv-7"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	url, err := c.UploadImage(context.Background(), "srv-7", []byte("jpeg bytes"))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn/srv-7", url)
}

func TestUploadImage_Rejected(t *testing.T) {
	srv := statusServer(t, http.StatusUnprocessableEntity)

	c := newTestClient(t, srv.URL)
	_, err := c.UploadImage(context.Background(), "srv-7", []byte("x"))

	assert.ErrorIs(t, err, ErrRemoteRejected)
}

// ── DeleteItem ──────────────────────────────────────────────────────────────

func TestDeleteItem_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.DeleteItem(context.Background(), "srv-3"))
	assert.Equal(t, "/items/srv-3", gotPath)
}

func TestDeleteItem_NotFoundIsSuccess(t *testing.T) {
	srv := statusServer(t, http.StatusNotFound)

	c := newTestClient(t, srv.URL)
	assert.NoError(t, c.DeleteItem(context.Background(), "gone"), "deletes are idempotent by contract")
}

func TestDeleteItem_ServerError(t *testing.T) {
	srv := statusServer(t, http.StatusServiceUnavailable)

	c := newTestClient(t, srv.URL)
	assert.ErrorIs(t, c.DeleteItem(context.Background(), "srv-3"), ErrNetworkUnreachable)
}

// ── PullSince ───────────────────────────────────────────────────────────────

func TestPullSince_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("modified_since"))

		_ = json.NewEncoder(w).Encode(models.PullResponse{
			Items: []models.RemoteItem{
				{ClientID: "c1", RemoteID: "srv-1", LastModified: 50},
				{ClientID: "c2", RemoteID: "srv-2", LastModified: 60, Deleted: true},
			},
			Watermark: 61,
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	items, watermark, err := c.PullSince(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(61), watermark)
	assert.True(t, items[1].Deleted)
}

func TestPullSince_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, _, err := c.PullSince(context.Background(), 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode pull response")
}

// ── FetchImage / Ping ───────────────────────────────────────────────────────

func TestFetchImage_AbsoluteURL(t *testing.T) {
	// Image URLs may point at a host other than the API base.
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/srv-1", r.URL.Path)
		_, _ = w.Write([]byte("image bytes"))
	}))
	defer cdn.Close()

	c := newTestClient(t, "https://api.unused.example")
	data, err := c.FetchImage(context.Background(), cdn.URL+"/images/srv-1")

	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestPing_Unavailable(t *testing.T) {
	srv := statusServer(t, http.StatusServiceUnavailable)

	c := newTestClient(t, srv.URL)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrNetworkUnreachable)
}

// ── auth header ─────────────────────────────────────────────────────────────

func TestSetToken_UpdatesSubsequentRequests(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	require.NoError(t, c.DeleteItem(context.Background(), "x"))
	assert.Equal(t, "Bearer test-token", gotAuth)

	c.SetToken("rotated")
	require.NoError(t, c.DeleteItem(context.Background(), "x"))
	assert.Equal(t, "Bearer rotated", gotAuth)

	c.SetToken("")
	require.NoError(t, c.DeleteItem(context.Background(), "x"))
	assert.Empty(t, gotAuth, "no header without a token")
}

func TestMapHTTPError_SuccessRange(t *testing.T) {
	srv := statusServer(t, http.StatusNoContent)

	c := newTestClient(t, srv.URL)
	assert.NoError(t, c.Ping(context.Background()))
}
