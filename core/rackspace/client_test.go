package rackspace

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		APIURL:     server.URL,
		UserKey:    "user",
		SecretKey:  "secret",
		CustomerID: "12345",
		UserAgent:  "mailsync-test",
	}, zap.NewNop())
}

func TestSignature(t *testing.T) {
	c := &Client{cfg: Config{UserKey: "user", SecretKey: "secret", UserAgent: "agent"}}
	now := time.Date(2024, 3, 1, 13, 30, 5, 0, time.UTC)

	sum := sha1.Sum([]byte("user" + "agent" + "20240301133005" + "secret"))
	expected := fmt.Sprintf("user:20240301133005:%s", base64.StdEncoding.EncodeToString(sum[:]))

	assert.Equal(t, expected, c.signature(now))
}

func TestGetSendsHeadersAndQuery(t *testing.T) {
	var got *http.Request
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		fmt.Fprint(w, `{"ok": true}`)
	})

	result, err := c.Get(context.Background(), "/v1/customers/12345/domains/example.com/rs/mailboxes",
		url.Values{"size": []string{"200"}, "offset": []string{"0"}})
	require.NoError(t, err)
	assert.True(t, result.OK())

	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "mailsync-test", got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get("X-Api-Signature"))
	assert.Equal(t, "200", got.URL.Query().Get("size"))
	assert.Equal(t, true, result.Body["ok"])
}

func TestPostSendsFormBody(t *testing.T) {
	var contentType string
	var form url.Values
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		fmt.Fprint(w, `{}`)
	})

	_, err := c.Post(context.Background(), "/p", url.Values{"password": []string{"secret"}})
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "secret", form.Get("password"))
}

func TestCallRetriesAfterRequestLimit(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"unauthorizedFault": {"message": "Exceeded request limits"}}`)
			return
		}
		fmt.Fprint(w, `{}`)
	})
	// Do not actually sleep five seconds in tests.
	c.limiter = NewRateLimiter(0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	// The retry backoff outlives the context, so the call reports the
	// cancellation instead of silently dropping the request.
	_, err := c.Get(ctx, "/p", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestResultStatusHelpers(t *testing.T) {
	assert.True(t, (&Result{StatusCode: 200}).OK())
	assert.False(t, (&Result{StatusCode: 404}).OK())
	assert.True(t, (&Result{StatusCode: 404}).NotFound())

	recoverable := &Result{
		StatusCode: 404,
		Body: Document{
			"itemNotFoundFault": map[string]any{
				"additionalData": map[string]any{"isRecoverable": true},
			},
		},
	}
	assert.True(t, recoverable.Recoverable())
	assert.False(t, (&Result{StatusCode: 404, Body: Document{}}).Recoverable())

	limited := &Result{
		StatusCode: 403,
		Body: Document{
			"unauthorizedFault": map[string]any{"message": "Exceeded request limits"},
		},
	}
	assert.True(t, limited.rateLimited())
	assert.False(t, (&Result{StatusCode: 403, Body: Document{}}).rateLimited())
}

func TestPageOf(t *testing.T) {
	page, err := PageOf(Document{
		"offset": float64(0),
		"size":   float64(50),
		"total":  float64(120),
	})
	require.NoError(t, err)
	assert.Equal(t, Page{Offset: 0, Size: 50, Total: 120}, page)

	_, err = PageOf(Document{"offset": float64(0)})
	assert.Error(t, err)
}

func TestPageLast(t *testing.T) {
	tests := []struct {
		page Page
		last bool
	}{
		{Page{Offset: 0, Size: 50, Total: 120}, false},
		{Page{Offset: 50, Size: 50, Total: 120}, false},
		{Page{Offset: 100, Size: 50, Total: 120}, true},
		{Page{Offset: 0, Size: 50, Total: 50}, false},
		{Page{Offset: 50, Size: 50, Total: 50}, true},
		{Page{Offset: 0, Size: 50, Total: 0}, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.last, tt.page.Last(), "page %+v", tt.page)
	}
}

func TestPageQueries(t *testing.T) {
	query := PageQuery(0, 200)
	assert.Equal(t, "0", query.Get("offset"))
	assert.Equal(t, "200", query.Get("size"))

	next := Page{Offset: 0, Size: 50}.Next()
	assert.Equal(t, "50", next.Get("offset"))
	assert.Equal(t, "50", next.Get("size"))
}
