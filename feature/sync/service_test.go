package sync

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailsync/core/config"
	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
	"mailsync/core/state"
)

func TestSyncDomainFetchesExchangeSpamPath(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			paths = append(paths, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"itemNotFoundFault": {"message": "not found"}}`)
	}))
	t.Cleanup(server.Close)

	api := rackspace.NewClient(rackspace.Config{
		APIURL:     server.URL,
		UserKey:    "user",
		SecretKey:  "secret",
		CustomerID: "12345",
		UserAgent:  "mailsync-test",
	}, zap.NewNop())

	svc := NewService(api, state.NewFileStore(t.TempDir()),
		reconcile.Options{DryRun: true}, zap.NewNop())

	doc := &config.DomainDocument{
		Accounts: map[string]map[string]any{
			"bob": {
				"password": "secret",
				"exchange": true,
				"spam": map[string]any{
					"settings": map[string]any{"filterLevel": "on"},
				},
			},
		},
	}

	require.NoError(t, svc.SyncDomain(context.Background(), "example.com", doc))
	assert.Contains(t, paths,
		"/v1/customers/12345/domains/example.com/ex/mailboxes/bob/spam/settings")
}
