package mailbox

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mailsync/core/rackspace"
)

const pageSize = 200

// List retrieves every mailbox account under the domain. The index
// endpoint only returns summaries, so each account is fetched
// individually to obtain full field data. Accounts whose data fails
// schema coercion are logged and skipped rather than failing the run.
func List(ctx context.Context, api *rackspace.Client, domain string, log *zap.Logger) (map[string]*Account, error) {
	paths := api.Paths(domain)
	accounts := make(map[string]*Account)

	offset := 0
	for {
		page, err := api.Get(ctx, paths.Mailboxes(), rackspace.PageQuery(offset, pageSize))
		if err != nil {
			return nil, err
		}
		if !page.OK() {
			return nil, fmt.Errorf("listing mailboxes for %s: status %d", domain, page.StatusCode)
		}

		items, _ := page.Body["rsMailboxes"].([]any)
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := entry["name"].(string)
			if name == "" {
				continue
			}

			account, err := Fetch(ctx, api, domain, name)
			if err != nil {
				var typeErr *SchemaTypeError
				if errors.As(err, &typeErr) {
					log.Warn("skipping account with malformed provider data",
						zap.String("account", name), zap.Error(err))
					continue
				}
				return nil, err
			}
			if account == nil {
				// Deleted between the index call and the detail call.
				log.Warn("account vanished during listing", zap.String("account", name))
				continue
			}
			accounts[account.Key()] = account
		}

		info, err := rackspace.PageOf(page.Body)
		if err != nil {
			return nil, fmt.Errorf("listing mailboxes for %s: %w", domain, err)
		}
		if info.Last() {
			break
		}
		offset = info.Offset + info.Size
	}

	return accounts, nil
}

// Fetch retrieves a single account with full field data. Returns nil
// without error when the account does not exist.
func Fetch(ctx context.Context, api *rackspace.Client, domain, name string) (*Account, error) {
	result, err := api.Get(ctx, api.Paths(domain).Mailbox(name), nil)
	if err != nil {
		return nil, err
	}
	if result.NotFound() {
		return nil, nil
	}
	if !result.OK() {
		return nil, fmt.Errorf("fetching mailbox %s@%s: status %d", name, domain, result.StatusCode)
	}

	account := New(name)
	if err := account.LoadRoot(result.Body); err != nil {
		return nil, err
	}
	return account, nil
}

// Probe checks whether a missing account is recoverable from the
// provider's recently-deleted pool.
func Probe(ctx context.Context, api *rackspace.Client, domain, name string) (recoverable bool, err error) {
	result, err := api.Get(ctx, api.Paths(domain).Mailbox(name), nil)
	if err != nil {
		return false, err
	}
	return result.Recoverable(), nil
}
