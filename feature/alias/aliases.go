package alias

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mailsync/core/rackspace"
)

const pageSize = 200

// List retrieves every alias under the domain. The index endpoint
// inlines the address of single-member aliases; multi-member aliases
// need a follow-up fetch for their full membership.
func List(ctx context.Context, api *rackspace.Client, domain string, log *zap.Logger) (map[string]*Alias, error) {
	paths := api.Paths(domain)
	aliases := make(map[string]*Alias)

	offset := 0
	for {
		page, err := api.Get(ctx, paths.Aliases(), rackspace.PageQuery(offset, pageSize))
		if err != nil {
			return nil, err
		}
		if !page.OK() {
			return nil, fmt.Errorf("listing aliases for %s: status %d", domain, page.StatusCode)
		}

		items, _ := page.Body["aliases"].([]any)
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := entry["name"].(string)
			if name == "" {
				continue
			}

			members, _ := entry["numberOfMembers"].(float64)
			doc := entry
			if members > 1 {
				detail, err := api.Get(ctx, paths.Alias(name), nil)
				if err != nil {
					return nil, err
				}
				if !detail.OK() {
					log.Warn("alias vanished during listing", zap.String("alias", name))
					continue
				}
				doc = detail.Body
			}

			a, err := FromProvider(name, doc)
			if err != nil {
				log.Warn("skipping alias with malformed provider data",
					zap.String("alias", name), zap.Error(err))
				continue
			}
			aliases[a.Key()] = a
		}

		info, err := rackspace.PageOf(page.Body)
		if err != nil {
			return nil, fmt.Errorf("listing aliases for %s: %w", domain, err)
		}
		if info.Last() {
			break
		}
		offset = info.Offset + info.Size
	}

	return aliases, nil
}

// Fetch retrieves a single alias with full membership. Returns nil
// without error when the alias does not exist.
func Fetch(ctx context.Context, api *rackspace.Client, domain, name string) (*Alias, error) {
	result, err := api.Get(ctx, api.Paths(domain).Alias(name), nil)
	if err != nil {
		return nil, err
	}
	if result.NotFound() {
		return nil, nil
	}
	if !result.OK() {
		return nil, fmt.Errorf("fetching alias %s@%s: status %d", name, domain, result.StatusCode)
	}
	return FromProvider(name, result.Body)
}
