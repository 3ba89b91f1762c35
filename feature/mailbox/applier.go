package mailbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
)

// Applier executes planned mailbox actions against the provider.
type Applier struct {
	api    *rackspace.Client
	domain string
	log    *zap.Logger
}

func NewApplier(api *rackspace.Client, domain string, log *zap.Logger) *Applier {
	return &Applier{api: api, domain: domain, log: log}
}

// Create adds the account. When the provider reports the identity as
// recently deleted and recoverable, the creation is retried as a
// recovery so the old mailbox contents survive.
func (ap *Applier) Create(ctx context.Context, act reconcile.Action) error {
	account, ok := act.Desired.(*Account)
	if !ok {
		return fmt.Errorf("create %s: unexpected resource %T", act.Key, act.Desired)
	}

	payload := act.Payload
	recoverable, err := Probe(ctx, ap.api, ap.domain, account.Name())
	if err != nil {
		return err
	}
	if recoverable {
		ap.log.Info("recovering recently deleted account", zap.String("account", act.Key))
		account.MarkRecoverable()
		payload, err = account.CreatePayload()
		if err != nil {
			return err
		}
	}

	path := ap.api.Paths(ap.domain).Mailbox(account.Name())
	ap.log.Info("creating account", zap.String("path", path))

	result, err := ap.api.Post(ctx, path, rackspace.FormValues(payload))
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("creating account %s: status %d", act.Key, result.StatusCode)
	}
	return nil
}

// Update overwrites the differing account fields.
func (ap *Applier) Update(ctx context.Context, act reconcile.Action) error {
	account, ok := act.Desired.(*Account)
	if !ok {
		return fmt.Errorf("update %s: unexpected resource %T", act.Key, act.Desired)
	}
	change, ok := act.Change.(FieldChange)
	if !ok || len(change) == 0 {
		return fmt.Errorf("update %s: no field changes", act.Key)
	}

	path := ap.api.Paths(ap.domain).Mailbox(account.Name())
	ap.log.Info("updating account", zap.String("path", path), zap.Any("fields", change))

	result, err := ap.api.Put(ctx, path, rackspace.FormValues(change))
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("updating account %s: status %d", act.Key, result.StatusCode)
	}
	return nil
}

// Delete removes the account from the provider.
func (ap *Applier) Delete(ctx context.Context, act reconcile.Action) error {
	account, ok := act.Observed.(*Account)
	if !ok {
		return fmt.Errorf("delete %s: unexpected resource %T", act.Key, act.Observed)
	}

	path := ap.api.Paths(ap.domain).Mailbox(account.Name())
	ap.log.Info("deleting account", zap.String("path", path))

	result, err := ap.api.Delete(ctx, path)
	if err != nil {
		return err
	}
	if !result.OK() && !result.NotFound() {
		return fmt.Errorf("deleting account %s: status %d", act.Key, result.StatusCode)
	}
	return nil
}

// Rename changes an account's local-part in place, keeping the mailbox
// contents. The provider treats the name as a writable field on update.
func (ap *Applier) Rename(ctx context.Context, oldName, newName string) error {
	path := ap.api.Paths(ap.domain).Mailbox(oldName)
	ap.log.Info("renaming account",
		zap.String("path", path), zap.String("to", newName))

	result, err := ap.api.Put(ctx, path, rackspace.FormValues(map[string]any{"name": newName}))
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("renaming account %s to %s: status %d", oldName, newName, result.StatusCode)
	}
	return nil
}
