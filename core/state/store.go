// Package state persists per-entity content fingerprints between sync
// runs. A fingerprint records the canonical serialization of an entity
// document at the time it was last successfully applied; matching
// fingerprints let later runs skip all remote calls for that entity.
package state

import "context"

// Store persists fingerprints keyed by entity kind and identity.
type Store interface {
	// Load returns the stored fingerprint for the entity, with false when
	// no record exists (first run for that entity).
	Load(ctx context.Context, kind, key string) (string, bool, error)

	// Save records the fingerprint. Called only after a successful apply.
	Save(ctx context.Context, kind, key, fingerprint string) error

	// Delete removes the fingerprint record, e.g. after the remote entity
	// was deleted.
	Delete(ctx context.Context, kind, key string) error

	// List enumerates all stored fingerprints for a kind, keyed by entity
	// identity.
	List(ctx context.Context, kind string) (map[string]string, error)
}

// Config holds configuration for the fingerprint store.
type Config struct {
	// Backend selects the store implementation ("file" or "object").
	Backend string `mapstructure:"backend" default:"file"`
	// Dir is the state directory for the file backend.
	Dir string `mapstructure:"dir" default:"sync-state"`
	// Endpoint is the object storage endpoint for the object backend.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the object storage access key.
	AccessKey string `mapstructure:"access_key" default:""`
	// SecretKey is the object storage secret key.
	SecretKey string `mapstructure:"secret_key" default:""`
	// UseSSL indicates whether to use TLS for object storage connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the object storage bucket holding fingerprint records.
	Bucket string `mapstructure:"bucket" default:"mailsync-state"`
	// Prefix is prepended to all object keys.
	Prefix string `mapstructure:"prefix" default:"fingerprints"`
}
