package config

import (
	"reflect"
	"strings"

	"mailsync/core/logger"
	"mailsync/core/rackspace"
	"mailsync/core/state"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Rackspace holds configuration for the provider API client.
	Rackspace rackspace.Config `mapstructure:"rackspace"`
	// State holds configuration for the fingerprint store.
	State state.Config `mapstructure:"state"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Sync holds configuration for the sync pipeline.
	Sync SyncConfig `mapstructure:"sync"`
}

// SyncConfig holds configuration for the sync pipeline.
type SyncConfig struct {
	// ConfDir is the directory holding per-domain desired-state documents
	// (<domain>.yml).
	ConfDir string `mapstructure:"conf_dir" default:"conf.d"`
	// TriggerPath is the file whose appearance re-runs the pipeline in
	// watch mode.
	TriggerPath string `mapstructure:"trigger_path" default:"sync-state/trigger"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. RACKSPACE_USER_KEY -> rackspace.user_key)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
