package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"qqmusicmcp/internal/domain"
)

// Config is the immutable process configuration. It is loaded once at
// startup and passed by value into every component; nothing mutates it
// afterwards, so concurrent reads need no synchronization.
type Config struct {
	// Cookie is the optional session credential for VIP-tier content.
	Cookie string

	RequestTimeout   time.Duration
	BatchConcurrency int

	MetricsListenAddress string
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	bindEnv(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timeoutSeconds", domain.DefaultRequestTimeoutSeconds)
	v.SetDefault("batchConcurrency", domain.DefaultBatchConcurrency)
	v.SetDefault("metrics.listenAddress", domain.DefaultMetricsListenAddress)
}

func bindEnv(v *viper.Viper) {
	// Env always wins over file values.
	_ = v.BindEnv("cookie", "QQMUSIC_COOKIE")
	_ = v.BindEnv("timeoutSeconds", "QQMUSIC_TIMEOUT_SECONDS")
	_ = v.BindEnv("batchConcurrency", "QQMUSIC_BATCH_CONCURRENCY")
	_ = v.BindEnv("metrics.listenAddress", "QQMUSIC_METRICS_ADDR")
}

// Load reads configuration from the optional YAML file at path and the
// process environment. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	v := newConfigViper()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg := Config{
		Cookie:               strings.TrimSpace(v.GetString("cookie")),
		RequestTimeout:       time.Duration(v.GetInt("timeoutSeconds")) * time.Second,
		BatchConcurrency:     v.GetInt("batchConcurrency"),
		MetricsListenAddress: v.GetString("metrics.listenAddress"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("timeoutSeconds must be > 0")
	}
	if c.BatchConcurrency <= 0 {
		return fmt.Errorf("batchConcurrency must be > 0")
	}
	return nil
}

// HasCredential reports whether a session cookie is configured.
func (c Config) HasCredential() bool {
	return c.Cookie != ""
}
