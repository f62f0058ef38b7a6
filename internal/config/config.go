// Package config loads tool configuration from a YAML file and HUBSYNC_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds portal credentials and migration tunables.
type Config struct {
	// ProductionToken reads from the source portal; SandboxToken writes
	// to the destination portal. The two are never interchangeable.
	ProductionToken string
	SandboxToken    string

	// BaseURL overrides the API host, used only for testing against a
	// local fake portal. Empty means the public API.
	BaseURL string

	ContactLimit int
	BatchSize    int
	MaxRetries   int

	// RateLimitDelay is the fixed pause between record writes.
	// IndexingDelay is the pause after a batch so destination search
	// indexing catches up before associations are created.
	RateLimitDelay time.Duration
	IndexingDelay  time.Duration

	SkipContactsWithoutEmail bool

	// Fuzzy company matching knobs. The defaults (0.7, 10) come from
	// observed behavior, not a derivation; they are configurable rather
	// than fixed for that reason.
	SimilarityThreshold float64
	MinFuzzyNameLen     int

	ReportsDir string
	LogLevel   string
}

// Load reads configuration from the given file (or the default search path
// when path is empty) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("hubsync")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("HUBSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("migration.contact_limit", 50)
	v.SetDefault("migration.batch_size", 10)
	v.SetDefault("migration.max_retries", 3)
	v.SetDefault("migration.rate_limit_delay", "200ms")
	v.SetDefault("migration.indexing_delay", "3s")
	v.SetDefault("migration.skip_contacts_without_email", false)
	v.SetDefault("matching.similarity_threshold", 0.7)
	v.SetDefault("matching.min_fuzzy_name_len", 10)
	v.SetDefault("output.reports_dir", "reports")
	v.SetDefault("logging.level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No file is fine when tokens come from the environment.
	}

	cfg := &Config{
		ProductionToken:          v.GetString("hubspot.production_token"),
		SandboxToken:             v.GetString("hubspot.sandbox_token"),
		BaseURL:                  v.GetString("hubspot.base_url"),
		ContactLimit:             v.GetInt("migration.contact_limit"),
		BatchSize:                v.GetInt("migration.batch_size"),
		MaxRetries:               v.GetInt("migration.max_retries"),
		RateLimitDelay:           v.GetDuration("migration.rate_limit_delay"),
		IndexingDelay:            v.GetDuration("migration.indexing_delay"),
		SkipContactsWithoutEmail: v.GetBool("migration.skip_contacts_without_email"),
		SimilarityThreshold:      v.GetFloat64("matching.similarity_threshold"),
		MinFuzzyNameLen:          v.GetInt("matching.min_fuzzy_name_len"),
		ReportsDir:               v.GetString("output.reports_dir"),
		LogLevel:                 v.GetString("logging.level"),
	}
	return cfg, nil
}

// Validate checks that both tokens are present and look like real private
// app tokens rather than placeholders.
func (c *Config) Validate() error {
	if err := ValidateToken(c.ProductionToken); err != nil {
		return fmt.Errorf("production token: %w", err)
	}
	if err := ValidateToken(c.SandboxToken); err != nil {
		return fmt.Errorf("sandbox token: %w", err)
	}
	return nil
}

var placeholderIndicators = []string{"your-", "your_", "example-", "replace-", "token-here", "api-key"}

// ValidateToken performs basic shape checks on a private app token.
func ValidateToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	lower := strings.ToLower(token)
	for _, indicator := range placeholderIndicators {
		if strings.Contains(lower, indicator) {
			return errors.New("token looks like a placeholder; set your real private app token")
		}
	}
	if len(token) < 20 {
		return errors.New("token is too short to be valid")
	}
	if !strings.HasPrefix(token, "pat-") {
		return errors.New(`token should start with "pat-" (private app token)`)
	}
	return nil
}
