// Package config loads the bot's full configuration: the reusable core
// settings plus the promo-specific payment, posting, and pricing sections.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/tokenvestors/promobot/core/config"
	coredatabase "github.com/tokenvestors/promobot/core/database"
)

// PaymentsConfig holds Coinbase Commerce credentials and the listen address
// of the sidecar webhook server.
type PaymentsConfig struct {
	APIKey        string `yaml:"api_key" envconfig:"COINBASE_API_KEY"`
	WebhookSecret string `yaml:"webhook_secret" envconfig:"COINBASE_WEBHOOK_SECRET"`
	Listen        string `yaml:"listen" envconfig:"PAYMENTS_LISTEN"`
	// PublicBaseURL is where users land after paying or cancelling.
	PublicBaseURL string `yaml:"public_base_url" envconfig:"PUBLIC_BASE_URL"`
}

// PostingConfig names the announcement destinations.
type PostingConfig struct {
	// Channel is the primary destination, e.g. "@tokenvestors".
	Channel string `yaml:"channel" envconfig:"POST_CHANNEL"`
	// AltGroupID is an optional secondary group; 0 disables it.
	AltGroupID int64 `yaml:"alt_group_id" envconfig:"POST_ALT_GROUP_ID"`
}

// PricingConfig seeds the price board.
type PricingConfig struct {
	DefaultUSD float64 `yaml:"default_usd" envconfig:"PRICE_USD"`
}

// Config aggregates everything the promo bot needs at startup.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Payments PaymentsConfig      `yaml:"payments"`
	Posting  PostingConfig       `yaml:"posting"`
	Pricing  PricingConfig       `yaml:"pricing"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// Load reads configuration from a YAML file, applies environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Payments.APIKey) == "" {
		return fmt.Errorf("payments.api_key is required")
	}
	if strings.TrimSpace(cfg.Payments.WebhookSecret) == "" {
		return fmt.Errorf("payments.webhook_secret is required")
	}
	if strings.TrimSpace(cfg.Payments.Listen) == "" {
		cfg.Payments.Listen = ":3000"
	}

	channel := strings.TrimSpace(cfg.Posting.Channel)
	if channel == "" {
		return fmt.Errorf("posting.channel is required")
	}
	if !strings.HasPrefix(channel, "@") && !strings.HasPrefix(channel, "-") {
		channel = "@" + channel
	}
	cfg.Posting.Channel = channel

	if cfg.Pricing.DefaultUSD == 0 {
		cfg.Pricing.DefaultUSD = 50
	}
	if cfg.Pricing.DefaultUSD < 0 {
		return fmt.Errorf("pricing.default_usd must be positive")
	}
	return nil
}
