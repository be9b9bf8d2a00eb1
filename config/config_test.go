package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validYAML = `
telegram:
  token: "123:abc"
payments:
  api_key: "cb_key"
  webhook_secret: "whsec"
posting:
  channel: "tokenvestors"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Core.Telegram.Token)
	assert.Equal(t, ":3000", cfg.Payments.Listen)
	assert.Equal(t, "@tokenvestors", cfg.Posting.Channel, "bare channel names get the @ prefix")
	assert.Equal(t, 50.0, cfg.Pricing.DefaultUSD)
	assert.Equal(t, "longpoll", cfg.Core.Telegram.RunMode)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML+`
pricing:
  default_usd: 75
`))
	require.NoError(t, err)
	assert.Equal(t, 75.0, cfg.Pricing.DefaultUSD)
}

func TestLoadRequiresPaymentCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
posting:
  channel: "@c"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payments.api_key")
}

func TestLoadRequiresChannel(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
payments:
  api_key: "k"
  webhook_secret: "s"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posting.channel")
}

func TestLoadNegativeGroupIDChannelUntouched(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
payments:
  api_key: "k"
  webhook_secret: "s"
posting:
  channel: "-1001234567890"
`))
	require.NoError(t, err)
	assert.Equal(t, "-1001234567890", cfg.Posting.Channel, "numeric chat ids keep their form")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
