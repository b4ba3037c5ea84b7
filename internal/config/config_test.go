package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLedgerConfig_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := LoadLedgerConfig()
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.True(t, cfg.AdminBalance.Equal(decimal.NewFromInt(9999)))
	assert.True(t, cfg.WelcomeBonus.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.GenerationCost.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 4, cfg.MinPasswordLength)
}

func TestLoadLedgerConfig_Overrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("ledger.generation_cost", "0.25")
	viper.Set("ledger.deposit_address", "TQ9...xyz")

	cfg, err := LoadLedgerConfig()
	require.NoError(t, err)
	assert.True(t, cfg.GenerationCost.Equal(decimal.RequireFromString("0.25")))
	assert.Equal(t, "TQ9...xyz", cfg.DepositAddress)
}

func TestLoadLedgerConfig_Invalid(t *testing.T) {
	t.Run("non numeric bonus", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		viper.Set("ledger.welcome_bonus", "ten")

		_, err := LoadLedgerConfig()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ledger.welcome_bonus")
	})

	t.Run("zero cost", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		viper.Set("ledger.generation_cost", "0")

		_, err := LoadLedgerConfig()
		assert.Error(t, err)
	})
}

func TestLoadAuthConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.expiry_hours", 2)

	cfg := LoadAuthConfig()
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.MaxFailedLogins)
	assert.Equal(t, 15*time.Minute, cfg.LockoutWindow)
	assert.Equal(t, uint32(64*1024), cfg.Argon2.Memory)
	assert.Equal(t, uint8(4), cfg.Argon2.Threads)
}

func TestLoadLedgerConfig_MaxAmount(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()

		cfg, err := LoadLedgerConfig()
		require.NoError(t, err)
		assert.True(t, cfg.MaxAmount.Equal(decimal.NewFromInt(1_000_000)))
	})

	for _, v := range []string{"0", "-5", "1e40", "abc"} {
		t.Run("rejects "+v, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			viper.Set("ledger.max_amount", v)

			_, err := LoadLedgerConfig()
			assert.Error(t, err)
		})
	}

	t.Run("cost above max", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		viper.Set("ledger.max_amount", "5")
		viper.Set("ledger.generation_cost", "6")

		_, err := LoadLedgerConfig()
		assert.Error(t, err)
	})
}
