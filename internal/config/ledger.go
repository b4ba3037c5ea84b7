package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// LedgerConfig holds the account and credit rules
type LedgerConfig struct {
	AdminUsername     string
	AdminPassword     string
	AdminBalance      decimal.Decimal
	WelcomeBonus      decimal.Decimal
	GenerationCost    decimal.Decimal
	MaxAmount         decimal.Decimal
	MinPasswordLength int
	DepositAddress    string
	DepositNetwork    string
}

// DefaultLedgerConfig returns the built-in rules.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		AdminUsername:     "admin",
		AdminPassword:     "admin",
		AdminBalance:      decimal.NewFromInt(9999),
		WelcomeBonus:      decimal.NewFromInt(10),
		GenerationCost:    decimal.NewFromInt(1),
		MaxAmount:         decimal.NewFromInt(1_000_000),
		MinPasswordLength: 4,
		DepositAddress:    "0x1234...AbCdEfG...5678",
		DepositNetwork:    "USDT (ERC-20)",
	}
}

// LoadLedgerConfig reads ledger.* keys over the defaults
func LoadLedgerConfig() (*LedgerConfig, error) {
	def := DefaultLedgerConfig()
	viper.SetDefault("ledger.admin_username", def.AdminUsername)
	viper.SetDefault("ledger.admin_password", def.AdminPassword)
	viper.SetDefault("ledger.admin_balance", def.AdminBalance.String())
	viper.SetDefault("ledger.welcome_bonus", def.WelcomeBonus.String())
	viper.SetDefault("ledger.generation_cost", def.GenerationCost.String())
	viper.SetDefault("ledger.max_amount", def.MaxAmount.String())
	viper.SetDefault("ledger.min_password_length", def.MinPasswordLength)
	viper.SetDefault("ledger.deposit_address", def.DepositAddress)
	viper.SetDefault("ledger.deposit_network", def.DepositNetwork)

	cfg := &LedgerConfig{
		AdminUsername:     viper.GetString("ledger.admin_username"),
		AdminPassword:     viper.GetString("ledger.admin_password"),
		MinPasswordLength: viper.GetInt("ledger.min_password_length"),
		DepositAddress:    viper.GetString("ledger.deposit_address"),
		DepositNetwork:    viper.GetString("ledger.deposit_network"),
	}

	var err error
	if cfg.AdminBalance, err = getDecimal("ledger.admin_balance"); err != nil {
		return nil, err
	}
	if cfg.WelcomeBonus, err = getDecimal("ledger.welcome_bonus"); err != nil {
		return nil, err
	}
	if cfg.GenerationCost, err = getDecimal("ledger.generation_cost"); err != nil {
		return nil, err
	}
	if cfg.MaxAmount, err = getDecimal("ledger.max_amount"); err != nil {
		return nil, err
	}

	if cfg.AdminUsername == "" {
		return nil, fmt.Errorf("ledger.admin_username must not be empty")
	}
	if !cfg.WelcomeBonus.IsPositive() {
		return nil, fmt.Errorf("ledger.welcome_bonus must be positive, got %s", cfg.WelcomeBonus)
	}
	if !cfg.GenerationCost.IsPositive() {
		return nil, fmt.Errorf("ledger.generation_cost must be positive, got %s", cfg.GenerationCost)
	}
	if !cfg.MaxAmount.IsPositive() || cfg.MaxAmount.Exponent() > 18 || cfg.MaxAmount.Exponent() < -18 {
		return nil, fmt.Errorf("ledger.max_amount must be positive with an exponent within 18, got %q", viper.GetString("ledger.max_amount"))
	}
	if cfg.GenerationCost.GreaterThan(cfg.MaxAmount) {
		return nil, fmt.Errorf("ledger.generation_cost %s exceeds ledger.max_amount %s", cfg.GenerationCost, cfg.MaxAmount)
	}
	return cfg, nil
}

func getDecimal(key string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(viper.GetString(key))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
