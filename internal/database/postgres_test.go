package database

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetConfig_Defaults(t *testing.T) {
	viper.Reset()
	cfg := GetConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "snapedit", cfg.Name)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestGetConfig_Overrides(t *testing.T) {
	viper.Reset()
	viper.Set("database.host", "db.internal")
	viper.Set("database.name", "ledger")
	defer viper.Reset()

	cfg := GetConfig()
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "host=db.internal port=5432 user=postgres password=password dbname=ledger sslmode=disable", cfg.DSN())
}
