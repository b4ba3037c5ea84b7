package config

import (
	"time"

	"github.com/spf13/viper"
)

// AuthConfig holds session, credential hashing and throttling settings
type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	MaxFailedLogins int
	LockoutWindow   time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	Argon2          Argon2Params
}

// Argon2Params configures argon2id password hashing
type Argon2Params struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength uint32
}

// LoadAuthConfig reads jwt.*, argon2.*, auth.* and ratelimit.* keys
func LoadAuthConfig() *AuthConfig {
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
	viper.SetDefault("auth.max_failed_logins", 5)
	viper.SetDefault("auth.lockout_window", 15*time.Minute)
	viper.SetDefault("ratelimit.rps", 5)
	viper.SetDefault("ratelimit.burst", 10)

	return &AuthConfig{
		JWTSecret:       viper.GetString("jwt.secret_key"),
		TokenTTL:        time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour,
		MaxFailedLogins: viper.GetInt("auth.max_failed_logins"),
		LockoutWindow:   viper.GetDuration("auth.lockout_window"),
		RateLimitRPS:    viper.GetFloat64("ratelimit.rps"),
		RateLimitBurst:  viper.GetInt("ratelimit.burst"),
		Argon2: Argon2Params{
			Time:       viper.GetUint32("argon2.time"),
			Memory:     viper.GetUint32("argon2.memory"),
			Threads:    uint8(viper.GetUint("argon2.threads")),
			KeyLength:  viper.GetUint32("argon2.key_length"),
			SaltLength: viper.GetUint32("argon2.salt_length"),
		},
	}
}
