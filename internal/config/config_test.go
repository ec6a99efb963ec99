package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, 3, cfg.Game.MaxAttempts)
	require.Equal(t, 30*time.Second, cfg.Game.Cooldown)
	require.Equal(t, "DOGE", cfg.Reward.Symbol)
	require.Equal(t, "10", cfg.Reward.Amount)
	require.False(t, cfg.Redis.Enabled)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("GAME_COOLDOWN", "45s")
	t.Setenv("REWARD_SYMBOL", "PEPE")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, cfg.Game.Cooldown)
	require.Equal(t, "PEPE", cfg.Reward.Symbol)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Env = "dev"
		c.Log.Format = "json"
		c.HTTP.Addr = ":8080"
		c.Auth.Secret = defaultJWTSecret
		c.Game.MaxAttempts = 3
		c.Game.Cooldown = 30 * time.Second
		c.AI.APIKey = "sk-test"
		c.AI.Model = "gpt-4o-mini"
		c.Reward.URL = "http://localhost:3000"
		c.Reward.Symbol = "DOGE"
		c.Reward.Amount = "10"
		return c
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "valid", mutate: func(c *Config) {}, ok: true},
		{name: "default secret in prod", mutate: func(c *Config) { c.Env = "prod" }, ok: false},
		{name: "custom secret in prod", mutate: func(c *Config) { c.Env = "prod"; c.Auth.Secret = "s3cr3t" }, ok: true},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, ok: false},
		{name: "zero attempts", mutate: func(c *Config) { c.Game.MaxAttempts = 0 }, ok: false},
		{name: "zero cooldown", mutate: func(c *Config) { c.Game.Cooldown = 0 }, ok: false},
		{name: "missing api key", mutate: func(c *Config) { c.AI.APIKey = "" }, ok: false},
		{name: "negative amount", mutate: func(c *Config) { c.Reward.Amount = "-1" }, ok: false},
		{name: "non numeric amount", mutate: func(c *Config) { c.Reward.Amount = "ten" }, ok: false},
		{name: "decimal amount", mutate: func(c *Config) { c.Reward.Amount = "2.5" }, ok: true},
		{name: "NaN amount", mutate: func(c *Config) { c.Reward.Amount = "NaN" }, ok: false},
		{name: "Inf amount", mutate: func(c *Config) { c.Reward.Amount = "Inf" }, ok: false},
		{name: "hex float amount", mutate: func(c *Config) { c.Reward.Amount = "0x1p4" }, ok: false},
		{name: "overflowing amount", mutate: func(c *Config) { c.Reward.Amount = "1e400" }, ok: false},
		{name: "padded amount", mutate: func(c *Config) { c.Reward.Amount = " 10" }, ok: false},
		{name: "quoted amount", mutate: func(c *Config) { c.Reward.Amount = `"10"` }, ok: false},
		{name: "redis ttl shorter than cooldown", mutate: func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = "localhost:6379"
			c.Redis.SessionTTL = 10 * time.Second
		}, ok: false},
		{name: "redis ttl covers cooldown", mutate: func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = "localhost:6379"
			c.Redis.SessionTTL = 30 * time.Second
		}, ok: true},
		{name: "redis enabled without addr", mutate: func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestValidAmount_MarshalsAsJSONNumber(t *testing.T) {
	for _, amount := range []string{"10", "0.5", "1e3", "NaN", "Inf", "0x1p4", " 10"} {
		if !validAmount(amount) {
			continue
		}
		_, err := json.Marshal(json.Number(amount))
		require.NoError(t, err, amount)
	}
}
