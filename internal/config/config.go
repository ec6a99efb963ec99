package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const defaultJWTSecret = "dev-secret-change-me"

// Config describes all runtime settings for the bot.
//
// Loaded once in main, validated, then passed down explicitly.
type Config struct {
	Env string `envconfig:"APP_ENV" default:"dev"` // dev|stage|prod

	Log struct {
		Level  string `envconfig:"LEVEL" default:"info"`
		Format string `envconfig:"FORMAT" default:"json"` // console|json
	} `envconfig:"LOG"`

	HTTP struct {
		Addr              string        `envconfig:"ADDR" default:":8080"`
		ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
		ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"0s"`
		WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"0s"`
		IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
		ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	} `envconfig:"HTTP"`

	Redis struct {
		Enabled    bool          `envconfig:"ENABLED" default:"false"`
		Addr       string        `envconfig:"ADDR" default:"localhost:6379"`
		DB         int           `envconfig:"DB" default:"0"`
		SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	} `envconfig:"REDIS"`

	Auth struct {
		Secret   string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
		TokenTTL time.Duration `envconfig:"JWT_TTL" default:"24h"`
	} `envconfig:"AUTH"`

	Game struct {
		MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"3"`
		Cooldown    time.Duration `envconfig:"COOLDOWN" default:"30s"`
	} `envconfig:"GAME"`

	AI struct {
		BaseURL     string        `envconfig:"BASE_URL" default:"https://api.openai.com/v1"`
		Model       string        `envconfig:"MODEL" default:"gpt-4o-mini"`
		APIKey      string        `envconfig:"API_KEY"`
		Timeout     time.Duration `envconfig:"TIMEOUT" default:"0s"` // 0 => no timeout
		Temperature float32       `envconfig:"TEMPERATURE" default:"0.7"`
	} `envconfig:"AI"`

	Reward struct {
		URL     string        `envconfig:"URL" default:"http://localhost:3000"`
		Symbol  string        `envconfig:"SYMBOL" default:"DOGE"`
		Amount  string        `envconfig:"AMOUNT" default:"10"`
		Timeout time.Duration `envconfig:"TIMEOUT" default:"60s"`
	} `envconfig:"REWARD"`

	Metrics struct {
		Enabled bool `envconfig:"ENABLED" default:"true"`
	} `envconfig:"METRICS"`
}

func LoadFromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP_ADDR is empty")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is empty")
	}
	// an expired key would release the player mid-cooldown
	if c.Redis.Enabled && c.Redis.SessionTTL < c.Game.Cooldown {
		return fmt.Errorf("REDIS_SESSION_TTL (%s) must be at least GAME_COOLDOWN (%s)", c.Redis.SessionTTL, c.Game.Cooldown)
	}
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.Env != "dev" && c.Auth.Secret == defaultJWTSecret {
		return fmt.Errorf("refuse to run with default JWT_SECRET in %s", c.Env)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want console|json)", c.Log.Format)
	}
	if c.Game.MaxAttempts <= 0 {
		return fmt.Errorf("GAME_MAX_ATTEMPTS must be > 0, got %d", c.Game.MaxAttempts)
	}
	if c.Game.Cooldown <= 0 {
		return fmt.Errorf("GAME_COOLDOWN must be > 0, got %s", c.Game.Cooldown)
	}
	if c.AI.APIKey == "" {
		return errors.New("AI_API_KEY is empty")
	}
	if c.AI.Model == "" {
		return errors.New("AI_MODEL is empty")
	}
	if c.Reward.URL == "" {
		return errors.New("REWARD_URL is empty")
	}
	if c.Reward.Symbol == "" {
		return errors.New("REWARD_SYMBOL is empty")
	}
	if !validAmount(c.Reward.Amount) {
		return fmt.Errorf("REWARD_AMOUNT must be a positive decimal number, got %q", c.Reward.Amount)
	}
	return nil
}

// validAmount accepts what the token sender can receive as a JSON number.
func validAmount(amount string) bool {
	if !json.Valid([]byte(amount)) {
		return false
	}
	var n json.Number
	if err := json.Unmarshal([]byte(amount), &n); err != nil || n.String() != amount {
		return false
	}
	v, err := strconv.ParseFloat(n.String(), 64)
	return err == nil && v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
