package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Encrypt   EncryptConfig   `mapstructure:"encrypt"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ChatConfig selects the inference backend for the relay. When UseGpuPool is
// set the relay picks an available host from the gpus table; otherwise every
// request goes to the configured upstream.
type ChatConfig struct {
	UpstreamURL    string `mapstructure:"upstream_url"`
	UpstreamAPIKey string `mapstructure:"upstream_api_key"`
	Model          string `mapstructure:"model"`
	UseGpuPool     bool   `mapstructure:"use_gpu_pool"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`

	// CostPer1KTokens prices the usage ledger; zero disables cost tracking.
	CostPer1KTokens float64 `mapstructure:"cost_per_1k_tokens"`
}

type AssistantConfig struct {
	DefaultPrompt string   `mapstructure:"default_prompt"`
	ReservedNames []string `mapstructure:"reserved_names"`
}

type RateLimitConfig struct {
	AuthMaxAttempts int `mapstructure:"auth_max_attempts"`
	AuthWindowMins  int `mapstructure:"auth_window_mins"`
}

type EncryptConfig struct {
	AESKey string `mapstructure:"aes_key"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Chat.TimeoutSeconds <= 0 {
		c.Chat.TimeoutSeconds = 30
	}
	if c.RateLimit.AuthMaxAttempts <= 0 {
		c.RateLimit.AuthMaxAttempts = 10
	}
	if c.RateLimit.AuthWindowMins <= 0 {
		c.RateLimit.AuthWindowMins = 15
	}
	if len(c.Assistant.ReservedNames) == 0 {
		c.Assistant.ReservedNames = []string{"playground"}
	}
	if c.Assistant.DefaultPrompt == "" {
		c.Assistant.DefaultPrompt = "You are a helpful assistant."
	}
}
