package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type APIConf struct {
	BaseURL string `mapstructure:"base_url"`
}

type SessionConf struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type CheckoutConf struct {
	ScriptURL string `mapstructure:"script_url"`
	Key       string `mapstructure:"key"`
	Currency  string `mapstructure:"currency"`
	Name      string `mapstructure:"name"`
}

type AuthConf struct {
	CountryCode string `mapstructure:"country_code"`
}

type CallbackConf struct {
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
}

type LogConf struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type Config struct {
	API      APIConf      `mapstructure:"api"`
	Session  SessionConf  `mapstructure:"session"`
	Redis    RedisConf    `mapstructure:"redis"`
	Checkout CheckoutConf `mapstructure:"checkout"`
	Auth     AuthConf     `mapstructure:"auth"`
	Callback CallbackConf `mapstructure:"callback"`
	Log      LogConf      `mapstructure:"log"`
}

// Session backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Load reads configuration from PAYGATE_* environment variables, an optional
// .env file in the working directory, and an optional YAML file at path.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PAYGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://payment-gateway-7a7f.onrender.com")
	v.SetDefault("session.backend", BackendFile)
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "paygate:")
	v.SetDefault("checkout.script_url", "https://checkout.razorpay.com/v1/checkout.js")
	v.SetDefault("checkout.key", "")
	v.SetDefault("checkout.currency", "INR")
	v.SetDefault("checkout.name", "PayGate")
	v.SetDefault("auth.country_code", "+91")
	v.SetDefault("callback.url", "")
	v.SetDefault("callback.secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "paygate", "session.json")
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case BackendFile, BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must be set")
	}
	return nil
}
