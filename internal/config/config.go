package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // /metrics and /healthz
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty => in-memory sessions
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	BoltPath string `yaml:"bolt_path"` // empty => in-memory intents
}

type PaymentConfig struct {
	YooKassa struct {
		ShopID    string `yaml:"shop_id"`
		SecretKey string `yaml:"secret_key"`
		ReturnURL string `yaml:"return_url"`
	} `yaml:"yookassa"`
	IntentTTL time.Duration `yaml:"intent_ttl"`
}

type VPNConfig struct {
	Binary     string        `yaml:"binary"`   // pivpn-compatible CLI
	OvpnDir    string        `yaml:"ovpn_dir"` // where generated .ovpn files land
	GenTimeout time.Duration `yaml:"gen_timeout"`
}

type ContentConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	LinksPath       string `yaml:"links_path"` // download-link catalog JSON
}

type DeliveryConfig struct {
	RevealThreshold int           `yaml:"reveal_threshold"` // above this, skip progressive reveal
	MaxChunk        int           `yaml:"max_chunk"`
	Retries         int           `yaml:"retries"`
	Backoff         time.Duration `yaml:"backoff"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Payment  PaymentConfig  `yaml:"payment"`
	VPN      VPNConfig      `yaml:"vpn"`
	Content  ContentConfig  `yaml:"content"`
	Delivery DeliveryConfig `yaml:"delivery"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, layers .env / environment overrides
// on top for secrets and paths, and applies defaults. Only a missing
// bot token or an unreadable file is fatal.
func LoadConfig(path string, dev bool) (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment overrides (same variable names the ops scripts export).
	overrideStr(&cfg.Bot.Token, "TELEGRAM_API_TOKEN")
	overrideStr(&cfg.Payment.YooKassa.ShopID, "YOOKASSA_SHOP_ID")
	overrideStr(&cfg.Payment.YooKassa.SecretKey, "YOOKASSA_SECRET_KEY")
	overrideStr(&cfg.VPN.OvpnDir, "OVPN_FILE_PATH")
	overrideStr(&cfg.Content.LinksPath, "LINKS_PATH")
	overrideStr(&cfg.Redis.URL, "REDIS_URL")

	cfg.applyDefaults()

	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required (config yaml or TELEGRAM_API_TOKEN)")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.Payment.IntentTTL <= 0 {
		cfg.Payment.IntentTTL = time.Hour
	}
	if cfg.VPN.Binary == "" {
		cfg.VPN.Binary = "pivpn"
	}
	if cfg.VPN.OvpnDir == "" {
		cfg.VPN.OvpnDir = "/home/pivpn/ovpns"
	}
	if cfg.VPN.GenTimeout <= 0 {
		cfg.VPN.GenTimeout = 60 * time.Second
	}
	if cfg.Content.DefaultLanguage == "" {
		cfg.Content.DefaultLanguage = "ru"
	}
	if cfg.Delivery.RevealThreshold <= 0 {
		cfg.Delivery.RevealThreshold = 2000
	}
	if cfg.Delivery.MaxChunk <= 0 {
		cfg.Delivery.MaxChunk = 4000
	}
	if cfg.Delivery.Retries <= 0 {
		cfg.Delivery.Retries = 2
	}
	if cfg.Delivery.Backoff <= 0 {
		cfg.Delivery.Backoff = 2 * time.Second
	}
}

func overrideStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
