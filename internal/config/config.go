// Load envs from .env
// Load YAML config
// Provide default values
// Validate config

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Pool    PoolConfig    `yaml:"pool"`
	Wanted  WantedConfig  `yaml:"wanted"`
	Saramin SaraminConfig `yaml:"saramin"`
	Enrich  EnrichConfig  `yaml:"enrich"`
	//Paths
	OutputDir string `yaml:"output_dir" validate:"required"`
	CachePath string `yaml:"cache_path" validate:"required"`
	//Optional integrations, disabled when empty
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
	DatabaseURL    string `yaml:"database_url"`
	RedisAddr      string `yaml:"redis_addr"`
}

type BrowserConfig struct {
	Headless          bool          `yaml:"headless"`
	UserAgent         string        `yaml:"user_agent" validate:"required"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" validate:"gt=0"`
	// WaitTimeout bounds every selector wait so a stalled page cannot hang a worker.
	WaitTimeout   time.Duration `yaml:"wait_timeout" validate:"gt=0"`
	CookiesPath   string        `yaml:"cookies_path"`
	ScreenshotDir string        `yaml:"screenshot_dir"`
}

// DelayRange is a randomized pause drawn uniformly from [Min, Max].
type DelayRange struct {
	Min time.Duration `yaml:"min" validate:"gte=0"`
	Max time.Duration `yaml:"max" validate:"gtefield=Min"`
}

type PoolConfig struct {
	// Delay is applied between a tab's release and its reuse.
	Delay DelayRange `yaml:"delay"`
}

// SourceConfig is the per-source configuration surface shared by all listing sites.
type SourceConfig struct {
	Enabled bool `yaml:"enabled"`
	// Pages is the page/scroll budget. 0 means unbounded.
	Pages           int           `yaml:"pages" validate:"gte=0"`
	DetailWorkers   int           `yaml:"detail_workers" validate:"gte=1,lte=32"`
	MinYears        int           `yaml:"min_years" validate:"gte=0"`
	MaxYears        int           `yaml:"max_years" validate:"gtefield=MinYears"`
	ExcludeKeywords []string      `yaml:"exclude_keywords"`
	Settle          time.Duration `yaml:"settle" validate:"gte=0"`
	Output          string        `yaml:"output" validate:"required"`
}

type WantedConfig struct {
	SourceConfig `yaml:",inline"`
	Category     string `yaml:"category" validate:"oneof=development"`
	Subcategory  string `yaml:"subcategory" validate:"oneof=frontend backend web android ios"`
}

type SaraminConfig struct {
	SourceConfig `yaml:",inline"`
	Category     string `yaml:"category" validate:"oneof=frontend backend"`
}

type EnrichConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Workers  int           `yaml:"workers" validate:"gte=1,lte=32"`
	Delay    DelayRange    `yaml:"delay"`
	Settle   time.Duration `yaml:"settle" validate:"gte=0"`
	Cache    string        `yaml:"cache" validate:"oneof=memory redis"`
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

// Default returns the configuration used when a key is missing from the YAML file.
func Default() Config {
	return Config{
		Browser: BrowserConfig{
			Headless:          true,
			UserAgent:         DefaultUserAgent,
			NavigationTimeout: 30 * time.Second,
			WaitTimeout:       15 * time.Second,
			ScreenshotDir:     "logs/screenshots",
		},
		Pool: PoolConfig{Delay: DelayRange{Min: time.Second, Max: 2 * time.Second}},
		Wanted: WantedConfig{
			SourceConfig: SourceConfig{
				Enabled:       true,
				Pages:         2,
				DetailWorkers: 8,
				MaxYears:      5,
				Settle:        2 * time.Second,
				Output:        "wanted.csv",
			},
			Category:    "development",
			Subcategory: "frontend",
		},
		Saramin: SaraminConfig{
			SourceConfig: SourceConfig{
				Enabled:       true,
				Pages:         8,
				DetailWorkers: 1,
				MaxYears:      5,
				Settle:        500 * time.Millisecond,
				Output:        "saramin.csv",
			},
			Category: "frontend",
		},
		Enrich: EnrichConfig{
			Enabled:  true,
			Workers:  1,
			Delay:    DelayRange{Min: time.Second, Max: 2 * time.Second},
			Settle:   2 * time.Second,
			Cache:    "memory",
			CacheTTL: 7 * 24 * time.Hour,
		},
		OutputDir: "output",
		CachePath: ".cache",
	}
}

// Load reads the YAML file at path over the defaults, applies env overrides and validates.
// A missing file is not an error: the defaults are used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		//fall back to defaults
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and the cross-field rules validator tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Enrich.Cache == "redis" && cfg.RedisAddr == "" {
		return fmt.Errorf("invalid config: enrich.cache=redis requires redis_addr")
	}
	if (cfg.TelegramToken == "") != (cfg.TelegramChatID == 0) {
		return fmt.Errorf("invalid config: telegram needs both token and chat id")
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func applyEnv(cfg *Config) error {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}
	if headless := os.Getenv("CRAWLER_HEADLESS"); headless != "" {
		v, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("invalid CRAWLER_HEADLESS: %w", err)
		}
		cfg.Browser.Headless = v
	}
	return nil
}
