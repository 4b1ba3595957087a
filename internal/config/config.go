package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`

	ScraperBaseURL    string `mapstructure:"SCRAPER_BASE_URL"`
	ScraperMaxPages   int    `mapstructure:"SCRAPER_MAX_PAGES"`
	ScraperMaxCount   int    `mapstructure:"SCRAPER_MAX_COUNT"`
	ScraperTimeoutSec int    `mapstructure:"SCRAPER_TIMEOUT_SEC"`
	FetchTimeoutSec   int    `mapstructure:"FETCH_TIMEOUT_SEC"`
	DetailBudgetSec   int    `mapstructure:"DETAIL_BUDGET_SEC"`
	DetailDelayMinMs  int    `mapstructure:"DETAIL_DELAY_MIN_MS"`
	DetailDelayMaxMs  int    `mapstructure:"DETAIL_DELAY_MAX_MS"`

	CrawlPermits      int `mapstructure:"CRAWL_PERMITS"`
	ResultCacheTTLMin int `mapstructure:"RESULT_CACHE_TTL_MIN"`

	SearchRatePerMin int `mapstructure:"SEARCH_RATE_LIMIT"`
	SearchCacheSize  int `mapstructure:"SEARCH_CACHE_SIZE"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables in production.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SCRAPER_BASE_URL", "https://www.lamudi.com.ph")
	viper.SetDefault("SCRAPER_MAX_PAGES", 10)
	viper.SetDefault("SCRAPER_MAX_COUNT", 100)
	viper.SetDefault("SCRAPER_TIMEOUT_SEC", 600)
	viper.SetDefault("FETCH_TIMEOUT_SEC", 15)
	viper.SetDefault("DETAIL_BUDGET_SEC", 480)
	viper.SetDefault("DETAIL_DELAY_MIN_MS", 300)
	viper.SetDefault("DETAIL_DELAY_MAX_MS", 800)
	viper.SetDefault("CRAWL_PERMITS", 3)
	viper.SetDefault("RESULT_CACHE_TTL_MIN", 30)
	viper.SetDefault("SEARCH_RATE_LIMIT", 30)
	viper.SetDefault("SEARCH_CACHE_SIZE", 256)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) CrawlTimeout() time.Duration {
	return time.Duration(c.ScraperTimeoutSec) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

func (c *Config) DetailBudget() time.Duration {
	return time.Duration(c.DetailBudgetSec) * time.Second
}

func (c *Config) ResultCacheTTL() time.Duration {
	return time.Duration(c.ResultCacheTTLMin) * time.Minute
}
