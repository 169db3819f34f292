package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Catalog CatalogConfig `json:"catalog"`
	UI      UIConfig      `json:"ui"`
	Cache   CacheConfig   `json:"cache"`
	Logging LoggingConfig `json:"logging"`
	Azure   AzureConfig   `json:"azure"`
	Mocks   MockConfig    `json:"mocks"`
}

type CatalogConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
	Retries int           `json:"retries"`
}

type UIConfig struct {
	PageSize      int    `json:"page_size"`
	NarrowWidth   int    `json:"narrow_width"`   // css pixels, inclusive
	NarrowColumns int    `json:"narrow_columns"` // terminal columns, inclusive
	PublicURL     string `json:"public_url"`     // origin used in sitemap links
}

type CacheConfig struct {
	Backend   string        `json:"backend"` // "memory", "file", "redis" or "blob"
	Dir       string        `json:"dir"`
	TTL       time.Duration `json:"ttl"`
	RedisAddr string        `json:"redis_addr"`
	Container string        `json:"container"`
}

type LoggingConfig struct {
	Level        string `json:"level"`
	OTLPEndpoint string `json:"otlp_endpoint"`
	File         string `json:"file"`
	ServiceName  string `json:"service_name"`
	BlobSink     bool   `json:"blob_sink"` // mirror logs to an append blob in Azure.LogContainer
}

// AzureConfig is shared by the blob cache and the blob log sink.
type AzureConfig struct {
	AccountName  string `json:"account_name"`
	AccountKey   string `json:"-"`
	LogContainer string `json:"log_container"`
}

type MockConfig struct {
	Enable bool `json:"enable"`
}

func Load() (*Config, error) {
	// a missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	timeout, err := getDurationOrDefault("MARKETPLACE_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := getDurationOrDefault("MARKETPLACE_CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	retries, err := getIntOrDefault("MARKETPLACE_API_RETRIES", 2)
	if err != nil {
		return nil, err
	}
	pageSize, err := getIntOrDefault("MARKETPLACE_PAGE_SIZE", 10)
	if err != nil {
		return nil, err
	}
	narrowWidth, err := getIntOrDefault("MARKETPLACE_NARROW_WIDTH", 1024)
	if err != nil {
		return nil, err
	}
	narrowColumns, err := getIntOrDefault("MARKETPLACE_NARROW_COLUMNS", 100)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Catalog: CatalogConfig{
			BaseURL: getEnvOrDefault("MARKETPLACE_API_BASE_URL", "https://dummyjson.com"),
			Timeout: timeout,
			Retries: retries,
		},
		UI: UIConfig{
			PageSize:      pageSize,
			NarrowWidth:   narrowWidth,
			NarrowColumns: narrowColumns,
			PublicURL:     strings.TrimRight(getEnvOrDefault("MARKETPLACE_PUBLIC_URL", "http://localhost:8080"), "/"),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(getEnvOrDefault("MARKETPLACE_CACHE", "memory")),
			Dir:       getEnvOrDefault("MARKETPLACE_CACHE_DIR", "cache"),
			TTL:       ttl,
			RedisAddr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Container: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "marketplace"),
		},
		Logging: LoggingConfig{
			Level:        getEnvOrDefault("MARKETPLACE_LOG_LEVEL", "info"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			File:         os.Getenv("MARKETPLACE_LOG_FILE"),
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "marketplace"),
			BlobSink:     strings.EqualFold(os.Getenv("MARKETPLACE_LOG_BLOB"), "true"),
		},
		Azure: AzureConfig{
			AccountName:  os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
			AccountKey:   os.Getenv("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY"),
			LogContainer: getEnvOrDefault("AZURE_LOG_CONTAINER", "logs"),
		},
		Mocks: MockConfig{
			Enable: strings.EqualFold(os.Getenv("MARKETPLACE_MOCKS"), "true"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.UI.PageSize)
	}
	if c.Catalog.Retries < 0 {
		return fmt.Errorf("api retries must not be negative, got %d", c.Catalog.Retries)
	}
	switch c.Cache.Backend {
	case "memory", "file", "redis", "blob":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if (c.Cache.Backend == "blob" || c.Logging.BlobSink) && c.Azure.AccountName == "" {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT_NAME is required for blob storage")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
