package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	SiteBaseURL   string        `yaml:"site_base_url"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	WorkerCount   int           `yaml:"worker_count"`
	SweepSchedule string        `yaml:"sweep_schedule"`
	Storage       StorageConfig `yaml:"storage"`
}

type StorageConfig struct {
	// Bucket selects the S3 backend; when empty, avatars are stored under
	// LocalDir and served from BaseURL.
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	BaseURL  string `yaml:"base_url"`
	LocalDir string `yaml:"local_dir"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 24 * time.Hour

	cfg := &Config{
		Addr:          getEnv("MARKET_ADDR", ":8080"),
		SiteBaseURL:   getEnv("MARKET_SITE_BASE_URL", "http://localhost:8080"),
		JWTSecret:     getEnv("MARKET_JWT_SECRET", "supersecretkey"),
		APITimeout:    apiTimeout,
		DatabasePath:  getEnv("MARKET_DATABASE_PATH", "devmarket.db"),
		TokenDuration: tokenDuration,
		WorkerCount:   2,
		SweepSchedule: getEnv("MARKET_SWEEP_SCHEDULE", "@every 10m"),
		Storage: StorageConfig{
			Bucket:   getEnv("MARKET_S3_BUCKET", ""),
			Region:   getEnv("MARKET_S3_REGION", ""),
			BaseURL:  getEnv("MARKET_STORAGE_BASE_URL", ""),
			LocalDir: getEnv("MARKET_STORAGE_DIR", "uploads"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the config for values that must not reach production.
func (c *Config) Validate() error {
	env := getEnv("MARKET_ENV", "development")

	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.JWTSecret == "" || (c.JWTSecret == "supersecretkey" && env != "development") {
		return fmt.Errorf("jwt_secret must be set to a non-default value in %s", env)
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}
	if c.SweepSchedule == "" {
		return fmt.Errorf("sweep_schedule is required")
	}
	if c.Storage.Bucket != "" && c.Storage.BaseURL == "" {
		return fmt.Errorf("storage.base_url is required when storage.bucket is set")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
