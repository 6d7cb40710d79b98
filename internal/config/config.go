package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Data source kinds accepted by DATA_SOURCE.
const (
	SourceHTTP  = "http"
	SourceFile  = "file"
	SourceMongo = "mongo"
)

// Config holds runtime configuration shared by the server and the CLI.
type Config struct {
	Addr            string        `yaml:"httpAddr"`
	DataSource      string        `yaml:"dataSource"`
	DataSourceURL   string        `yaml:"dataSourceURL"`
	DataDir         string        `yaml:"dataDir"`
	MongoURI        string        `yaml:"mongoURI"`
	MongoDatabase   string        `yaml:"mongoDB"`
	StoreCollection string        `yaml:"storeCollection"`
	Timeout         time.Duration `yaml:"mongoConnectTimeout"`
	FetchTimeout    time.Duration `yaml:"fetchTimeout"`
	PrefsPath       string        `yaml:"prefsPath"`
	DefaultLat      *float64      `yaml:"defaultLat"`
	DefaultLng      *float64      `yaml:"defaultLng"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Addr:            ":8080",
		DataSource:      SourceFile,
		DataDir:         "data",
		MongoURI:        "mongodb://mongo:27017",
		MongoDatabase:   "offer-finder",
		StoreCollection: "stores",
		Timeout:         10 * time.Second,
		FetchTimeout:    15 * time.Second,
		PrefsPath:       "offerfinder.db",
		AllowedOrigins:  []string{"*"},
	}
}

// Load starts from Defaults, applies the YAML file at path when path is not
// empty, then applies environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.overlayEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() error {
	c.Addr = envOrDefault("HTTP_ADDR", c.Addr)
	c.DataSource = strings.ToLower(envOrDefault("DATA_SOURCE", c.DataSource))
	c.DataSourceURL = envOrDefault("DATA_SOURCE_URL", c.DataSourceURL)
	c.DataDir = envOrDefault("DATA_DIR", c.DataDir)
	c.MongoURI = envOrDefault("MONGO_URI", c.MongoURI)
	c.MongoDatabase = envOrDefault("MONGO_DB", c.MongoDatabase)
	c.StoreCollection = envOrDefault("STORE_COLLECTION", c.StoreCollection)
	c.PrefsPath = envOrDefault("PREFS_PATH", c.PrefsPath)
	c.AllowedOrigins = parseList("API_ALLOWED_ORIGINS", c.AllowedOrigins)

	var err error
	if c.Timeout, err = parseDuration("MONGO_CONNECT_TIMEOUT", c.Timeout); err != nil {
		return err
	}
	if c.FetchTimeout, err = parseDuration("FETCH_TIMEOUT", c.FetchTimeout); err != nil {
		return err
	}
	if c.DefaultLat, err = parseFloat("DEFAULT_LAT", c.DefaultLat); err != nil {
		return err
	}
	if c.DefaultLng, err = parseFloat("DEFAULT_LNG", c.DefaultLng); err != nil {
		return err
	}
	return nil
}

// Validate checks that the selected data source is fully configured.
func (c Config) Validate() error {
	switch c.DataSource {
	case SourceHTTP:
		if strings.TrimSpace(c.DataSourceURL) == "" {
			return errors.New("DATA_SOURCE_URL must be set for the http data source")
		}
	case SourceFile:
		if strings.TrimSpace(c.DataDir) == "" {
			return errors.New("DATA_DIR must be set for the file data source")
		}
	case SourceMongo:
		if strings.TrimSpace(c.MongoURI) == "" || strings.TrimSpace(c.MongoDatabase) == "" {
			return errors.New("MONGO_URI and MONGO_DB must be set for the mongo data source")
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q (want http, file or mongo)", c.DataSource)
	}
	if (c.DefaultLat == nil) != (c.DefaultLng == nil) {
		return errors.New("DEFAULT_LAT and DEFAULT_LNG must be set together")
	}
	return nil
}

// HasDefaultLocation reports whether a fixed user position is configured.
func (c Config) HasDefaultLocation() bool {
	return c.DefaultLat != nil && c.DefaultLng != nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func parseFloat(key string, fallback *float64) (*float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &parsed, nil
}
