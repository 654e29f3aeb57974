package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	AllowOrigins []string `toml:"allow_origins"`
	LogLevel     string   `toml:"log_level"`
	MaxUploadMB  int      `toml:"max_upload_mb"`
	LogFile      string   `toml:"log_file"`

	// catalog store
	DBPath string `toml:"db_path"`

	// reconciliation defaults, overridable per request
	DefaultUserID     int64   `toml:"default_user_id"`
	CategoryThreshold float64 `toml:"category_threshold"`
	BrandThreshold    float64 `toml:"brand_threshold"`
}

// Load builds the config from environment variables; if CONFIG_FILE points
// at a TOML file its values override the environment.
func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	userID, _ := strconv.ParseInt(getenv("DEFAULT_USER_ID", "39"), 10, 64)
	catThr, _ := strconv.ParseFloat(getenv("CATEGORY_THRESHOLD", "85"), 64)
	brandThr, _ := strconv.ParseFloat(getenv("BRAND_THRESHOLD", "85"), 64)
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")

	cfg := Config{
		Host:              getenv("HOST", "127.0.0.1"),
		Port:              port,
		AllowOrigins:      origins,
		LogLevel:          getenv("LOG_LEVEL", "info"),
		MaxUploadMB:       mb,
		LogFile:           getenv("LOG_FILE", "logs/catalog-matcher.log"),
		DBPath:            getenv("DB_PATH", "catalog.db"),
		DefaultUserID:     userID,
		CategoryThreshold: catThr,
		BrandThreshold:    brandThr,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = toml.Unmarshal(b, &cfg)
		}
	}
	return cfg
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
