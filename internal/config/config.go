// backend-go/internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig

	provider *Provider
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadBytes int64
}

// StorageConfig holds the optional storage settings. Connection credentials
// are resolved through Provider by the storage package so that a missing key
// fails in exactly one place.
type StorageConfig struct {
	Driver            string
	Bucket            string
	PublicURL         string
	SkipBucketCheck   bool
	PresignTTLSeconds int
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and the process environment into a Config.
// It is called once from main; the result is passed to constructors
// explicitly.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)
	switch cfg.Storage.Driver {
	case "minio", "s3":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "3100")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("STORAGE_DRIVER", "minio")
	v.SetDefault("STORAGE_BUCKET", "default")
	v.SetDefault("STORAGE_SKIP_BUCKET_CHECK", false)
	v.SetDefault("STORAGE_PRESIGN_TTL_SECONDS", 3600)
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "reactive_resume")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			MaxUploadBytes: v.GetInt64("SERVER_MAX_UPLOAD_BYTES"),
		},
		Storage: StorageConfig{
			Driver:            strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			Bucket:            v.GetString("STORAGE_BUCKET"),
			PublicURL:         v.GetString("STORAGE_URL"),
			SkipBucketCheck:   v.GetBool("STORAGE_SKIP_BUCKET_CHECK"),
			PresignTTLSeconds: v.GetInt("STORAGE_PRESIGN_TTL_SECONDS"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		provider: &Provider{v: v},
	}
}

// Provider exposes the raw key lookups backing this Config.
func (c *Config) Provider() *Provider {
	return c.provider
}
