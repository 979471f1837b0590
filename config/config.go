package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// AppConfig holds file and environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via the config file or the environment.
type AppConfig struct {
	AppPort            string   `env:"APP_PORT"`
	JWTSecret          string   `env:"JWT_SECRET"`
	TokenTTLHours      int      `env:"TOKEN_TTL_HOURS"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE"`
	AllowedOrigins     []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	// Gin framework configuration
	GinMode string `env:"GIN_MODE"`
	GinPath string `env:"GIN_PATH"`
	// Database: mysql (default), postgres or sqlite
	DBDriver    string `env:"DB_DRIVER"`
	DatabaseURI string `env:"DATABASE_URI"`
	DBHost      string `env:"DB_HOST"`
	DBPort      string `env:"DB_PORT"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME"`
	SQLitePath  string `env:"SQLITE_PATH"`
	// Redis for caching and token revocation; empty host disables it
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     int    `env:"REDIS_PORT"`
	RedisDB       int    `env:"REDIS_DB"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	// Logging configuration
	LogLevel      string `env:"LOG_LEVEL"`
	LogPath       string `env:"LOG_PATH"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS"`
	LogCompress   bool   `env:"LOG_COMPRESS"`
	// Uploads
	UploadDir       string `env:"UPLOAD_DIR"`
	UploadURLPrefix string `env:"UPLOAD_URL_PREFIX"`
	MaxUploadMB     int    `env:"MAX_UPLOAD_MB"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
	// Upload store: local (default) or s3
	StorageDriver   string `env:"STORAGE_DRIVER"`
	S3Region        string `env:"S3_REGION"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	// Tracing; empty endpoint disables it
	OTelEndpoint    string `env:"OTEL_ENDPOINT"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME"`
	// Site information served to the public pages
	SiteName        string `env:"SITE_NAME"`
	SiteDescription string `env:"SITE_DESCRIPTION"`
	ContactEmail    string `env:"CONTACT_EMAIL"`
	ContactPhone    string `env:"CONTACT_PHONE"`
	ContactAddress  string `env:"CONTACT_ADDRESS"`
}

// fileConfig mirrors the grouped layout of config/config.json.
type fileConfig struct {
	App struct {
		AppPort            string   `json:"AppPort"`
		JWTSecret          string   `json:"JWTSecret"`
		TokenTTLHours      int      `json:"TokenTTLHours"`
		RateLimitPerMinute int      `json:"RateLimitPerMinute"`
		AllowedOrigins     []string `json:"AllowedOrigins"`
		GinMode            string   `json:"GinMode"`
		GinPath            string   `json:"GinPath"`
	} `json:"app"`
	Database struct {
		Driver      string `json:"Driver"`
		DatabaseURI string `json:"DatabaseURI"`
		DBHost      string `json:"DBHost"`
		DBPort      string `json:"DBPort"`
		DBUser      string `json:"DBUser"`
		DBPassword  string `json:"DBPassword"`
		DBName      string `json:"DBName"`
		SQLitePath  string `json:"SQLitePath"`
	} `json:"database"`
	Redis struct {
		RedisHost     string `json:"RedisHost"`
		RedisPort     int    `json:"RedisPort"`
		RedisDB       int    `json:"RedisDB"`
		RedisPassword string `json:"RedisPassword"`
	} `json:"redis"`
	Log struct {
		Level      string `json:"Level"`
		Path       string `json:"Path"`
		MaxSizeMB  int    `json:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays"`
		Compress   bool   `json:"Compress"`
	} `json:"log"`
	Upload struct {
		Dir           string `json:"Dir"`
		URLPrefix     string `json:"URLPrefix"`
		MaxSizeMB     int    `json:"MaxSizeMB"`
		PublicBaseURL string `json:"PublicBaseURL"`
	} `json:"upload"`
	Storage struct {
		Driver        string `json:"Driver"`
		Region        string `json:"Region"`
		Bucket        string `json:"Bucket"`
		Endpoint      string `json:"Endpoint"`
		AccessKey     string `json:"AccessKey"`
		SecretKey     string `json:"SecretKey"`
		PublicBaseURL string `json:"PublicBaseURL"`
	} `json:"storage"`
	Telemetry struct {
		Endpoint    string `json:"Endpoint"`
		ServiceName string `json:"ServiceName"`
	} `json:"telemetry"`
	Site struct {
		Name           string `json:"Name"`
		Description    string `json:"Description"`
		ContactEmail   string `json:"ContactEmail"`
		ContactPhone   string `json:"ContactPhone"`
		ContactAddress string `json:"ContactAddress"`
	} `json:"site"`
}

// ErrMissingJWTSecret is returned when no signing secret was configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in config or environment")

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	c, err := LoadFrom(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatal(err)
	}

	Set(c)
	return cfg
}

// LoadFrom builds a configuration with precedence: JSON file -> defaults -> environment overrides.
// A missing file is not an error.
func LoadFrom(path string) (AppConfig, error) {
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		return c, err
	}

	applyDefaults(&c)

	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}

	if c.JWTSecret == "" {
		return c, ErrMissingJWTSecret
	}
	return c, nil
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Set installs c as the active configuration.
func Set(c AppConfig) {
	cfg = c
	loaded = true
}

// loadJSONConfig reads the grouped JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var fc fileConfig
	if err := json.NewDecoder(f).Decode(&fc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	out.AppPort = fc.App.AppPort
	out.JWTSecret = fc.App.JWTSecret
	out.TokenTTLHours = fc.App.TokenTTLHours
	out.RateLimitPerMinute = fc.App.RateLimitPerMinute
	out.AllowedOrigins = splitAndTrim(fc.App.AllowedOrigins)
	out.GinMode = fc.App.GinMode
	out.GinPath = fc.App.GinPath

	out.DBDriver = strings.ToLower(fc.Database.Driver)
	out.DatabaseURI = fc.Database.DatabaseURI
	out.DBHost = fc.Database.DBHost
	out.DBPort = fc.Database.DBPort
	out.DBUser = fc.Database.DBUser
	out.DBPassword = fc.Database.DBPassword
	out.DBName = fc.Database.DBName
	out.SQLitePath = fc.Database.SQLitePath

	out.RedisHost = fc.Redis.RedisHost
	out.RedisPort = fc.Redis.RedisPort
	out.RedisDB = fc.Redis.RedisDB
	out.RedisPassword = fc.Redis.RedisPassword

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress

	out.UploadDir = fc.Upload.Dir
	out.UploadURLPrefix = fc.Upload.URLPrefix
	out.MaxUploadMB = fc.Upload.MaxSizeMB
	out.PublicBaseURL = fc.Upload.PublicBaseURL

	out.StorageDriver = strings.ToLower(fc.Storage.Driver)
	out.S3Region = fc.Storage.Region
	out.S3Bucket = fc.Storage.Bucket
	out.S3Endpoint = fc.Storage.Endpoint
	out.S3AccessKey = fc.Storage.AccessKey
	out.S3SecretKey = fc.Storage.SecretKey
	out.S3PublicBaseURL = fc.Storage.PublicBaseURL

	out.OTelEndpoint = fc.Telemetry.Endpoint
	out.OTelServiceName = fc.Telemetry.ServiceName

	out.SiteName = fc.Site.Name
	out.SiteDescription = fc.Site.Description
	out.ContactEmail = fc.Site.ContactEmail
	out.ContactPhone = fc.Site.ContactPhone
	out.ContactAddress = fc.Site.ContactAddress
	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 24
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "labsite"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/labsite.db"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join("public", "uploads")
	}
	if c.UploadURLPrefix == "" {
		c.UploadURLPrefix = "/uploads"
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = 50
	}
	if c.StorageDriver == "" {
		c.StorageDriver = "local"
	}
	if c.S3Region == "" {
		c.S3Region = "us-east-1"
	}
	if c.OTelServiceName == "" {
		c.OTelServiceName = "labsite"
	}
	if c.SiteName == "" {
		c.SiteName = "旱区果树研究实验室"
	}
}

func splitAndTrim(raw []string) []string {
	items := []string{}
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
