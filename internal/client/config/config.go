package config

import (
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/validation"
)

const (
	CheckoutWeb    = "web"
	CheckoutManual = "manual"

	SinkLocal = "local"
	SinkS3    = "s3"
)

// S3Config locates the bucket used when ExportSink is "s3".
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// Config holds runtime settings for the rentkeeper console.
//
// Durations are time.Duration values; MaxDocumentSize is in bytes.
type Config struct {
	APIBaseURL     string `label:"API base URL" validate:"required,url"`
	APIPrefix      string
	RequestTimeout time.Duration

	// InactivityWindow logs the user out after this long without input.
	InactivityWindow time.Duration
	DatabasePath     string `label:"Database path" validate:"required"`
	LogLevel         string `label:"Log level" validate:"oneof=debug info warn warning error"`

	CheckoutMode      string `label:"Checkout mode" validate:"oneof=web manual"`
	CheckoutAddr      string
	CheckoutPublicURL string
	CheckoutKey       string
	CheckoutTimeout   time.Duration

	MaxDocumentSize int64
	DownloadDir     string

	ExportDir  string
	ExportSink string `label:"Export sink" validate:"oneof=local s3"`
	S3         S3Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.APIPrefix = "/api"
	c.RequestTimeout = 15 * time.Second
	c.InactivityWindow = 15 * time.Minute
	c.DatabasePath = "rentkeeper.db"
	c.LogLevel = "info"
	c.CheckoutMode = CheckoutWeb
	c.CheckoutAddr = "127.0.0.1:8089"
	c.CheckoutTimeout = 10 * time.Minute
	c.MaxDocumentSize = 2 << 20
	c.DownloadDir = "downloads"
	c.ExportDir = "exports"
	c.ExportSink = SinkLocal
	c.S3.Region = "us-east-1"
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment (and a .env file) and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
