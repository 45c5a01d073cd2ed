package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable the console reads.
const EnvPrefix = "RENTKEEPER_"

// loadDotenv is a test seam for godotenv.Load.
var loadDotenv = godotenv.Load

// parseEnv loads .env (when present) into the process environment and then
// overlays every RENTKEEPER_* variable that is set. Malformed values panic,
// like malformed JSON or flags.
func parseEnv(cfg *Config) {
	if err := loadDotenv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.APIPrefix = getEnv("API_PREFIX", cfg.APIPrefix)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.InactivityWindow = getEnvDuration("INACTIVITY_WINDOW", cfg.InactivityWindow)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.CheckoutMode = getEnv("CHECKOUT_MODE", cfg.CheckoutMode)
	cfg.CheckoutAddr = getEnv("CHECKOUT_ADDR", cfg.CheckoutAddr)
	cfg.CheckoutPublicURL = getEnv("CHECKOUT_PUBLIC_URL", cfg.CheckoutPublicURL)
	cfg.CheckoutKey = getEnv("CHECKOUT_KEY", cfg.CheckoutKey)
	cfg.CheckoutTimeout = getEnvDuration("CHECKOUT_TIMEOUT", cfg.CheckoutTimeout)

	if v, ok := lookupEnv("MAX_DOCUMENT_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		cfg.MaxDocumentSize = n
	}
	cfg.DownloadDir = getEnv("DOWNLOAD_DIR", cfg.DownloadDir)

	cfg.ExportDir = getEnv("EXPORT_DIR", cfg.ExportDir)
	cfg.ExportSink = getEnv("EXPORT_SINK", cfg.ExportSink)
	cfg.S3.Region = getEnv("S3_REGION", cfg.S3.Region)
	cfg.S3.Endpoint = getEnv("S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.AccessKey = getEnv("S3_ACCESS_KEY", cfg.S3.AccessKey)
	cfg.S3.SecretKey = getEnv("S3_SECRET_KEY", cfg.S3.SecretKey)
	cfg.S3.Bucket = getEnv("S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.Prefix = getEnv("S3_PREFIX", cfg.S3.Prefix)
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

func getEnv(key, defaultValue string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}
