package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/flagx"
	"github.com/dmitrijs2005/rentkeeper/internal/timex"
)

type jsonS3Config struct {
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// fields leave the current value untouched.
type JsonConfig struct {
	APIBaseURL        string         `json:"api_base_url"`
	APIPrefix         string         `json:"api_prefix"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	InactivityWindow  timex.Duration `json:"inactivity_window"`
	DatabasePath      string         `json:"database_path"`
	LogLevel          string         `json:"log_level"`
	CheckoutMode      string         `json:"checkout_mode"`
	CheckoutAddr      string         `json:"checkout_addr"`
	CheckoutPublicURL string         `json:"checkout_public_url"`
	CheckoutKey       string         `json:"checkout_key"`
	CheckoutTimeout   timex.Duration `json:"checkout_timeout"`
	MaxDocumentSize   int64          `json:"max_document_size"`
	DownloadDir       string         `json:"download_dir"`
	ExportDir         string         `json:"export_dir"`
	ExportSink        string         `json:"export_sink"`
	S3                jsonS3Config   `json:"s3"`
}

// parseJson overlays Config with values loaded from a JSON file whose path
// comes from -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.APIPrefix, jc.APIPrefix)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.InactivityWindow, jc.InactivityWindow)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.CheckoutMode, jc.CheckoutMode)
	setString(&cfg.CheckoutAddr, jc.CheckoutAddr)
	setString(&cfg.CheckoutPublicURL, jc.CheckoutPublicURL)
	setString(&cfg.CheckoutKey, jc.CheckoutKey)
	setDuration(&cfg.CheckoutTimeout, jc.CheckoutTimeout)
	if jc.MaxDocumentSize > 0 {
		cfg.MaxDocumentSize = jc.MaxDocumentSize
	}
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.ExportSink, jc.ExportSink)

	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setString(&cfg.S3.Prefix, jc.S3.Prefix)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
