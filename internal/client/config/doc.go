// Package config loads runtime configuration for the rentkeeper console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed RENTKEEPER_, optionally from a .env
//     file in the working directory (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the backend REST API
//	-p string     API path prefix ("/" for none)
//	-w duration   inactivity window, e.g. 15m
//	-d string     path of the local SQLite database
//	-l string     log level (debug, info, warn, error)
//	-m string     checkout mode (web or manual)
//	-k string     listen address of the checkout page
//	-o string     export directory
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "15m" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://rent.example.com",
//	  "api_prefix": "/api",
//	  "request_timeout": "15s",
//	  "inactivity_window": "15m",
//	  "database_path": "rentkeeper.db",
//	  "log_level": "info",
//	  "checkout_mode": "web",
//	  "checkout_addr": "127.0.0.1:8089",
//	  "checkout_key": "rzp_live_xxx",
//	  "export_sink": "s3",
//	  "s3": {"region": "us-east-1", "bucket": "rent-reports"}
//	}
package config
