// Package config loads runtime configuration for the storefront CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-p string   document store project id
//	-k string   identity provider API key
//	-d string   documents base URL (derived from -p when empty)
//	-u string   identity provider base URL
//	-s string   local state file (":memory:" for none)
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "project_id": "my-shop",
//	  "api_key": "AIza...",
//	  "state_path": "/home/ana/.config/gophershop/state.db",
//	  "request_timeout": "10s",
//	  "low_stock_threshold": 5,
//	  "log_level": "info"
//	}
//
// This package does not read environment variables.
package config
