package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophershop/internal/flagx"
	"github.com/dmitrijs2005/gophershop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the request timeout either
// as a string like "5s" or as integer nanoseconds.
type JsonConfig struct {
	ProjectID         string         `json:"project_id"`
	APIKey            string         `json:"api_key"`
	DocumentsBaseURL  string         `json:"documents_base_url"`
	AuthBaseURL       string         `json:"auth_base_url"`
	StatePath         string         `json:"state_path"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	LowStockThreshold *int64         `json:"low_stock_threshold"`
	LogLevel          string         `json:"log_level"`
}

// parseJson overlays Config with the values present in the JSON file named
// by -c or -config. Keys missing from the file keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigPath(os.Args[1:])
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

	setString(&cfg.ProjectID, jc.ProjectID)
	setString(&cfg.APIKey, jc.APIKey)
	setString(&cfg.DocumentsBaseURL, jc.DocumentsBaseURL)
	setString(&cfg.AuthBaseURL, jc.AuthBaseURL)
	setString(&cfg.StatePath, jc.StatePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LowStockThreshold != nil {
		cfg.LowStockThreshold = *jc.LowStockThreshold
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
