package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultAuthBaseURL    = "https://identitytoolkit.googleapis.com/v1"
	documentsURLTemplate  = "https://firestore.googleapis.com/v1/projects/%s/databases/(default)/documents"
	defaultRequestTimeout = 15 * time.Second
	defaultLowStock       = 5
	defaultLogLevel       = "warn"
	defaultStateFileName  = "state.db"
	defaultStateDirName   = "gophershop"
	fallbackStateFileName = ".gophershop.db"
)

// Config holds runtime settings for the storefront CLI.
//
// Fields:
//   - ProjectID: document store project; derives DocumentsBaseURL when that is empty.
//   - APIKey: identity provider web API key.
//   - DocumentsBaseURL / AuthBaseURL: REST roots, overridable for emulators and tests.
//   - StatePath: SQLite file holding the session, favorites and cart; ":memory:" keeps nothing.
//   - RequestTimeout: bound for every single remote request.
//   - LowStockThreshold: products with less stock are flagged in the back-office.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ProjectID         string `validate:"required_without=DocumentsBaseURL"`
	APIKey            string
	DocumentsBaseURL  string        `validate:"omitempty,url"`
	AuthBaseURL       string        `validate:"required,url"`
	StatePath         string        `validate:"required"`
	RequestTimeout    time.Duration `validate:"gt=0"`
	LowStockThreshold int64         `validate:"gte=0"`
	LogLevel          string        `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AuthBaseURL = defaultAuthBaseURL
	c.StatePath = DefaultStatePath()
	c.RequestTimeout = defaultRequestTimeout
	c.LowStockThreshold = defaultLowStock
	c.LogLevel = defaultLogLevel
}

// DefaultStatePath is state.db under the user's config directory, or a dot
// file in the working directory when there is none.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return fallbackStateFileName
	}
	return filepath.Join(dir, defaultStateDirName, defaultStateFileName)
}

// DocumentsURL returns DocumentsBaseURL, or the hosted store URL of ProjectID.
func (c *Config) DocumentsURL() string {
	if c.DocumentsBaseURL != "" {
		return c.DocumentsBaseURL
	}
	return fmt.Sprintf(documentsURLTemplate, c.ProjectID)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %s", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
