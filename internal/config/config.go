// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/legislative-tracker/internal/aggregation"
	"github.com/jonathan/legislative-tracker/internal/fetch"
)

// EnvBaseURL overrides the web service base URL.
const EnvBaseURL = "CAMARA_API_URL"

// Default values used when neither the config file nor a flag sets them.
const (
	DefaultBaseURL      = fetch.DefaultBaseURL
	DefaultTimeout      = fetch.DefaultTimeout
	DefaultRequestDelay = 2 * time.Second
	DefaultRawDir       = "data/raw"
	DefaultDataDir      = "data/processed"
	DefaultSiteDir      = "docs/data"
	DefaultMaxPublished = aggregation.DefaultLimit
	DefaultResultField  = aggregation.DefaultResultField
)

// Duration is a time.Duration that reads from JSON either as a Go duration
// string ("30s", "1m") or as a number of seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*d = Duration(v * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Source
	Years        []int    `json:"years,omitempty" validate:"omitempty,dive,gte=1990,lte=2100"`
	BaseURL      string   `json:"base_url,omitempty" validate:"omitempty,url"`
	Timeout      Duration `json:"timeout,omitempty" validate:"gte=0"`
	RequestDelay Duration `json:"request_delay,omitempty" validate:"gte=0"`
	// CacheMaxAge reuses archived raw responses younger than this. Zero
	// disables reuse unless Offline is set.
	CacheMaxAge Duration `json:"cache_max_age,omitempty" validate:"gte=0"`
	Offline     bool     `json:"offline,omitempty"` // Only use archived raw responses

	// Paths
	RawDir          string `json:"raw_dir,omitempty"`          // Raw XML archive
	DataDir         string `json:"data_dir,omitempty"`         // Per-year JSON and CSV exports
	SiteDir         string `json:"site_dir,omitempty"`         // Published website data
	SummaryTemplate string `json:"summary_template,omitempty"` // Optional README template

	// Aggregation
	MaxPublished int    `json:"max_published,omitempty" validate:"gte=0"`
	DateField    string `json:"date_field,omitempty"` // Detected from the records when empty
	ResultField  string `json:"result_field,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the built-in configuration. Years defaults to the
// current calendar year.
func Defaults() Config {
	return Config{
		Years:        []int{time.Now().Year()},
		BaseURL:      DefaultBaseURL,
		Timeout:      Duration(DefaultTimeout),
		RequestDelay: Duration(DefaultRequestDelay),
		RawDir:       DefaultRawDir,
		DataDir:      DefaultDataDir,
		SiteDir:      DefaultSiteDir,
		MaxPublished: DefaultMaxPublished,
		ResultField:  DefaultResultField,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so messages match the config file
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config error: %s", describe(verrs[0]))
		}
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.SummaryTemplate != "" {
		if _, err := os.Stat(c.SummaryTemplate); os.IsNotExist(err) {
			return fmt.Errorf("config error: summary template file not found: %s", c.SummaryTemplate)
		}
	}

	return nil
}

// describe turns a validator failure into a message naming the JSON field.
func describe(fe validator.FieldError) string {
	// Namespace is "Config.years[0]"; drop the struct name
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "gte":
		if fe.Kind() == reflect.Int && strings.Contains(field, "[") {
			return fmt.Sprintf("'%s' must be a year not before %s", field, fe.Param())
		}
		return fmt.Sprintf("'%s' must be non-negative", field)
	case "lte":
		return fmt.Sprintf("'%s' must be a year not after %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("'%s' must be a valid URL", field)
	default:
		return fmt.Sprintf("'%s' failed on %s", field, fe.Tag())
	}
}

// ApplyEnv overrides values from the environment (CAMARA_API_URL).
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		return
	}
	if url := strings.TrimSpace(getenv(EnvBaseURL)); url != "" {
		c.BaseURL = url
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if len(result.Years) == 0 {
		result.Years = append([]int(nil), defaults.Years...)
	}

	// String fields: use default if empty
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.RawDir == "" {
		result.RawDir = defaults.RawDir
	}
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.SiteDir == "" {
		result.SiteDir = defaults.SiteDir
	}
	if result.SummaryTemplate == "" {
		result.SummaryTemplate = defaults.SummaryTemplate
	}
	if result.DateField == "" {
		result.DateField = defaults.DateField
	}
	if result.ResultField == "" {
		result.ResultField = defaults.ResultField
	}

	// Numeric fields: use default if zero
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.RequestDelay == 0 {
		result.RequestDelay = defaults.RequestDelay
	}
	if result.MaxPublished == 0 {
		result.MaxPublished = defaults.MaxPublished
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
