package models

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

// envPrefix is prepended to the upper-cased json tag of each field when
// looking for environment overrides, e.g. TAP_ORACLE_OIC_OAUTH_CLIENT_ID.
const envPrefix = "TAP_ORACLE_OIC_"

type TapConfig struct {
	OAuthClientID     string `json:"oauth_client_id" validate:"required"`
	OAuthClientSecret string `json:"oauth_client_secret" validate:"required"`
	OAuthTokenURL     string `json:"oauth_token_url" validate:"required,url"`
	OAuthScope        string `json:"oauth_scope,omitempty"`
	OAuthAudience     string `json:"oauth_audience,omitempty"`

	BaseURL string `json:"base_url,omitempty" validate:"required_without=OICURL"`
	// OICURL is accepted as an alias for base_url for compatibility with
	// older configurations.
	OICURL     string `json:"oic_url,omitempty" validate:"required_without=BaseURL"`
	APIVersion string `json:"api_version,omitempty"`

	PageSize       int `json:"page_size,omitempty" validate:"omitempty,min=1,max=1000"`
	RequestTimeout int `json:"request_timeout,omitempty" validate:"omitempty,min=1"`
	MaxRetries     int `json:"max_retries,omitempty" validate:"omitempty,min=0"`
	// RequestsPerSecond is a pointer so an explicit 0 (limiter disabled) is
	// distinguishable from an absent field (defaulted to 10).
	RequestsPerSecond *float64 `json:"requests_per_second,omitempty" validate:"omitempty,min=0"`

	IncludeExtended       bool `json:"include_extended,omitempty"`
	IncludeMonitoring     bool `json:"include_monitoring,omitempty"`
	IncludeInfrastructure bool `json:"include_infrastructure,omitempty"`

	StartDate           string `json:"start_date,omitempty"`
	FailOnParsingErrors *bool  `json:"fail_on_parsing_errors,omitempty"`
}

// LoadConfig reads the config JSON, applies TAP_ORACLE_OIC_* environment
// overrides and defaults, and validates before any network call is made.
func LoadConfig(filePath string) (*TapConfig, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config JSON: %w", err)
	}

	var config TapConfig
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config JSON: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *TapConfig) applyEnv() {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	setString("OAUTH_CLIENT_ID", &c.OAuthClientID)
	setString("OAUTH_CLIENT_SECRET", &c.OAuthClientSecret)
	setString("OAUTH_TOKEN_URL", &c.OAuthTokenURL)
	setString("OAUTH_SCOPE", &c.OAuthScope)
	setString("OAUTH_AUDIENCE", &c.OAuthAudience)
	setString("BASE_URL", &c.BaseURL)
	setString("OIC_URL", &c.OICURL)
	setString("API_VERSION", &c.APIVersion)
	setString("START_DATE", &c.StartDate)

	if v, ok := os.LookupEnv(envPrefix + "PAGE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.PageSize = n
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "REQUEST_TIMEOUT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestTimeout = n
		}
	}
}

func (c *TapConfig) applyDefaults() {
	if c.OAuthScope == "" {
		c.OAuthScope = "urn:opc:resource:consumer:all"
	}
	if c.APIVersion == "" {
		c.APIVersion = "v1"
	}
	if c.PageSize == 0 {
		c.PageSize = 100
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 60
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RequestsPerSecond == nil {
		rps := 10.0
		c.RequestsPerSecond = &rps
	}
	if c.FailOnParsingErrors == nil {
		t := true
		c.FailOnParsingErrors = &t
	}
}

// Validate surfaces every missing or out-of-range field at once so a broken
// config is diagnosed in a single run.
func (c *TapConfig) Validate() error {
	validationErr := validator.New().Struct(c)
	if validationErr == nil {
		return nil
	}

	if _, ok := validationErr.(*validator.InvalidValidationError); ok {
		return fmt.Errorf("error validating config: %w", validationErr)
	}

	var err error
	for _, e := range validationErr.(validator.ValidationErrors) {
		switch e.ActualTag() {
		case "required", "required_without":
			err = multierr.Append(err, fmt.Errorf("%q is required", jsonTag(e.Field())))
		case "url":
			err = multierr.Append(err, fmt.Errorf("%q must be a valid URL", jsonTag(e.Field())))
		default:
			err = multierr.Append(err, fmt.Errorf("%q is out of range", jsonTag(e.Field())))
		}
	}
	return err
}

// ResolvedBaseURL returns base_url, falling back to the oic_url alias,
// without a trailing slash.
func (c *TapConfig) ResolvedBaseURL() string {
	base := c.BaseURL
	if base == "" {
		base = c.OICURL
	}
	return strings.TrimRight(base, "/")
}

func (c *TapConfig) FailOnParsing() bool {
	return c.FailOnParsingErrors == nil || *c.FailOnParsingErrors
}

// RateLimit returns the client-side requests-per-second cap; 0 disables it.
func (c *TapConfig) RateLimit() float64 {
	if c.RequestsPerSecond == nil {
		return 0
	}
	return *c.RequestsPerSecond
}

var fieldToTag = map[string]string{
	"OAuthClientID":     "oauth_client_id",
	"OAuthClientSecret": "oauth_client_secret",
	"OAuthTokenURL":     "oauth_token_url",
	"BaseURL":           "base_url",
	"OICURL":            "oic_url",
	"PageSize":          "page_size",
	"RequestTimeout":    "request_timeout",
	"MaxRetries":        "max_retries",
	"RequestsPerSecond": "requests_per_second",
}

func jsonTag(field string) string {
	if tag, ok := fieldToTag[field]; ok {
		return tag
	}
	return field
}
