// Package config loads the backend configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stashbox/backend/pkg/rates"
)

type Config struct {
	// HTTP Server
	Port   string
	APIURL string

	// Logging
	LogFormat string
	GinMode   string

	// Database
	DBPath string

	// Exchange rates
	RatesURL    string
	RatesStatic string

	// AMQP
	AMQPURL      string
	AMQPExchange string
}

func Load() *Config {
	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		APIURL: getEnv("API_URL", ""),

		LogFormat: getEnv("LOG_FORMAT", ""),
		GinMode:   getEnv("GIN_MODE", "release"),

		DBPath: getEnv("DB_PATH", filepath.Join("data", "stashbox.db")),

		RatesURL:    getEnv("RATES_URL", ""),
		RatesStatic: getEnv("RATES_STATIC", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "stashbox"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// The API URL is used to build the links in all responses
	if c.APIURL == "" {
		errors = append(errors, "API_URL must be set")
	} else if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': must be an absolute URL", c.APIURL))
	}

	switch c.LogFormat {
	case "", "human", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'human' or 'json'", c.LogFormat))
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errors = append(errors, fmt.Sprintf("invalid gin mode '%s': must be one of [debug release test]", c.GinMode))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if c.RatesURL != "" {
		if u, err := url.Parse(c.RatesURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid rates URL '%s': must be an http or https URL", c.RatesURL))
		}
	}

	if c.RatesStatic != "" {
		if _, err := rates.ParseStatic(c.RatesStatic); err != nil {
			errors = append(errors, fmt.Sprintf("invalid static rates: %v", err))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Gateway returns the exchange rate gateway for the configuration.
//
// An HTTP gateway is used when RATES_URL is set. Otherwise, the rates
// configured in RATES_STATIC are used.
func (c *Config) Gateway() (rates.Gateway, error) {
	if c.RatesURL != "" {
		return rates.NewHTTP(c.RatesURL, nil), nil
	}

	static, err := rates.ParseStatic(c.RatesStatic)
	if err != nil {
		return nil, err
	}

	return static, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
