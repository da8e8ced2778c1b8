// Copyright (c) 2026, Verdant Labs.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/verdantlabs/plantgate/pkg/defaults"
)

// Config holds the gateway configuration. Values are resolved in order of
// precedence: built-in defaults, then the optional YAML file, then
// environment variables.
type Config struct {
	// Provider is the external identification provider.
	ProviderAPIKey   string `env:"PLANTNET_API_KEY" yaml:"provider_api_key"`
	ProviderEndpoint string `env:"PLANTNET_API_ENDPOINT" yaml:"provider_endpoint"`

	// ResultLanguage selects the language for common names in provider
	// results. Must be a valid BCP 47 tag.
	ResultLanguage string `env:"RESULT_LANGUAGE" yaml:"result_language"`

	// JWTSecret is the shared HMAC secret used to verify caller credentials.
	JWTSecret string `env:"JWT_SECRET_KEY" yaml:"jwt_secret"`

	// Cache controls.
	CacheTTL time.Duration `env:"CACHE_TTL" yaml:"cache_ttl"`

	// Per-caller admission controls.
	RateWindow time.Duration `env:"RATE_WINDOW" yaml:"rate_window"`
	RateLimit  int           `env:"RATE_LIMIT" yaml:"rate_limit"`

	// Upstream call controls.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" yaml:"upstream_timeout"`
	UpstreamRetries int           `env:"UPSTREAM_RETRIES" yaml:"upstream_retries"`

	// Server listen controls.
	Address string `env:"ADDRESS" yaml:"address"`
	Port    int    `env:"PORT" yaml:"port"`
}

// New returns a Config populated with built-in defaults only.
func New() *Config {
	return &Config{
		ProviderEndpoint: "https://my-api.plantnet.org/v2/identify/all",
		ResultLanguage:   "fr",
		CacheTTL:         defaults.ResultCacheTTL,
		RateWindow:       defaults.RateWindow,
		RateLimit:        defaults.RateWindowLimit,
		UpstreamTimeout:  defaults.UpstreamTimeout,
		UpstreamRetries:  defaults.UpstreamRetryAttempts,
		Address:          "",
		Port:             8080,
	}
}

// Load resolves the full configuration. If path is non-empty the YAML file at
// that location is overlaid on the defaults before environment variables are
// applied.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value sanity.
func (c *Config) Validate() error {
	if c.ProviderAPIKey == "" {
		return fmt.Errorf("PLANTNET_API_KEY is required")
	}
	if c.ProviderEndpoint == "" {
		return fmt.Errorf("provider endpoint is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := language.Parse(c.ResultLanguage); err != nil {
		return fmt.Errorf("invalid result language %q: %w", c.ResultLanguage, err)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive, got %s", c.RateWindow)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.RateLimit)
	}
	if c.UpstreamRetries < 1 {
		return fmt.Errorf("upstream retries must be at least 1, got %d", c.UpstreamRetries)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be in [1,65535], got %d", c.Port)
	}
	return nil
}
