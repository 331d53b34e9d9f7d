// Copyright (c) 2026-present the Firefly Framework authors
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

// Package config loads the relay configuration from an optional YAML file
// with environment variable overrides. All durations are given in seconds.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RELAY_"

// Config is the root configuration of the relay.
type Config struct {
	// LogLevel is one of debug, info, warn, error, or silent.
	LogLevel string `yaml:"logLevel"`
	// LogFormat is either json or text.
	LogFormat string `yaml:"logFormat"`

	Server   Server   `yaml:"server"`
	Upstream Upstream `yaml:"upstream"`
	Token    Token    `yaml:"token"`
	Rules    []Rule   `yaml:"rules"`
	Filters  Filters  `yaml:"filters"`
}

// Server configures the listening HTTP server.
type Server struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	ReadTimeout       int    `yaml:"readTimeout"`
	ReadHeaderTimeout int    `yaml:"readHeaderTimeout"`
	IdleTimeout       int    `yaml:"idleTimeout"`
	MaxHeaderBytes    int    `yaml:"maxHeaderBytes"`
}

// Upstream configures the terminal proxy target.
type Upstream struct {
	// Target is the base URL requests are forwarded to.
	Target string `yaml:"target"`
	// ResponseHeaderTimeout bounds the wait for upstream response headers.
	ResponseHeaderTimeout int `yaml:"responseHeaderTimeout"`
	// Secret, when set, HMAC-signs the stamped principal headers so the
	// upstream can distinguish them from client forgeries.
	Secret string `yaml:"secret"`
}

// Token configures validation of bearer tokens.
type Token struct {
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
	// Leeway is the acceptable clock skew in seconds.
	Leeway int  `yaml:"leeway"`
	Keys   Keys `yaml:"keys"`
}

// Keys configures the JWKS sources for token verification.
type Keys struct {
	// Static is a path to a local JWKS document.
	Static string `yaml:"static"`
	// Remote configures a refreshing remote JWKS endpoint.
	Remote Remote `yaml:"remote"`
}

// Remote configures a remote JWKS endpoint.
type Remote struct {
	Endpoint string `yaml:"endpoint"`
	// Interval is the minimum refresh interval in seconds.
	Interval int `yaml:"interval"`
}

// Rule configures one authorization rule. Rules are evaluated in order;
// the first rule whose condition matches decides.
type Rule struct {
	// Mode is "allow" or "deny"; empty defaults to allow.
	Mode string `yaml:"mode"`
	// When is a boolean expression over claims, method, and path.
	When string `yaml:"when"`
	// User is a string expression naming the authenticated principal.
	User string `yaml:"user"`
	// Roles is an expression producing a list of role strings.
	Roles string `yaml:"roles"`
}

// Gate holds the include and exclude path patterns of one filter.
type Gate struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Filters gates the built-in filter set per request path.
type Filters struct {
	Auth      Gate `yaml:"auth"`
	AccessLog Gate `yaml:"accessLog"`
	Headers   Gate `yaml:"headers"`
}

// Default returns the configuration baseline applied before file and
// environment values.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "json",
		Server: Server{
			Host:              "", // all interfaces
			Port:              8080,
			ReadTimeout:       30,
			ReadHeaderTimeout: 10,
			IdleTimeout:       90,
			MaxHeaderBytes:    1 << 16, // 64 KiB
		},
		Upstream: Upstream{
			ResponseHeaderTimeout: 30,
		},
		Token: Token{
			Leeway: 30,
		},
	}
}

// Load assembles the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides, and finally
// validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	overlayEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// overlayEnv applies RELAY_* environment overrides onto cfg.
func overlayEnv(cfg *Config) {
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.LogFormat, "LOG_FORMAT")
	str(&cfg.Server.Host, "HOST")
	num(&cfg.Server.Port, "PORT")
	num(&cfg.Server.ReadTimeout, "READ_TIMEOUT")
	num(&cfg.Server.ReadHeaderTimeout, "READ_HEADER_TIMEOUT")
	num(&cfg.Server.IdleTimeout, "IDLE_TIMEOUT")
	num(&cfg.Server.MaxHeaderBytes, "MAX_HEADER_BYTES")
	str(&cfg.Upstream.Target, "TARGET")
	num(&cfg.Upstream.ResponseHeaderTimeout, "RESPONSE_HEADER_TIMEOUT")
	str(&cfg.Upstream.Secret, "UPSTREAM_SECRET")
	str(&cfg.Token.Issuer, "TOKEN_ISSUER")
	str(&cfg.Token.Audience, "TOKEN_AUDIENCE")
	num(&cfg.Token.Leeway, "TOKEN_LEEWAY")
	str(&cfg.Token.Keys.Static, "KEYS_STATIC")
	str(&cfg.Token.Keys.Remote.Endpoint, "KEYS_ENDPOINT")
	num(&cfg.Token.Keys.Remote.Interval, "KEYS_INTERVAL")
}

func str(dst *string, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = strings.TrimSpace(v)
	}
}

func num(dst *int, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

// Validate reports configuration errors that must fail startup. Pattern
// and rule expressions are compiled separately when the filter chain is
// assembled, so only structural checks happen here.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Upstream.Target == "" {
		return fmt.Errorf("upstream target is required")
	}
	u, err := url.Parse(c.Upstream.Target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream target %q is not a valid URL", c.Upstream.Target)
	}
	for i, r := range c.Rules {
		mode := strings.ToLower(strings.TrimSpace(r.Mode))
		if mode != "" && mode != "allow" && mode != "deny" {
			return fmt.Errorf("rules[%d].mode must be 'allow' or 'deny'", i)
		}
		if strings.TrimSpace(r.When) == "" {
			return fmt.Errorf("rules[%d].when is required", i)
		}
	}
	return nil
}
