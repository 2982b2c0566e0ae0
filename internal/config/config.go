//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of GoXform.
//
// GoXform is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoXform is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoXform. If not, see https://www.gnu.org/licenses/.

// Package config loads goxform-server settings from config.yaml and GOXFORM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	Server  ServerConfig
	Limits  LimitsConfig
	CORS    CORSConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address         string
	BasePath        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	Mode            string // gin mode: debug, release or test
}

// LimitsConfig bounds request sizes.
type LimitsConfig struct {
	MaxRecords   int
	MaxBodyBytes int64
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// LogConfig selects log level, encoding and destination.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

var defaults = map[string]interface{}{
	"server.address":          ":8080",
	"server.base_path":        "/api/v1/data",
	"server.read_timeout":     "15s",
	"server.write_timeout":    "30s",
	"server.idle_timeout":     "60s",
	"server.shutdown_timeout": "10s",
	"server.request_timeout":  "30s",
	"server.mode":             "release",
	"limits.max_records":      10000,
	"limits.max_body_bytes":   32 << 20,
	"cors.allowed_origins":    []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	"cors.allow_credentials":  true,
	"log.level":               "info",
	"log.format":              "json",
	"log.output":              "stdout",
	"metrics.enabled":         true,
	"metrics.path":            "/metrics",
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, _ := build(newViper())
	return cfg
}

// Load reads configuration from configPath, which may be a directory holding
// config.yaml or a path to a YAML file. A missing file is not an error; the
// defaults and environment apply.
func Load(configPath string) (Config, error) {
	v := newViper()

	if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if configPath != "" {
			v.AddConfigPath(configPath)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("GOXFORM") // GOXFORM_SERVER_ADDRESS, GOXFORM_LOG_LEVEL, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func build(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			BasePath:        strings.TrimRight(v.GetString("server.base_path"), "/"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			RequestTimeout:  v.GetDuration("server.request_timeout"),
			Mode:            v.GetString("server.mode"),
		},
		Limits: LimitsConfig{
			MaxRecords:   v.GetInt("limits.max_records"),
			MaxBodyBytes: v.GetInt64("limits.max_body_bytes"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   v.GetStringSlice("cors.allowed_origins"),
			AllowCredentials: v.GetBool("cors.allow_credentials"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	switch {
	case c.Server.Address == "":
		return errors.New("server.address must not be empty")
	case c.Limits.MaxRecords <= 0:
		return fmt.Errorf("limits.max_records must be positive, got %d", c.Limits.MaxRecords)
	case c.Server.RequestTimeout <= 0:
		return fmt.Errorf("server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	case c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/"):
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	return nil
}
