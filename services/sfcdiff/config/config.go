// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads sfcdiff configuration.
//
// The embedded default.yaml describes the regions tracked in the Misskey
// about page. An external YAML file may override any part of it; fields it
// does not mention keep their defaults.
//
// Thread Safety:
//
//	Load is safe for concurrent use. A returned *Config must not be mutated
//	while shared.
package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/locate"
)

const (
	// MaxYAMLFileSize is the maximum allowed external config size (1MB).
	MaxYAMLFileSize = 1024 * 1024

	// EnvConfigPath names the environment variable holding an external
	// config path.
	EnvConfigPath = "SFCDIFF_CONFIG"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	// ErrInvalidConfig is returned when a config fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	configLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sfcdiff_config_load_errors_total",
		Help: "Total configuration load errors",
	})

	configTracer = otel.Tracer("sfcdiff.config")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Config is the root configuration.
type Config struct {
	Limits  Limits  `yaml:"limits" validate:"required"`
	Regions Regions `yaml:"regions" validate:"required"`
	Logging Logging `yaml:"logging"`
}

// Limits bounds input sizes.
type Limits struct {
	// MaxFileSize is the largest component file accepted, in bytes.
	MaxFileSize int `yaml:"max_file_size" validate:"gt=0"`
}

// Regions configures the two tracked regions.
type Regions struct {
	Acknowledgements Region       `yaml:"acknowledgements" validate:"required"`
	Roster           RosterRegion `yaml:"roster" validate:"required"`
}

// Region is a named region reached by a locator path.
type Region struct {
	// Name is the key of the region in reports.
	Name string            `yaml:"name" validate:"required"`
	Path []locate.PathStep `yaml:"path" validate:"required,min=1"`
}

// RosterRegion is the contributor roster region.
type RosterRegion struct {
	Region            `yaml:",inline"`
	SectionTag        string `yaml:"section_tag" validate:"required"`
	LabelSlot         string `yaml:"label_slot" validate:"required"`
	CaptionExpression string `yaml:"caption_expression" validate:"required"`
	ItemTag           string `yaml:"item_tag" validate:"required"`
	ImageTag          string `yaml:"image_tag" validate:"required"`
}

// Logging configures pkg/logging.
type Logging struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`

	// LogDir enables a JSON log file per day when set.
	LogDir string `yaml:"log_dir"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration.
//
// Description:
//
//	The embedded default is loaded first. If path is set it is overlaid
//	and any failure is returned. Otherwise, if the SFCDIFF_CONFIG
//	environment variable names a file, that file is overlaid; when it
//	cannot be read the default is used and a warning is logged.
//
// Inputs:
//
//	ctx  - Context for tracing.
//	path - Explicit config file, or empty.
//
// Outputs:
//
//	*Config - Validated configuration. Never nil on success.
//	error   - Read, parse or ErrInvalidConfig errors.
func Load(ctx context.Context, path string) (*Config, error) {
	ctx, span := configTracer.Start(ctx, "config.Load")
	defer span.End()

	cfg, err := load(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		configLoadErrors.Inc()
		return nil, err
	}
	return cfg, nil
}

func load(ctx context.Context, path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	source := "embedded"
	switch {
	case path != "":
		data, err := readExternal(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := overlay(cfg, data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		source = path
	case os.Getenv(EnvConfigPath) != "":
		envPath := os.Getenv(EnvConfigPath)
		data, err := readExternal(ctx, envPath)
		if err != nil {
			slog.Warn("External config not available, using embedded default",
				slog.String("path", envPath),
				slog.String("error", err.Error()))
			break
		}
		if err := overlay(cfg, data); err != nil {
			return nil, fmt.Errorf("%s: %w", envPath, err)
		}
		source = envPath
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("source", source))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded", slog.String("source", source))
	return cfg, nil
}

func overlay(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshaling YAML: %w", err)
	}
	return nil
}

// readExternal reads a config file with the size limit applied.
func readExternal(ctx context.Context, path string) ([]byte, error) {
	_, span := configTracer.Start(ctx, "config.ReadExternal",
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()
	start := time.Now()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", absPath)
	}
	if info.Size() > MaxYAMLFileSize {
		return nil, fmt.Errorf("YAML file too large: %d bytes (max %d)", info.Size(), MaxYAMLFileSize)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	span.SetAttributes(
		attribute.Int64("file_size", info.Size()),
		attribute.Int64("read_ms", time.Since(start).Milliseconds()),
	)
	return data, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Regions.Acknowledgements.Name == c.Regions.Roster.Name {
		return fmt.Errorf("%w: region names must differ, both are %q",
			ErrInvalidConfig, c.Regions.Roster.Name)
	}
	return nil
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
