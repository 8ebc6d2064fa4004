// Package config assembles the pipeline context the patch step runs with:
// an optional JSON file, overridden by APPLINK_-prefixed environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultMinOSVersion is the lowest OS version that supports
	// associated domains.
	DefaultMinOSVersion = "9.0"

	// DefaultFile is consulted when no config path is given.
	DefaultFile = "applink.json"

	envPrefix = "APPLINK_"
)

// Context carries everything one patch run needs. No ambient state: the
// patch core receives the context explicitly.
type Context struct {
	ProjectRoot  string `koanf:"project_root" validate:"required"`
	ProjectName  string `koanf:"project_name" validate:"required"`
	MinOSVersion string `koanf:"min_os_version" validate:"required,dotted_version"`
}

// Load reads the context from path (or DefaultFile when path is empty and
// the file exists) and applies environment overrides.
func Load(path string) (*Context, error) {
	k := koanf.New(".")

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var ctx Context
	if err := k.Unmarshal("", &ctx); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if ctx.MinOSVersion == "" {
		ctx.MinOSVersion = DefaultMinOSVersion
	}
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	return &ctx, nil
}

// Validate checks the context is complete and the version is dotted
// numeric.
func (c *Context) Validate() error {
	validate := validator.New()
	_ = validate.RegisterValidation("dotted_version", func(fl validator.FieldLevel) bool {
		_, err := semver.NewVersion(fl.Field().String())
		return err == nil
	})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid pipeline context: %w", err)
	}
	return nil
}
