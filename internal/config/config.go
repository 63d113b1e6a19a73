// Package config loads ovenledger settings from a YAML or CUE file.
//
// Files are validated against the embedded CUE schema (schema.cue). Command
// line flags are applied on top by the cli package through Override.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ovenledger/internal/ledger"
)

//go:embed schema.cue
var schemaCUE string

// Config holds the runtime settings.
type Config struct {
	// Ledger is the ledger file (.db/.sqlite for SQLite, .csv for CSV).
	Ledger string `yaml:"ledger" json:"ledger"`

	// Export is the unloaded-cylinder artifact (.xlsx or .csv).
	Export string `yaml:"export" json:"export"`

	// Ovens is the fixed oven set operators choose from.
	Ovens []string `yaml:"ovens" json:"ovens"`

	// Listen is the dashboard listen address.
	Listen string `yaml:"listen" json:"listen"`
}

// Default returns the built-in configuration. It matches the defaults
// declared in schema.cue.
func Default() Config {
	return Config{
		Ledger: "cylinders.db",
		Export: "unloaded_cylinders.xlsx",
		Ovens:  slices.Clone(ledger.DefaultOvens),
		Listen: ":8080",
	}
}

// Load reads the configuration file at path. An empty path returns Default().
// The format is chosen by extension: .yaml/.yml or .cue.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	case ".cue":
		cfg, err = parseCUE(data, path)
	default:
		return Config{}, fmt.Errorf("unsupported config file %q: use .yaml, .yml or .cue", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Override replaces fields with non-empty values from o.
func (c Config) Override(o Config) Config {
	if o.Ledger != "" {
		c.Ledger = o.Ledger
	}
	if o.Export != "" {
		c.Export = o.Export
	}
	if len(o.Ovens) > 0 {
		c.Ovens = slices.Clone(o.Ovens)
	}
	if o.Listen != "" {
		c.Listen = o.Listen
	}
	return c
}

// Validate checks c against the CUE schema and rejects duplicate ovens.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema, err := schemaDef(ctx)
	if err != nil {
		return err
	}

	v := ctx.Encode(c)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Ovens))
	for _, oven := range c.Ovens {
		if seen[oven] {
			return fmt.Errorf("invalid config: duplicate oven %q", oven)
		}
		seen[oven] = true
	}
	return nil
}

// parseYAML decodes data over Default(), rejecting unknown keys.
func parseYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// parseCUE compiles data, unifies it with #Config and decodes the result.
// Schema defaults fill omitted fields.
func parseCUE(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()
	schema, err := schemaDef(ctx)
	if err != nil {
		return Config{}, err
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("compile cue: %w", err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode cue: %w", err)
	}
	return cfg, nil
}

func schemaDef(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile schema: %w", err)
	}
	return schema.LookupPath(cue.ParsePath("#Config")), nil
}
