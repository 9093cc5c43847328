// Package config handles pvmkit.toml configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "pvmkit.toml"

// Config represents a pvmkit.toml configuration.
type Config struct {
	Debug   bool          `toml:"debug" json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
	NoColor bool          `toml:"no-color" json:"noColor" jsonschema:"title=No Color,description=Disable syntax highlighting"`
	Style   string        `toml:"style" json:"style,omitempty" jsonschema:"title=Style,description=Chroma style used for listings,default=pvm-dark"`
	Listing ListingConfig `toml:"listing" json:"listing" jsonschema:"title=Listing,description=Disassembly listing options"`
	Output  OutputConfig  `toml:"output" json:"output" jsonschema:"title=Output,description=Default output formats"`

	// Path is the file the configuration was read from, empty when defaults are used.
	Path string `toml:"-" json:"-"`
}

// ListingConfig controls the text listing.
type ListingConfig struct {
	Offsets bool `toml:"offsets" json:"offsets" jsonschema:"title=Offsets,description=Prefix lines with instruction offsets,default=true"`
	Labels  bool `toml:"labels" json:"labels" jsonschema:"title=Labels,description=Replace branch offsets with labels"`
	Raw     bool `toml:"raw" json:"raw" jsonschema:"title=Raw,description=Append encoded bytes as comments"`
}

// OutputConfig selects default serializations.
type OutputConfig struct {
	Disassembly string `toml:"disassembly" json:"disassembly,omitempty" jsonschema:"title=Disassembly Format,enum=text,enum=json,enum=cbor,default=text"`
	Assembly    string `toml:"assembly" json:"assembly,omitempty" jsonschema:"title=Assembly Input Format,enum=text,enum=json,enum=cbor,default=text"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Style:   "pvm-dark",
		Listing: ListingConfig{Offsets: true},
		Output:  OutputConfig{Disassembly: "text", Assembly: "text"},
	}
}

// Load reads path, or FileName in dir when path is empty, over the
// defaults and then applies environment overrides. A missing default file
// is not an error; a missing explicit path is.
func Load(dir, path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from PVMKIT_DEBUG, PVMKIT_NO_COLOR and PVMKIT_STYLE.
func (c *Config) applyEnv() error {
	for name, dst := range map[string]*bool{
		"PVMKIT_DEBUG":    &c.Debug,
		"PVMKIT_NO_COLOR": &c.NoColor,
	} {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", name, v, err)
		}
		*dst = b
	}
	if v := os.Getenv("PVMKIT_STYLE"); v != "" {
		c.Style = v
	}
	return nil
}

// Schema returns the JSON schema of Config.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
