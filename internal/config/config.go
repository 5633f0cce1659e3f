package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mavwarf/mkicon/internal/paths"
)

const (
	// DefaultSource is the source image, relative to the config directory.
	DefaultSource = "icon/app_icon.png"
	// DefaultOutput is the compiled icon path, relative to the config directory.
	DefaultOutput = "AppIcon.icns"
	// DefaultIconsetName names the staging directory (<name>.iconset).
	DefaultIconsetName = "AppIcon"
	// DefaultEdge is the canvas edge length in pixels.
	DefaultEdge = 1024
)

// Config holds the settings read from mkicon-config.json.
type Config struct {
	Source      string   `json:"source,omitempty"`
	Output      string   `json:"output,omitempty"`
	IconsetName string   `json:"iconset_name,omitempty"`
	Edge        int      `json:"edge,omitempty"`
	Compiler    string   `json:"compiler,omitempty"` // "auto" | "iconutil" | "native" | "command"
	Command     []string `json:"command,omitempty"`  // compiler=command
	Filter      string   `json:"filter,omitempty"`   // "lanczos" | "lanczos3"
	MinSource   int      `json:"min_source,omitempty"`
	KeepIconset bool     `json:"keep_iconset,omitempty"`
	History     string   `json:"history,omitempty"` // "" | "file" | "sqlite"

	// Dir is the directory relative paths are resolved against: the
	// directory of the loaded file, or "" for the working directory.
	Dir string `json:"-"`
}

// validCompilers and validFilters mirror compiler.Names and
// iconset.Filters; names_sync_test.go keeps them aligned.
var (
	validCompilers = map[string]bool{"auto": true, "iconutil": true, "native": true, "command": true}
	validFilters   = map[string]bool{"lanczos": true, "lanczos3": true}
	validHistory   = map[string]bool{"": true, "file": true, "sqlite": true}
)

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Source:      DefaultSource,
		Output:      DefaultOutput,
		IconsetName: DefaultIconsetName,
		Edge:        DefaultEdge,
		Compiler:    "auto",
		Filter:      "lanczos",
	}
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	*c = Default()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Edge <= 0 {
		return fmt.Errorf("edge must be positive, got %d", c.Edge)
	}
	if c.MinSource < 0 {
		return fmt.Errorf("min_source must not be negative, got %d", c.MinSource)
	}
	if !validCompilers[c.Compiler] {
		return fmt.Errorf("unknown compiler %q (want auto, iconutil, native or command)", c.Compiler)
	}
	if c.Compiler == "command" && len(c.Command) == 0 {
		return fmt.Errorf(`compiler "command" requires a "command" array`)
	}
	if !validFilters[c.Filter] {
		return fmt.Errorf("unknown filter %q (want lanczos or lanczos3)", c.Filter)
	}
	if !validHistory[c.History] {
		return fmt.Errorf("unknown history store %q (want file or sqlite)", c.History)
	}
	if c.IconsetName == "" {
		return fmt.Errorf("iconset_name must not be empty")
	}
	return nil
}

// Resolve returns p joined to c.Dir when p is relative.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Load reads and parses a config file. It tries, in order:
//  1. explicitPath (if non-empty; it must exist)
//  2. mkicon-config.json next to the running binary
//  3. ~/.config/mkicon/mkicon-config.json (%APPDATA%\mkicon on Windows)
//
// When none is found the defaults are returned, resolved against the
// working directory.
func Load(explicitPath string) (Config, error) {
	if explicitPath != "" {
		return readConfig(explicitPath)
	}

	// Next to binary
	exe, err := os.Executable()
	if err == nil {
		p := filepath.Join(filepath.Dir(exe), paths.ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return readConfig(p)
		}
	}

	// User config directory
	p := filepath.Join(paths.DataDir(), paths.ConfigFileName)
	if _, err := os.Stat(p); err == nil {
		return readConfig(p)
	}

	return Default(), nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Config{}, err
	}
	cfg.Dir = abs
	return cfg, nil
}
