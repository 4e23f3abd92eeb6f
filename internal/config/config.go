// Package config reads $XDG_CONFIG_HOME/redstring/config.toml. A missing
// or malformed file leaves the defaults in place.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"redstring/internal/scene"
)

type Config struct {
	// SaveDirectory is where exports land. Empty means the working
	// directory.
	SaveDirectory string `toml:"save_directory"`
	// StorePath is the SQLite file holding boards, cameras and suggestions.
	StorePath     string `toml:"store_path"`
	LogFile       string `toml:"log_file"`
	Debug         bool   `toml:"debug"`
	Confirmations bool   `toml:"confirmations"`

	Surface SurfaceConfig `toml:"surface"`
	Camera  CameraConfig  `toml:"camera"`
}

// SurfaceConfig maps terminal cells to board units.
type SurfaceConfig struct {
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
	// HitWidth is the link hit band, in board units.
	HitWidth float64 `toml:"hit_width"`
}

// CameraConfig names the store slots of the two cameras.
type CameraConfig struct {
	EditorKey string `toml:"editor_key"`
	PublicKey string `toml:"public_key"`
}

func Default() *Config {
	dir := Dir()
	return &Config{
		StorePath:     filepath.Join(dir, "board.db"),
		LogFile:       filepath.Join(dir, "redstring.log"),
		Confirmations: true,
		Surface:       SurfaceConfig{CellWidth: 20, CellHeight: 40, HitWidth: scene.DefaultHitWidth},
		Camera:        CameraConfig{EditorKey: "editor-camera", PublicKey: "public-camera"},
	}
}

// Dir returns the redstring config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "redstring")
}

func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

func Load() *Config {
	return LoadFile(Path())
}

func LoadFile(path string) *Config {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return Default()
	}
	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	c.SaveDirectory = expandPath(c.SaveDirectory)
	c.StorePath = expandPath(c.StorePath)
	c.LogFile = expandPath(c.LogFile)

	def := Default()
	if c.Surface.CellWidth <= 0 {
		c.Surface.CellWidth = def.Surface.CellWidth
	}
	if c.Surface.CellHeight <= 0 {
		c.Surface.CellHeight = def.Surface.CellHeight
	}
	if c.Surface.HitWidth <= 0 {
		c.Surface.HitWidth = def.Surface.HitWidth
	}
	if c.Camera.EditorKey == "" {
		c.Camera.EditorKey = def.Camera.EditorKey
	}
	if c.Camera.PublicKey == "" {
		c.Camera.PublicKey = def.Camera.PublicKey
	}
	if c.StorePath == "" {
		c.StorePath = def.StorePath
	}
}

func expandPath(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	if !filepath.IsAbs(value) {
		if abs, err := filepath.Abs(value); err == nil {
			value = abs
		}
	}
	return value
}

// SavePath places an export file inside SaveDirectory, creating it.
func (c *Config) SavePath(filename string) (string, error) {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename, nil
	}
	if err := os.MkdirAll(c.SaveDirectory, 0o755); err != nil {
		return "", fmt.Errorf("creating save directory: %w", err)
	}
	return filepath.Join(c.SaveDirectory, filename), nil
}

// Save writes cfg to path, creating the directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
