package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voxelsplace/landbuilder/lattice"
)

// EnvPath names the environment variable the CLI reads the config path from.
const EnvPath = "LANDTOOL_CONFIG"

const (
	DefaultImageMaxCount = 3
	DefaultIPFSGateway   = "https://ipfs.io/ipfs/"
	defaultQuota         = 150
)

type Config struct {
	CubeSize      int        `yaml:"cube_size"`
	GridRadius    int        `yaml:"grid_radius"`
	ImageMaxCount int        `yaml:"image_max_count"`
	IPFSGateway   string     `yaml:"ipfs_gateway"`
	Categories    []Category `yaml:"categories"`
}

type Category struct {
	Kind     string `yaml:"kind"`
	MaxCount int    `yaml:"max_count"`
	Color    string `yaml:"color"` // mesh swatch
}

// Default is the stock land: six textured tiles with 150 cubes each. The
// remaining tiles are listed so their indices stay stable but carry no
// allowance.
func Default() Config {
	return Config{
		CubeSize:      lattice.DefaultCubeSize,
		GridRadius:    lattice.DefaultHalfExtent,
		ImageMaxCount: DefaultImageMaxCount,
		IPFSGateway:   DefaultIPFSGateway,
		Categories: []Category{
			{Kind: "stone", MaxCount: defaultQuota, Color: "#8a8a8a"},
			{Kind: "trunk", MaxCount: defaultQuota, Color: "#6b4a2b"},
			{Kind: "tree-leaves", MaxCount: defaultQuota, Color: "#3f8f3a"},
			{Kind: "dirt", MaxCount: defaultQuota, Color: "#7a5230"},
			{Kind: "dirt-grass", MaxCount: defaultQuota, Color: "#5f9e3c"},
			{Kind: "brick-grey", MaxCount: defaultQuota, Color: "#9c9c9c"},
			{Kind: lattice.KindColor, Color: lattice.DefaultColor},
			{Kind: "stone-dirt", Color: "#7d6e5d"},
			{Kind: "stone-sand", Color: "#c2b280"},
			{Kind: "snow", Color: "#f4f8fb"},
		},
	}
}

// Load reads a YAML config. Fields left out keep their Default values; a
// categories list, when present, replaces the default table.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by LANDTOOL_CONFIG, or Default when unset.
func FromEnv() (Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c Config) Validate() error {
	var errs []error
	if c.CubeSize <= 0 {
		errs = append(errs, fmt.Errorf("cube_size must be positive, got %d", c.CubeSize))
	}
	if c.GridRadius <= 0 || c.GridRadius > lattice.MaxHalfExtent {
		errs = append(errs, fmt.Errorf("grid_radius must be in [1, %d], got %d", lattice.MaxHalfExtent, c.GridRadius))
	}
	if c.ImageMaxCount < 0 {
		errs = append(errs, fmt.Errorf("image_max_count must not be negative, got %d", c.ImageMaxCount))
	}
	if len(c.Categories) == 0 {
		errs = append(errs, errors.New("categories must not be empty"))
	}
	table := c.Table()
	for i, cat := range c.Categories {
		if cat.Kind == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: kind is required", i))
		}
		if cat.MaxCount < 0 {
			errs = append(errs, fmt.Errorf("categories[%d]: max_count must not be negative", i))
		}
		if j := table.IndexOfKind(cat.Kind); cat.Kind != "" && j != i {
			errs = append(errs, fmt.Errorf("categories[%d]: kind %q already used by categories[%d]", i, cat.Kind, j))
		}
	}
	return errors.Join(errs...)
}

func (c Config) Bounds() lattice.Bounds {
	return lattice.Bounds{CubeSize: c.CubeSize, HalfExtent: c.GridRadius}
}

func (c Config) Table() lattice.Table {
	t := make(lattice.Table, len(c.Categories))
	for i, cat := range c.Categories {
		t[i] = lattice.Category{Kind: cat.Kind, MaxCount: cat.MaxCount, Color: cat.Color}
	}
	return t
}
