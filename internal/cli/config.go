package cli

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	tmerrors "github.com/matzehuels/topomap/pkg/errors"
	"github.com/matzehuels/topomap/pkg/pipeline"
)

// fileConfig mirrors the render flags. Unset keys leave the pipeline
// default in place.
type fileConfig struct {
	Input     string  `toml:"input" yaml:"input"`
	OutputDir string  `toml:"output_dir" yaml:"output_dir"`
	Mode      string  `toml:"mode" yaml:"mode"`
	Spacing   float64 `toml:"spacing" yaml:"spacing"`
	Step      float64 `toml:"step" yaml:"step"`
	RSSIScale float64 `toml:"rssi_scale" yaml:"rssi_scale"`
	Fallback  *bool   `toml:"fallback" yaml:"fallback"`
	Strict    *bool   `toml:"strict" yaml:"strict"`
	Width     int     `toml:"width" yaml:"width"`
	Height    int     `toml:"height" yaml:"height"`
	NoCache   *bool   `toml:"no_cache" yaml:"no_cache"`

	ArchivePattern string `toml:"archive_pattern" yaml:"archive_pattern"`
	LatestName     string `toml:"latest_name" yaml:"latest_name"`
}

// loadConfig reads a TOML or YAML config file, chosen by extension.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, tmerrors.Wrap(tmerrors.ErrCodeIO, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return cfg, tmerrors.Wrap(tmerrors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return cfg, tmerrors.New(tmerrors.ErrCodeInvalidInput, "config %s: unknown key %s", path, undec[0])
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, tmerrors.Wrap(tmerrors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
	default:
		return cfg, tmerrors.New(tmerrors.ErrCodeInvalidInput, "config %s: unsupported extension (want .toml, .yaml or .yml)", path)
	}
	return cfg, nil
}

// defaultConfigPath returns the first existing config.toml, config.yaml or
// config.yml in the config directory, or "" if none exists.
func defaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		} else if !errors.Is(err, fs.ErrNotExist) {
			return ""
		}
	}
	return ""
}

// apply copies every set key onto opts.
func (cfg fileConfig) apply(opts *pipeline.Options) {
	if cfg.Input != "" {
		opts.Input = cfg.Input
	}
	if cfg.OutputDir != "" {
		opts.OutputDir = cfg.OutputDir
	}
	if cfg.Mode != "" {
		opts.Mode = cfg.Mode
	}
	if cfg.Spacing != 0 {
		opts.Spacing = cfg.Spacing
	}
	if cfg.Step != 0 {
		opts.Step = cfg.Step
	}
	if cfg.RSSIScale != 0 {
		opts.RSSIScale = cfg.RSSIScale
	}
	if cfg.Fallback != nil {
		opts.Fallback = *cfg.Fallback
	}
	if cfg.Strict != nil {
		opts.Strict = *cfg.Strict
	}
	if cfg.Width != 0 {
		opts.Width = cfg.Width
	}
	if cfg.Height != 0 {
		opts.Height = cfg.Height
	}
	if cfg.ArchivePattern != "" {
		opts.ArchivePattern = cfg.ArchivePattern
	}
	if cfg.LatestName != "" {
		opts.LatestName = cfg.LatestName
	}
}
