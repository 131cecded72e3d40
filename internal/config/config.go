package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const FileName = ".tactscan.yaml"

type Suppression struct {
	Detector string `yaml:"detector"`
	Path     string `yaml:"path"`
	Reason   string `yaml:"reason"`
}

type Souffle struct {
	Binary   string `yaml:"binary"`
	KeepDirs bool   `yaml:"keepDirs"`
}

type Config struct {
	SeverityThreshold string        `yaml:"severityThreshold"`
	Detectors         []string      `yaml:"detectors"` // empty = all registered
	Souffle           Souffle       `yaml:"souffle"`
	Suppressions      []Suppression `yaml:"suppressions"`
}

func Default() Config {
	return Config{
		SeverityThreshold: "info",
		Souffle:           Souffle{Binary: "souffle"},
	}
}

// Load searches upward from startDir for a .tactscan.yaml and merges it over
// the defaults. Returns the config, the path it was loaded from ("" when no
// file was found), and any read/parse error.
func Load(startDir string) (Config, string, error) {
	cfg := Default()
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			b, err := os.ReadFile(candidate)
			if err != nil {
				return cfg, candidate, err
			}
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, candidate, err
			}
			return cfg, candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached root
			break
		}
		dir = parent
	}
	return cfg, "", nil
}
