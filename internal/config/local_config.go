package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig represents the subset of config.yaml fields that need to be read
// directly from the file rather than through the viper singleton. The serve
// command uses it to validate an edited file before reloading.
type LocalConfig struct {
	DB          string `yaml:"db"`
	Listen      string `yaml:"listen"`
	Propagation struct {
		Enabled      *bool `yaml:"enabled"`
		LookbackDays *int  `yaml:"lookback-days"`
	} `yaml:"propagation"`
	Report struct {
		WeekStart string `yaml:"week-start"`
	} `yaml:"report"`
}

// ReadLocalConfig parses dir/config.yaml. A missing file yields an empty
// LocalConfig; a malformed one yields an error.
func ReadLocalConfig(dir string) (*LocalConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, "config.yaml")) // #nosec G304 - config file path from data dir
	if err != nil {
		if os.IsNotExist(err) {
			return &LocalConfig{}, nil
		}
		return nil, err
	}
	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadLocalConfig reads and parses config.yaml directly from dir.
//
// Returns an empty LocalConfig (not nil) if the file doesn't exist or can't be parsed.
func LoadLocalConfig(dir string) *LocalConfig {
	cfg, err := ReadLocalConfig(dir)
	if err != nil {
		return &LocalConfig{}
	}
	return cfg
}
