package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/tagindex/internal/paths"
	"github.com/mesh-intelligence/tagindex/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyQuiet      = "quiet"
	cfgKeyOutputDir  = "output_dir"
	cfgKeyContainers = "containers"
)

// loadConfig reads config.yaml from configDir using Viper. A missing file is
// not an error; the defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyQuiet, false)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if _, err := os.Stat(paths.ConfigFile(configDir)); errors.Is(err, fs.ErrNotExist) {
		return v, nil
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// settings assembles the effective configuration from config.yaml and the
// global flags.
func settings() (types.Config, error) {
	outputDir, err := resolveOutputDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve output dir: %w", err)
	}
	cfg := types.Config{OutputDir: outputDir}
	if config != nil {
		cfg.Quiet = config.GetBool(cfgKeyQuiet)
		cfg.Containers = config.GetStringSlice(cfgKeyContainers)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}
