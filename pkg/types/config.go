package types

import "errors"

// Config holds the settings shared by the scanner and the catalog tools.
type Config struct {
	OutputDir  string   `json:"output_dir" yaml:"output_dir"`
	Quiet      bool     `json:"quiet" yaml:"quiet"`
	Containers []string `json:"containers,omitempty" yaml:"containers,omitempty"`
}

// Config validation errors.
var (
	ErrOutputDirEmpty = errors.New("output directory must not be empty")
	ErrContainerEmpty = errors.New("container path must not be empty")
)

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return ErrOutputDirEmpty
	}
	for _, p := range c.Containers {
		if p == "" {
			return ErrContainerEmpty
		}
	}
	return nil
}
