// Package cli implements the tagindex command-line interface: scanning Go
// packages into catalog partitions and inspecting the catalogs produced.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tagindex/internal/logging"
	"github.com/mesh-intelligence/tagindex/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	outputDir string
	verbose   bool
	noColor   bool
}

var (
	flags  rootFlags
	config *viper.Viper
	logger = zap.NewNop()
)

// exitError carries the exit code a failed command should end with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// NewRootCmd creates the top-level "tagindex" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}
	root := &cobra.Command{
		Use:   "tagindex",
		Short: "Compile-time index of marked Go types, funcs and vars",
		Long: "tagindex scans Go packages for elements marked with indexable markers,\n" +
			"writes one catalog partition per marker, and inspects the catalogs it produced.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logging.New(flags.verbose)
			if cmd.Name() == "version" {
				return nil
			}
			configDir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return sysError(fmt.Errorf("resolve config dir: %w", err))
			}
			config, err = loadConfig(configDir)
			if err != nil {
				return userError(err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVarP(&flags.outputDir, "output-dir", "o", "", "partition output directory (default: $(CWD)/tagindex-out)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log catalog activity at debug level")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored diagnostics")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newPackCmd())

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintf(os.Stderr, "tagindex: %s\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// resolveOutputDir returns the output directory following the precedence:
// --output-dir flag > config.yaml output_dir > TAGINDEX_OUTPUT_DIR env > default.
func resolveOutputDir() (string, error) {
	var fromConfig string
	if config != nil {
		fromConfig = config.GetString(cfgKeyOutputDir)
	}
	return paths.ResolveOutputDir(flags.outputDir, fromConfig)
}
