package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tagindex/internal/codec"
	"github.com/mesh-intelligence/tagindex/internal/gosrc"
	"github.com/mesh-intelligence/tagindex/internal/scanner"
	"github.com/mesh-intelligence/tagindex/internal/sqlite"
)

type scanFlags struct {
	store string
	quiet bool
}

func newScanCmd() *cobra.Command {
	var sf scanFlags
	cmd := &cobra.Command{
		Use:   "scan [packages...]",
		Short: "Index marked elements into catalog partitions",
		Long: "Parse the given package directories (default ./...), check every element\n" +
			"carrying a //tagindex:mark directive, and merge the records into one\n" +
			"partition per marker in the output directory or a SQLite store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, sf)
		},
	}
	cmd.Flags().StringVar(&sf.store, "store", "", "write partitions into this SQLite catalog store instead of the output directory")
	cmd.Flags().BoolVarP(&sf.quiet, "quiet", "q", false, "suppress the per-element notes")
	return cmd
}

func runScan(cmd *cobra.Command, args []string, sf scanFlags) error {
	cfg, err := settings()
	if err != nil {
		return userError(err)
	}
	if len(args) == 0 {
		args = []string{"./..."}
	}

	pkgs, err := gosrc.ResolvePackages(args)
	if err != nil {
		return userError(err)
	}
	logger.Debug("resolved packages", zap.Strings("patterns", args), zap.Int("count", len(pkgs)))

	env, err := gosrc.Load(pkgs)
	if err != nil {
		return userError(err)
	}

	var collected scanner.Collector
	rep := teeReporter{&collected, newDiagnosticPrinter(cmd.ErrOrStderr(), flags.noColor)}
	for _, d := range env.Diagnostics() {
		rep.Report(d)
	}

	filer := scanner.DirFiler(cfg.OutputDir)
	target := cfg.OutputDir
	if sf.store != "" {
		s, err := sqlite.Open(sf.store)
		if err != nil {
			return sysError(err)
		}
		defer s.Close()
		filer = scanner.StoreFiler(s)
		target = sf.store
	}

	opts := scanner.Options{Quiet: sf.quiet || cfg.Quiet}
	res, err := scanner.New(env, filer, rep, opts).Run()
	if err != nil {
		return sysError(err)
	}
	for _, p := range res.Partitions {
		marker, _ := codec.MarkerFromPath(p)
		logger.Info("wrote partition",
			zap.String("target", target),
			zap.String("path", p),
			zap.Int("records", res.Records[marker]))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d partition(s) written to %s\n", len(res.Partitions), target)

	if n := len(collected.Errors()); n > 0 {
		return userError(fmt.Errorf("%d error(s) reported", n))
	}
	return nil
}
