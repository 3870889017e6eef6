// Package logging builds the zap logger used by the tagindex command.
package logging

import "go.uber.org/zap"

// New returns a development logger when verbose is set and a production
// logger otherwise. If the logger cannot be built it falls back to a no-op
// logger so callers never need to handle a nil.
func New(verbose bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}
