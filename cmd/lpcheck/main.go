// Command lpcheck validates declarative model datasets: it loads a YAML
// dataset, resolves every record through the built-in handlers, and
// dry-builds the ready boundary conditions into an in-memory problem.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vassdrag/lpbuild"
	"github.com/vassdrag/lpbuild/boundary"
	"github.com/vassdrag/lpbuild/dataset"
	"github.com/vassdrag/lpbuild/handlers"
	"github.com/vassdrag/lpbuild/problem"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "lpcheck",
		Short:         "Validate declarative energy-model datasets",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log resolution passes")

	validate := &cobra.Command{
		Use:   "validate <dataset.yaml>",
		Short: "Resolve a dataset and dry-build its boundary conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], verbose)
		},
	}
	root.AddCommand(validate)
	return root
}

func runValidate(path string, verbose bool) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	records, err := dataset.Load(path)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", zap.String("path", path), zap.Int("records", len(records)))

	registry := lpbuild.NewRegistry()
	if err := handlers.Register(registry); err != nil {
		return err
	}

	resolver, err := lpbuild.NewResolver(registry, lpbuild.WithLogger(lpbuild.NewZapLogger(logger)))
	if err != nil {
		return err
	}
	top, low, err := resolver.ResolveStores(records)
	if err != nil {
		var unresolved *lpbuild.UnresolvedError
		if errors.As(err, &unresolved) {
			for _, pending := range unresolved.Pending {
				logger.Error("record unresolved",
					zap.Stringer("record", pending.Id),
					zap.Stringer("variant", pending.Key),
					zap.Int("missing", len(pending.Missing)),
					zap.Stringers("dependencies", pending.Missing),
				)
			}
		}
		return err
	}
	logger.Info("dataset resolved", zap.Int("objects", top.Len()), zap.Int("values", low.Len()))

	matrix := problem.NewMatrix()
	columns := map[lpbuild.Id]int{}
	for _, id := range top.Ids() {
		value, _ := top.Get(id)
		object, ok := value.(problem.Stateful)
		if !ok {
			continue
		}
		for i := 0; i < object.StateVariableCount(); i++ {
			for _, ref := range []problem.StateVariableRef{object.Incoming(i), object.Outgoing(i)} {
				if ref.Index+1 > columns[ref.Column] {
					columns[ref.Column] = ref.Index + 1
				}
			}
		}
	}
	for column, count := range columns {
		matrix.AddColumns(column, count)
	}

	built, skipped := 0, 0
	for _, id := range top.Ids() {
		value, _ := top.Get(id)
		condition, ok := value.(boundary.Condition)
		if !ok {
			continue
		}
		if !condition.Ready() {
			logger.Warn("boundary condition not ready", zap.Stringer("condition", id))
			skipped++
			continue
		}
		condition.Build(matrix)
		condition.SetConstants(matrix)
		built++
	}
	logger.Info("dry build complete", zap.Int("built", built), zap.Int("skipped", skipped))

	if skipped > 0 {
		return fmt.Errorf("lpcheck: %d boundary conditions not ready", skipped)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
