package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/crewplan/modules/planning"
	"github.com/iota-uz/crewplan/modules/planning/infrastructure/rentman"
	"github.com/iota-uz/crewplan/modules/planning/services"
	"github.com/iota-uz/crewplan/pkg/application"
	"github.com/iota-uz/crewplan/pkg/configuration"
	"github.com/iota-uz/crewplan/pkg/logging"
)

type rootOptions struct {
	envFiles []string
	verbose  bool

	conf *configuration.Configuration
	app  application.Application
}

// service looks up a planning service, e.g. service[services.CacheService](opts).
func service[T any](opts *rootOptions) *T {
	var zero T
	return opts.app.Service(zero).(*T)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "crewplanctl",
		Short:         "Cache maintenance, warmup and ad-hoc booking resolution against Rentman",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.conf != nil {
				opts.conf.Unload()
			}
		},
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env", ".env.local"}, "Env files to load before reading the environment")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at info level to stderr")

	cmd.AddCommand(newCacheCmd(opts))
	cmd.AddCommand(newWarmupCmd(opts))
	cmd.AddCommand(newBookingsCmd(opts))
	return cmd
}

func (o *rootOptions) load() error {
	conf, err := configuration.Load(o.envFiles...)
	if err != nil {
		return withCode(exitConfig, err)
	}
	o.conf = conf

	level := logrus.ErrorLevel
	if o.verbose {
		level = logrus.InfoLevel
	}
	logger := logging.ConsoleLogger(level)
	logger.SetOutput(os.Stderr)

	app := application.New(&application.ApplicationOptions{Logger: logger})
	if err := application.LoadModules(app, planning.NewModule(&planning.ModuleOptions{Configuration: conf})); err != nil {
		return withCode(exitConfig, err)
	}
	o.app = app
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// classify assigns exit codes to service errors.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrInvalidQuery):
		return withCode(exitValidation, err)
	case rentman.IsUpstreamFailure(err):
		return withCode(exitUpstream, err)
	}
	return err
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
