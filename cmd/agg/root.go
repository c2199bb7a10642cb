package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/agg/internal/config"
	"github.com/sanspareilsmyn/agg/internal/logging"
	"github.com/sanspareilsmyn/agg/internal/period"
	"github.com/sanspareilsmyn/agg/internal/pipeline"
	"github.com/sanspareilsmyn/agg/internal/record"
	"github.com/sanspareilsmyn/agg/internal/reduce"
	"github.com/sanspareilsmyn/agg/internal/version"
)

const (
	exitOK = iota
	exitDateParse
	exitConfig
	exitFieldParse
	exitIO
)

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var (
		configPath string
		deps       bool
	)

	cmd := &cobra.Command{
		Use:   "agg [flags] [file]",
		Short: "Aggregate a delimited time series by calendar period",
		Long: `agg reads rows whose first field is a date/time and whose remaining
fields are numbers, groups them into daily, weekly, monthly or yearly
windows and prints one row per window with each column reduced by the
chosen function. Input is read from file, or standard input when file
is absent or "-".`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return &config.Error{Key: "args", Err: fmt.Errorf("%w: %w", config.ErrInvalidFlag, err)}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps {
				_, err := fmt.Fprintf(stdout, "%s %s\n\n%s\n", version.ProgramName, version.String(), version.DepString())
				return err
			}

			v := viper.New()
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return &config.Error{Key: "flags", Err: err}
			}
			if len(args) == 1 {
				v.Set("run.input", args[0])
			}

			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}

			logger, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return &config.Error{Key: "log", Err: err}
			}
			defer func() {
				_ = logger.Sync()
			}()

			logger.Debug("Configuration loaded",
				zap.String("period", cfg.Options.Period.String()),
				zap.String("function", cfg.Options.Func.String()),
				zap.String("input", cfg.Options.Input),
			)

			pipe, err := pipeline.New(cfg, stdout, logger)
			if err != nil {
				return err
			}
			return pipe.Run(cmd.Context(), stdin)
		},
	}

	cmd.SetVersionTemplate(version.ProgramName + " {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.Error{Key: "flags", Err: fmt.Errorf("%w: %w", config.ErrInvalidFlag, err)}
	})

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVar(&configPath, "config", "", "Optional configuration file (yaml, toml or json)")
	cmd.Flags().BoolVar(&deps, "deps", false, "Print version and dependencies, then exit")

	return cmd
}

// execute runs the root command and reports any failure on stderr,
// returning the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "%s: %v\n", version.ProgramName, err)
	return exitCode(err)
}

func exitCode(err error) int {
	var (
		dateErr   *record.DateParseError
		fieldErr  *pipeline.FieldParseError
		configErr *config.Error
		periodErr *period.UnknownPeriodError
		funcErr   *reduce.UnknownFunctionError
	)

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &dateErr):
		return exitDateParse
	case errors.As(err, &fieldErr):
		return exitFieldParse
	case errors.As(err, &configErr), errors.As(err, &periodErr), errors.As(err, &funcErr),
		errors.Is(err, pipeline.ErrEmitterCreationFailed):
		return exitConfig
	default:
		return exitIO
	}
}
