package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/agg/internal/period"
	"github.com/sanspareilsmyn/agg/internal/reduce"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func loadWithFlags(t *testing.T, configPath string, args ...string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("agg", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	v := viper.New()
	require.NoError(t, BindFlags(v, fs))
	return Load(v, configPath)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWithFlags(t, "")
	require.NoError(t, err)

	assert.Equal(t, Options{
		Period:          period.Daily,
		Func:            reduce.Sum,
		Delimiter:       "",
		OutputDelimiter: "\t",
		SkipRows:        0,
		Input:           "",
	}, cfg.Options)
	assert.True(t, cfg.Options.ReadsStdin())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "agg", cfg.Metrics.Job)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 100, cfg.Kafka.BatchSize)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
run:
  period: monthly
  function: mean
  delimiter: ","
  skipRows: 1
  input: data.csv
log:
  level: debug
kafka:
  brokers: ["localhost:9092"]
  topic: aggregates
`)

	cfg, err := loadWithFlags(t, path)
	require.NoError(t, err)

	assert.Equal(t, period.Monthly, cfg.Options.Period)
	assert.Equal(t, reduce.Mean, cfg.Options.Func)
	assert.Equal(t, ",", cfg.Options.Delimiter)
	assert.Equal(t, ",", cfg.Options.OutputDelimiter)
	assert.Equal(t, 1, cfg.Options.SkipRows)
	assert.Equal(t, "data.csv", cfg.Options.Input)
	assert.False(t, cfg.Options.ReadsStdin())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "aggregates", cfg.Kafka.Topic)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
run:
  period: monthly
  function: mean
`)

	cfg, err := loadWithFlags(t, path, "-p", "y", "--agg", "max", "-n", "2", "-o", ";")
	require.NoError(t, err)

	assert.Equal(t, period.Yearly, cfg.Options.Period)
	assert.Equal(t, reduce.Max, cfg.Options.Func)
	assert.Equal(t, 2, cfg.Options.SkipRows)
	assert.Equal(t, ";", cfg.Options.OutputDelimiter)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("AGG_RUN_PERIOD", "weekly")
	t.Setenv("AGG_RUN_FUNCTION", "count")

	cfg, err := loadWithFlags(t, "")
	require.NoError(t, err)
	assert.Equal(t, period.Weekly, cfg.Options.Period)
	assert.Equal(t, reduce.Count, cfg.Options.Func)

	cfg, err = loadWithFlags(t, "", "--period", "daily")
	require.NoError(t, err)
	assert.Equal(t, period.Daily, cfg.Options.Period, "flag wins over env")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		file    string
		wantKey string
		wantErr error
	}{
		{
			name:    "unknown period",
			args:    []string{"-p", "hourly"},
			wantKey: "run.period",
			wantErr: period.ErrUnknownPeriod,
		},
		{
			name:    "unknown function",
			args:    []string{"-a", "avg"},
			wantKey: "run.function",
			wantErr: reduce.ErrUnknownFunction,
		},
		{
			name:    "negative skip",
			file:    "run:\n  skipRows: -1\n",
			wantKey: "run.skipRows",
			wantErr: ErrNegativeSkipRows,
		},
		{
			name:    "kafka brokers without topic",
			args:    []string{"--kafka-brokers", "a:9092,b:9092"},
			wantKey: "kafka.topic",
			wantErr: ErrEmptyKafkaTopic,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := ""
			if tc.file != "" {
				path = writeConfig(t, tc.file)
			}

			_, err := loadWithFlags(t, path, tc.args...)
			require.Error(t, err)

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.wantKey, cfgErr.Key)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoad_UnknownPeriodListsChoices(t *testing.T) {
	_, err := loadWithFlags(t, "", "-p", "q")
	require.Error(t, err)

	var upe *period.UnknownPeriodError
	require.True(t, errors.As(err, &upe))
	assert.Contains(t, err.Error(), "daily, weekly, monthly, yearly")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := loadWithFlags(t, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "config", cfgErr.Key)
}

func TestOutputDelimiter(t *testing.T) {
	assert.Equal(t, "\t", outputDelimiter(RunConfig{}))
	assert.Equal(t, ",", outputDelimiter(RunConfig{Delimiter: ","}))
	assert.Equal(t, "|", outputDelimiter(RunConfig{Delimiter: ",", OutputDelimiter: "|"}))
}

func TestBindFlags_UnregisteredFlag(t *testing.T) {
	fs := pflag.NewFlagSet("empty", pflag.ContinueOnError)
	err := BindFlags(viper.New(), fs)
	assert.Error(t, err)
}
