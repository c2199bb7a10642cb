package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sanspareilsmyn/agg/internal/period"
	"github.com/sanspareilsmyn/agg/internal/reduce"
)

// flagBinding ties one command-line flag to a config key.
type flagBinding struct {
	name      string
	shorthand string
	key       string
	register  func(fs *pflag.FlagSet, b flagBinding)
}

func stringFlag(def, usage string) func(*pflag.FlagSet, flagBinding) {
	return func(fs *pflag.FlagSet, b flagBinding) {
		fs.StringP(b.name, b.shorthand, def, usage)
	}
}

func intFlag(def int, usage string) func(*pflag.FlagSet, flagBinding) {
	return func(fs *pflag.FlagSet, b flagBinding) {
		fs.IntP(b.name, b.shorthand, def, usage)
	}
}

func stringSliceFlag(usage string) func(*pflag.FlagSet, flagBinding) {
	return func(fs *pflag.FlagSet, b flagBinding) {
		fs.StringSliceP(b.name, b.shorthand, nil, usage)
	}
}

// flagTable lists every option that maps onto a config key.
var flagTable = []flagBinding{
	{name: "period", shorthand: "p", key: "run.period", register: stringFlag(defaultPeriod,
		fmt.Sprintf("Period of aggregation. Possible values are %s, or their first letter", strings.Join(period.Names(), ", ")))},
	{name: "delim", shorthand: "d", key: "run.delimiter", register: stringFlag(defaultDelimiter,
		"Delimiter separating fields (default whitespace)")},
	{name: "out-delim", shorthand: "o", key: "run.outputDelimiter", register: stringFlag(defaultOutputDelimiter,
		"Delimiter joining output fields (default the input delimiter, or tab)")},
	{name: "skip", shorthand: "n", key: "run.skipRows", register: intFlag(defaultSkipRows,
		"Number of header rows to skip")},
	{name: "agg", shorthand: "a", key: "run.function", register: stringFlag(defaultFunction,
		fmt.Sprintf("Aggregation function. Options include %s", strings.Join(reduce.Names(), ", ")))},
	{name: "log-level", key: "log.level", register: stringFlag(defaultLogLevel,
		"Log level written to stderr")},
	{name: "metrics-file", key: "metrics.textfile", register: stringFlag("",
		"Write run metrics in Prometheus text format to this file")},
	{name: "pushgateway", key: "metrics.pushgateway", register: stringFlag("",
		"Push run metrics to this Prometheus Pushgateway URL")},
	{name: "kafka-brokers", key: "kafka.brokers", register: stringSliceFlag(
		"Also publish aggregated rows to these Kafka brokers")},
	{name: "kafka-topic", key: "kafka.topic", register: stringFlag("",
		"Kafka topic for aggregated rows")},
}

// RegisterFlags defines every option flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	for _, b := range flagTable {
		b.register(fs, b)
	}
}

// BindFlags binds the flags defined by RegisterFlags to their config keys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, b := range flagTable {
		f := fs.Lookup(b.name)
		if f == nil {
			return fmt.Errorf("flag --%s is not registered", b.name)
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", b.name, err)
		}
	}
	return nil
}
