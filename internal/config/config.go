package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/sanspareilsmyn/agg/internal/period"
	"github.com/sanspareilsmyn/agg/internal/reduce"
)

const (
	defaultPeriod          = "daily"
	defaultFunction        = "sum"
	defaultDelimiter       = ""
	defaultOutputDelimiter = ""
	defaultSkipRows        = 0
	defaultInput           = ""
	defaultLogLevel        = "warn"
	defaultLogFormat       = "console"
	defaultLogFileEnabled  = false
	defaultLogDirectory    = "log"
	defaultLogFilename     = "agg.log"
	defaultLogMaxSizeMB    = 100
	defaultLogMaxBackups   = 3
	defaultLogMaxAgeDays   = 7
	defaultLogCompress     = false
	defaultMetricsJob      = "agg"
	defaultKafkaBatchSize  = 100

	// Environment variable prefix
	envPrefix = "AGG"

	// StdinInput selects standard input explicitly.
	StdinInput = "-"
)

type Config struct {
	Run     RunConfig     `mapstructure:"run"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`

	// Options is resolved from Run by Load.
	Options Options `mapstructure:"-"`
}

// RunConfig is the raw, string-typed form of the aggregation options.
type RunConfig struct {
	Period          string `mapstructure:"period"`
	Function        string `mapstructure:"function"`
	Delimiter       string `mapstructure:"delimiter"`
	OutputDelimiter string `mapstructure:"outputDelimiter"`
	SkipRows        int    `mapstructure:"skipRows"`
	Input           string `mapstructure:"input"` // file path; empty or "-" for stdin
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"` // console | json
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

type MetricsConfig struct {
	TextfilePath   string `mapstructure:"textfile"`
	PushgatewayURL string `mapstructure:"pushgateway"`
	Job            string `mapstructure:"job"`
}

type KafkaConfig struct {
	Brokers   []string `mapstructure:"brokers"`
	Topic     string   `mapstructure:"topic"`
	BatchSize int      `mapstructure:"batchSize"`
}

// Enabled reports whether aggregated rows should also go to Kafka.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Options are the validated, typed aggregation options of one run.
type Options struct {
	Period          period.Kind
	Func            reduce.Func
	Delimiter       string // empty splits on whitespace runs
	OutputDelimiter string
	SkipRows        int
	Input           string
}

// ReadsStdin reports whether the input is standard input.
func (o Options) ReadsStdin() bool {
	return o.Input == "" || o.Input == StdinInput
}

// Load configures v, applies defaults, reads the optional config file,
// unmarshals and validates. Flags must already be bound to v.
// Every failure is returned as *Error.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	configureViper(v, configPath)

	setDefaults(v)

	if configPath != "" {
		if err := readConfigFile(v); err != nil {
			return nil, &Error{Key: "config", Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)}
	}

	opts, err := validateConfig(&cfg)
	if err != nil {
		return nil, err
	}
	cfg.Options = opts

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("run.period", defaultPeriod)
	v.SetDefault("run.function", defaultFunction)
	v.SetDefault("run.delimiter", defaultDelimiter)
	v.SetDefault("run.outputDelimiter", defaultOutputDelimiter)
	v.SetDefault("run.skipRows", defaultSkipRows)
	v.SetDefault("run.input", defaultInput)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.job", defaultMetricsJob)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "")
	v.SetDefault("kafka.batchSize", defaultKafkaBatchSize)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) (Options, error) {
	kind, err := period.Parse(cfg.Run.Period)
	if err != nil {
		return Options{}, &Error{Key: "run.period", Err: err}
	}
	fn, err := reduce.Parse(cfg.Run.Function)
	if err != nil {
		return Options{}, &Error{Key: "run.function", Err: err}
	}
	if cfg.Run.SkipRows < 0 {
		return Options{}, &Error{Key: "run.skipRows", Err: ErrNegativeSkipRows}
	}
	if cfg.Kafka.Enabled() && cfg.Kafka.Topic == "" {
		return Options{}, &Error{Key: "kafka.topic", Err: ErrEmptyKafkaTopic}
	}
	if cfg.Kafka.BatchSize <= 0 {
		return Options{}, &Error{Key: "kafka.batchSize", Err: ErrInvalidKafkaBatchSize}
	}
	if cfg.Metrics.PushgatewayURL != "" && cfg.Metrics.Job == "" {
		return Options{}, &Error{Key: "metrics.job", Err: ErrEmptyMetricsJob}
	}

	return Options{
		Period:          kind,
		Func:            fn,
		Delimiter:       cfg.Run.Delimiter,
		OutputDelimiter: outputDelimiter(cfg.Run),
		SkipRows:        cfg.Run.SkipRows,
		Input:           cfg.Run.Input,
	}, nil
}

// outputDelimiter joins output with the explicit override, else the input
// delimiter, else a tab when input is split on whitespace.
func outputDelimiter(run RunConfig) string {
	if run.OutputDelimiter != "" {
		return run.OutputDelimiter
	}
	if run.Delimiter != "" {
		return run.Delimiter
	}
	return "\t"
}
