package config

import (
	"errors"
	"fmt"
)

var (
	ErrReadingConfigFile     = errors.New("failed to read config file")
	ErrUnmarshallingConfig   = errors.New("failed to unmarshal config")
	ErrConfigFileMissing     = errors.New("config file not found")
	ErrNegativeSkipRows      = errors.New("header rows to skip cannot be negative")
	ErrEmptyKafkaTopic       = errors.New("kafka topic cannot be empty when brokers are set")
	ErrInvalidKafkaBatchSize = errors.New("kafka batchSize must be positive")
	ErrEmptyMetricsJob       = errors.New("metrics job cannot be empty when a pushgateway is set")
	ErrInvalidFlag           = errors.New("invalid command-line option")
)

// Error is a configuration failure: an unknown or malformed option, a bad
// config file, or a value that fails validation. Key names the offending
// setting when known.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
