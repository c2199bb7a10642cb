package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/agg/internal/config"
	"github.com/sanspareilsmyn/agg/internal/record"
)

// Pipeline orchestrates the stages of one run: read, parse, sort,
// aggregate, emit, then export run metrics.
type Pipeline struct {
	cfg     *config.Config
	emitter Emitter
	metrics *Metrics
	logger  *zap.Logger
}

// New creates and wires up a pipeline. Delimited rows are written to out;
// a Kafka emitter is added when brokers are configured.
func New(cfg *config.Config, out io.Writer, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	emitters := MultiEmitter{NewDelimitedEmitter(out, cfg.Options.OutputDelimiter)}
	initLogger.Debug("Delimited emitter created", zap.String("delimiter", cfg.Options.OutputDelimiter))

	if cfg.Kafka.Enabled() {
		kafkaEmitter, err := NewKafkaEmitter(cfg.Kafka, cfg.Options.Period, cfg.Options.Func, logger.Named("kafka"))
		if err != nil {
			initLogger.Error("Failed to create Kafka emitter", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrEmitterCreationFailed, err)
		}
		emitters = append(emitters, kafkaEmitter)
	}

	return newPipeline(cfg, emitters, logger), nil
}

func newPipeline(cfg *config.Config, emitter Emitter, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		emitter: emitter,
		metrics: NewMetrics(),
		logger:  logger.Named("pipeline"),
	}
}

// Metrics returns the run metrics.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Run executes the pipeline once. stdin is read when the configured input
// is empty or "-". Rows are emitted only after the whole input has been
// aggregated, so a parse failure produces no output at all.
func (p *Pipeline) Run(ctx context.Context, stdin io.Reader) error {
	started := time.Now()

	err := p.run(ctx, stdin)

	if closeErr := p.emitter.Close(ctx); closeErr != nil && err == nil {
		err = fmt.Errorf("%w: %w", ErrEmitFailed, closeErr)
	}

	p.metrics.observeRun(started, err)
	if exportErr := p.exportMetrics(ctx); exportErr != nil {
		p.logger.Error("Metrics export failed", zap.Error(exportErr))
		if err == nil {
			err = exportErr
		}
	}

	if err != nil {
		p.logger.Debug("Pipeline run failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return err
	}
	p.logger.Info("Pipeline run complete", zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (p *Pipeline) run(ctx context.Context, stdin io.Reader) error {
	opts := p.cfg.Options

	records, err := p.readRecords(ctx, stdin)
	if err != nil {
		var dpe *record.DateParseError
		if errors.As(err, &dpe) {
			p.metrics.observeFailure(failureTimestamp)
		}
		return err
	}
	p.metrics.observeRecords(len(records))
	p.logger.Info("Input read", zap.Int("records", len(records)))

	var rows []AggregatedRow
	engine := NewEngine(opts.Period, opts.Func, p.metrics, p.logger.Named("engine"))
	err = engine.Fold(records, func(row AggregatedRow) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := p.emitter.Emit(ctx, row); err != nil {
			return fmt.Errorf("%w: %w", ErrEmitFailed, err)
		}
	}
	p.logger.Info("Rows emitted", zap.Int("rows", len(rows)))
	return nil
}

// readRecords opens the input, drains it and releases it before returning.
func (p *Pipeline) readRecords(ctx context.Context, stdin io.Reader) ([]record.Record, error) {
	opts := p.cfg.Options
	readOpts := record.ReadOptions{
		Splitter: record.Splitter{Delimiter: opts.Delimiter},
		SkipRows: opts.SkipRows,
	}

	if opts.ReadsStdin() {
		p.logger.Debug("Reading from standard input")
		return record.ReadAll(ctx, stdin, readOpts)
	}

	p.logger.Debug("Reading from file", zap.String("path", opts.Input))
	f, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputOpenFailed, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			p.logger.Warn("Failed to close input file", zap.String("path", opts.Input), zap.Error(err))
		}
	}()

	return record.ReadAll(ctx, f, readOpts)
}

func (p *Pipeline) exportMetrics(ctx context.Context) error {
	mc := p.cfg.Metrics
	var errs []error
	if mc.TextfilePath != "" {
		if err := p.metrics.WriteTextfile(mc.TextfilePath); err != nil {
			errs = append(errs, err)
		}
	}
	if mc.PushgatewayURL != "" {
		if err := p.metrics.Push(ctx, mc.PushgatewayURL, mc.Job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
