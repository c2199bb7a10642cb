package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/agg/internal/config"
	"github.com/sanspareilsmyn/agg/internal/period"
	"github.com/sanspareilsmyn/agg/internal/reduce"
)

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// messageWriter is the subset of *kafka.Writer the emitter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RowMessage is the JSON payload published for each aggregated row.
// Values holds nil for columns without observations.
type RowMessage struct {
	Label    string     `json:"label"`
	Period   string     `json:"period"`
	Function string     `json:"function"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	Values   []*float64 `json:"values"`
	Counts   []int      `json:"counts"`
}

// KafkaEmitter publishes rows to a Kafka topic, keyed by period label.
// Messages are batched and written when the batch fills and on Close.
type KafkaEmitter struct {
	writer    messageWriter
	kind      period.Kind
	fn        reduce.Func
	batchSize int
	pending   []kafka.Message
	logger    *zap.Logger
}

// NewKafkaEmitter creates and configures a Kafka-backed emitter.
func NewKafkaEmitter(cfg config.KafkaConfig, kind period.Kind, fn reduce.Func, logger *zap.Logger) (*KafkaEmitter, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" || cfg.BatchSize <= 0 {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
			zap.Int("batch_size", cfg.BatchSize),
		)
		return nil, ErrInvalidKafkaConfig
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		RequiredAcks: kafka.RequireAll,
		Logger:       kafkaZapLogger{logger.Named("kafka-writer")},
		ErrorLogger:  kafkaZapErrorLogger{logger.Named("kafka-writer-error")},
	}

	logger.Info("Kafka emitter created",
		zap.String("topic", cfg.Topic),
		zap.Strings("brokers", cfg.Brokers),
		zap.Int("batch_size", cfg.BatchSize),
	)

	return newKafkaEmitter(w, kind, fn, cfg.BatchSize, logger), nil
}

func newKafkaEmitter(w messageWriter, kind period.Kind, fn reduce.Func, batchSize int, logger *zap.Logger) *KafkaEmitter {
	return &KafkaEmitter{
		writer:    w,
		kind:      kind,
		fn:        fn,
		batchSize: batchSize,
		logger:    logger,
	}
}

// NewRowMessage builds the published payload for row.
func NewRowMessage(row AggregatedRow, kind period.Kind, fn reduce.Func) RowMessage {
	msg := RowMessage{
		Label:    row.Label,
		Period:   kind.String(),
		Function: fn.String(),
		Start:    row.Start,
		End:      row.End,
		Values:   make([]*float64, len(row.Values)),
		Counts:   make([]int, len(row.Values)),
	}
	for i, v := range row.Values {
		msg.Counts[i] = v.Count
		// JSON has no NaN or Inf; those publish as null like blank columns.
		if v.Blank() || math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			continue
		}
		value := v.Value
		msg.Values[i] = &value
	}
	return msg
}

func (k *KafkaEmitter) Emit(ctx context.Context, row AggregatedRow) error {
	payload, err := json.Marshal(NewRowMessage(row, k.kind, k.fn))
	if err != nil {
		return fmt.Errorf("encoding row %s: %w", row.Label, err)
	}
	k.pending = append(k.pending, kafka.Message{Key: []byte(row.Label), Value: payload})

	if len(k.pending) >= k.batchSize {
		return k.flush(ctx)
	}
	return nil
}

func (k *KafkaEmitter) flush(ctx context.Context) error {
	if len(k.pending) == 0 {
		return nil
	}
	if err := k.writer.WriteMessages(ctx, k.pending...); err != nil {
		k.logger.Error("Error writing messages to Kafka", zap.Int("messages", len(k.pending)), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrKafkaWriteFailed, err)
	}
	k.logger.Debug("Wrote messages to Kafka", zap.Int("messages", len(k.pending)))
	k.pending = k.pending[:0]
	return nil
}

// Close writes any pending messages and closes the writer.
func (k *KafkaEmitter) Close(ctx context.Context) error {
	flushErr := k.flush(ctx)
	if err := k.writer.Close(); err != nil {
		k.logger.Error("Failed to close Kafka writer cleanly", zap.Error(err))
		if flushErr == nil {
			return err
		}
	}
	return flushErr
}
