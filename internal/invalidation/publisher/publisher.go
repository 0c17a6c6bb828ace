// Package publisher emits catalog change events to Kafka.
package publisher

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/IBM/sarama"

	obs "github.com/mohammed-shakir/wcs-describe/internal/core/observability"
	"github.com/mohammed-shakir/wcs-describe/internal/invalidation"
)

type Publisher struct {
	topic   string
	events  chan invalidation.Event
	prod    sarama.AsyncProducer
	logger  *slog.Logger
	stopped chan struct{}
	errs    chan struct{}
	dropped atomic.Int64
	failed  atomic.Int64
}

// ProducerConfig is the sarama configuration used by New.
func ProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg
}

func New(brokers []string, topic string, queueSize int, logger *slog.Logger) (*Publisher, error) {
	prod, err := sarama.NewAsyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("publisher: create async producer: %w", err)
	}
	return NewWithProducer(prod, topic, queueSize, logger), nil
}

// NewWithProducer wraps an existing producer. The publisher owns it and
// closes it on Close.
func NewWithProducer(prod sarama.AsyncProducer, topic string, queueSize int, logger *slog.Logger) *Publisher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Publisher{
		topic:   topic,
		events:  make(chan invalidation.Event, queueSize),
		prod:    prod,
		logger:  logger,
		stopped: make(chan struct{}),
		errs:    make(chan struct{}),
	}

	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := ev.Encode()
			if err != nil {
				p.logger.Error("catalog event encode failed", "err", err)
				continue
			}
			// keyed by coverage so one coverage's events stay on one partition
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   sarama.StringEncoder(ev.CoverageID),
				Value: sarama.ByteEncoder(b),
			}
		}
	}()

	go func() {
		defer close(p.errs)
		for err := range p.prod.Errors() {
			if err != nil {
				p.failed.Add(1)
				obs.IncKafkaError("produce")
				p.logger.Error("catalog event produce failed", "err", err)
			}
		}
	}()

	return p
}

// Publish validates and enqueues ev. It never blocks; a full queue drops
// the event and returns false.
func (p *Publisher) Publish(ev invalidation.Event) (bool, error) {
	if err := ev.Validate(); err != nil {
		return false, fmt.Errorf("publisher: %w", err)
	}
	select {
	case p.events <- ev:
		return true, nil
	default:
		p.dropped.Add(1)
		return false, nil
	}
}

// Dropped counts events discarded because the queue was full.
func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

// Failed counts events the producer reported as not delivered.
func (p *Publisher) Failed() int64 { return p.failed.Load() }

// Close flushes queued events and closes the producer.
func (p *Publisher) Close() error {
	close(p.events)
	<-p.stopped

	err := p.prod.Close()
	<-p.errs
	if err != nil {
		return fmt.Errorf("publisher: close producer: %w", err)
	}
	return nil
}
