package kafkaconsumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	obs "github.com/mohammed-shakir/wcs-describe/internal/core/observability"
	"github.com/mohammed-shakir/wcs-describe/internal/invalidation"
	mylog "github.com/mohammed-shakir/wcs-describe/internal/logger"
)

// Invalidator evicts cached documents mentioning a coverage.
type Invalidator interface {
	InvalidateCoverage(ctx context.Context, id string) (int, error)
}

// Reloader re-reads the coverage catalog. Every event reloads it before
// evicting documents.
type Reloader interface {
	Reload() error
}

type Consumer struct {
	cfg      Config
	logger   *slog.Logger
	zlog     *zerolog.Logger
	store    Invalidator
	reloader Reloader
	revs     *revisionDedupe
	assigned atomic.Bool
}

// New builds a consumer. zl and reloader may be nil.
func New(cfg Config, logger *slog.Logger, zl *zerolog.Logger, store Invalidator, reloader Reloader) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Consumer{
		cfg:      cfg,
		logger:   logger,
		zlog:     zl,
		store:    store,
		reloader: reloader,
		revs:     newRevisionDedupe(cfg.DedupeSize),
	}
}

// Ready reports whether the group currently holds partition claims.
func (c *Consumer) Ready() bool { return c.assigned.Load() }

// consumes catalog events from kafka until ctx is done
func (c *Consumer) Start(ctx context.Context) error {
	if c.store == nil {
		return errors.New("kafkaconsumer: missing document store")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		obs.IncKafkaError("connect")
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne, assigned: &c.assigned}

	c.logger.Info("catalog event consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("catalog event consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				obs.IncKafkaError("consume")
				c.zerolog(ctx).Error().Err(err).
					Strs("brokers", c.cfg.Brokers).
					Str("topic", c.cfg.Topic).
					Msg("kafka consumer error")
				select {
				case <-ctx.Done():
				case <-time.After(2 * time.Second):
				}
			}
		}
	}
}

func (c *Consumer) zerolog(ctx context.Context) *zerolog.Logger {
	return mylog.FromContext(mylog.WithComponent(ctx, "kafka_consumer"), c.zlog)
}

// ProcessOne applies a single catalog event. A nil return means the message
// may be marked.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ev, err := invalidation.Decode(msg.Value)
	if err != nil {
		// a malformed event never becomes valid, so it is logged and skipped
		obs.IncKafkaError("decode")
		obs.ObserveInvalidation("unknown", "invalid", 0)
		c.zerolog(ctx).Error().Err(err).
			Str("kind", "decode").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("kafka error")
		return nil
	}

	if ev.Op == invalidation.OpReload {
		return c.reload(ctx, ev)
	}

	if c.revs.seen(ev.CoverageID, ev.Revision) {
		obs.ObserveInvalidation(ev.Op, "skip_revision", 0)
		c.logger.DebugContext(ctx, "stale catalog event skipped",
			"coverage_id", ev.CoverageID, "revision", ev.Revision)
		return nil
	}

	// the snapshot must change before eviction, otherwise the next request
	// re-renders and re-caches the old coverage
	if c.reloader != nil {
		if err := c.reloader.Reload(); err != nil {
			obs.IncKafkaError("reload")
			obs.ObserveInvalidation(ev.Op, "error", 0)
			c.zerolog(ctx).Error().Err(err).
				Str("kind", "reload").
				Str("coverage_id", ev.CoverageID).
				Int32("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("kafka error")
			return fmt.Errorf("catalog reload for %q: %w", ev.CoverageID, err)
		}
	}

	n, err := c.store.InvalidateCoverage(ctx, ev.CoverageID)
	if err != nil {
		obs.IncKafkaError("invalidate")
		obs.ObserveInvalidation(ev.Op, "error", 0)
		c.zerolog(ctx).Error().Err(err).
			Str("kind", "invalidate").
			Str("coverage_id", ev.CoverageID).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("kafka error")
		return fmt.Errorf("invalidate %q: %w", ev.CoverageID, err)
	}
	c.revs.record(ev.CoverageID, ev.Revision)

	obs.ObserveInvalidation(ev.Op, "ok", n)
	c.zerolog(mylog.WithCoverageIDs(ctx, []string{ev.CoverageID})).Info().
		Str("event", "invalidation").
		Str("op", ev.Op).
		Uint64("revision", ev.Revision).
		Int("documents", n).
		Msg("invalidated documents")
	return nil
}

func (c *Consumer) reload(ctx context.Context, ev invalidation.Event) error {
	if c.reloader == nil {
		obs.ObserveInvalidation(ev.Op, "ignored", 0)
		return nil
	}
	if err := c.reloader.Reload(); err != nil {
		obs.IncKafkaError("reload")
		obs.ObserveInvalidation(ev.Op, "error", 0)
		return fmt.Errorf("catalog reload: %w", err)
	}
	n := 0
	if ev.CoverageID != "" {
		var err error
		if n, err = c.store.InvalidateCoverage(ctx, ev.CoverageID); err != nil {
			obs.IncKafkaError("invalidate")
			obs.ObserveInvalidation(ev.Op, "error", 0)
			return fmt.Errorf("invalidate %q: %w", ev.CoverageID, err)
		}
	}
	obs.ObserveInvalidation(ev.Op, "ok", n)
	c.logger.InfoContext(ctx, "catalog reloaded by event", "source", ev.Source, "documents", n)
	return nil
}
