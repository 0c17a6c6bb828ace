package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/wcs-describe/internal/invalidation"
	"github.com/mohammed-shakir/wcs-describe/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/wcs-describe/internal/invalidation/publisher"
)

type publishOptions struct {
	brokers  string
	topic    string
	op       string
	revision uint64
	source   string
}

func newPublishCmd() *cobra.Command {
	opts := publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish [flags] [ID...]",
		Short: "Publish catalog change events so running servers evict cached documents",
		Long: `Send one catalog event per coverage id to the invalidation topic.
With --op reload no id is needed and every server re-reads its catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := buildEvents(opts, args, time.Now().UTC())
			if err != nil {
				return err
			}
			p, err := publisher.New(kafkaconsumer.SplitCSV(opts.brokers), opts.topic, len(events), nil)
			if err != nil {
				return err
			}
			for _, ev := range events {
				if _, err := p.Publish(ev); err != nil {
					_ = p.Close()
					return err
				}
			}
			if err := p.Close(); err != nil {
				return err
			}
			if n := p.Failed() + p.Dropped(); n > 0 {
				return fmt.Errorf("%d event(s) were not delivered", n)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %d event(s) to %s\n", len(events), opts.topic)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.brokers, "brokers", "localhost:9092", "comma separated Kafka brokers")
	f.StringVar(&opts.topic, "topic", kafkaconsumer.DefaultTopic, "catalog event topic")
	f.StringVar(&opts.op, "op", invalidation.OpUpdate, "event op: insert|update|delete|reload")
	f.Uint64Var(&opts.revision, "revision", 0, "catalog revision (defaults to the current time in nanoseconds)")
	f.StringVar(&opts.source, "source", "describe-coverage", "event source tag")
	return cmd
}

func buildEvents(opts publishOptions, ids []string, now time.Time) ([]invalidation.Event, error) {
	op := strings.ToLower(strings.TrimSpace(opts.op))
	rev := opts.revision
	if rev == 0 {
		rev = uint64(now.UnixNano())
	}
	base := invalidation.Event{Version: 1, Op: op, Revision: rev, TS: now, Source: opts.source}

	if op == invalidation.OpReload && len(ids) == 0 {
		if err := base.Validate(); err != nil {
			return nil, err
		}
		return []invalidation.Event{base}, nil
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one coverage id is required for op %q", op)
	}
	events := make([]invalidation.Event, 0, len(ids))
	for _, id := range ids {
		ev := base
		ev.CoverageID = id
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
