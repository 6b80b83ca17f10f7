package scan

import (
	"context"
	"log/slog"

	"github.com/devcybiko/junk-email/aggregate"
	"github.com/devcybiko/junk-email/extract"
	"github.com/devcybiko/junk-email/filter"
	"github.com/devcybiko/junk-email/model"
	"github.com/devcybiko/junk-email/stats"
)

// Source yields the records of a mailbox folder one at a time. Iteration is
// finite; the callback is invoked sequentially and a callback error aborts
// the scan. Retrieval errors for individual messages are delivered via
// env.Err so the scan can count them and keep going.
type Source interface {
	Scan(ctx context.Context, fn func(env model.Envelope) error) error
}

// Options configures a Scanner.
type Options struct {
	Filter    *filter.Filter
	Collector *stats.Collector
	Logger    *slog.Logger

	// Progress, when set, is called once per scanned message.
	Progress func()

	// OnError, when set, is called for each message-level retrieval error.
	OnError func(error)
}

// Scanner folds a source's records into an aggregator: per message it
// extracts addresses from sender, subject and body, unions them, and observes
// the union once. A message therefore contributes at most one increment per
// distinct address no matter how often the address repeats across its fields.
type Scanner struct {
	agg       *aggregate.Aggregator
	filter    *filter.Filter
	collector *stats.Collector
	logger    *slog.Logger
	progress  func()
	onError   func(error)
}

func New(agg *aggregate.Aggregator, opts Options) *Scanner {
	collector := opts.Collector
	if collector == nil {
		collector = stats.NewCollector()
	}
	return &Scanner{
		agg:       agg,
		filter:    opts.Filter,
		collector: collector,
		logger:    opts.Logger,
		progress:  opts.Progress,
		onError:   opts.OnError,
	}
}

// Run consumes the source to completion. Per-message retrieval errors are
// counted but do not stop the scan; a source-level error does.
func (s *Scanner) Run(ctx context.Context, src Source) error {
	return src.Scan(ctx, func(env model.Envelope) error {
		if s.progress != nil {
			s.progress()
		}

		if env.Err != nil {
			s.collector.Apply(stats.Event{Type: stats.EventTypeError, Err: env.Err})
			if s.onError != nil {
				s.onError(env.Err)
			}
			if s.logger != nil {
				s.logger.Warn("message skipped", "err", env.Err)
			}
			return nil
		}

		s.collector.Apply(stats.Event{Type: stats.EventTypeScanned})

		rec := env.Record
		if s.filter != nil && !s.filter.Allows(rec) {
			s.collector.Apply(stats.Event{Type: stats.EventTypeFiltered})
			return nil
		}

		addrs := s.observe(rec)
		if len(addrs) == 0 {
			s.collector.Apply(stats.Event{Type: stats.EventTypeEmpty})
			return nil
		}

		s.collector.Apply(stats.Event{Type: stats.EventTypeMatched, Addresses: len(addrs)})
		if s.logger != nil {
			s.logger.Debug("addresses observed", "count", len(addrs), "sender", rec.Sender)
		}
		return nil
	})
}

// observe extracts from the three fields independently and feeds the union to
// the aggregator in a single call.
func (s *Scanner) observe(rec model.Record) []string {
	union := make(map[string]struct{})
	for _, field := range []string{rec.Sender, rec.Subject, rec.Body} {
		for _, addr := range extract.Addresses(field) {
			union[addr] = struct{}{}
		}
	}

	if len(union) == 0 {
		return nil
	}

	addrs := make([]string, 0, len(union))
	for addr := range union {
		addrs = append(addrs, addr)
	}

	s.agg.Observe(addrs)
	return addrs
}

// Summary returns the statistics accumulated so far.
func (s *Scanner) Summary() stats.Summary {
	return s.collector.Snapshot()
}
