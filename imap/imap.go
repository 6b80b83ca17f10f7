package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	imapv2 "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/devcybiko/junk-email/message"
	"github.com/devcybiko/junk-email/model"
)

const (
	defaultFolder    = "Junk"
	defaultBatchSize = 100
)

type Options struct {
	Host               string
	Port               int
	Username           string
	Password           string
	UseTLS             bool
	InsecureSkipVerify bool
	Folder             string
	BatchSize          int

	// Limit caps the number of messages scanned, newest first. Zero means
	// the whole folder.
	Limit int

	// HeadersOnly skips body fetching entirely: only the envelope's sender
	// and subject are scanned. Much faster on large folders.
	HeadersOnly bool

	// OnSelect is called once with the number of messages that will be
	// scanned, after a successful SELECT and before any fetching. Used to
	// size the progress bar.
	OnSelect func(total int)
}

// Source streams scan records from a folder on an IMAP server, newest first,
// fetching in batches. Connection, login and folder-selection failures are
// fatal; failures on individual fetches are delivered as error envelopes.
type Source struct {
	opts   Options
	logger *slog.Logger
}

func NewSource(opts Options, logger *slog.Logger) (*Source, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("imap host is empty")
	}
	if opts.Port <= 0 {
		return nil, fmt.Errorf("imap port must be positive")
	}
	if opts.Folder == "" {
		opts.Folder = defaultFolder
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Source{opts: opts, logger: logger}, nil
}

func (s *Source) Scan(ctx context.Context, fn func(model.Envelope) error) error {
	client, cleanup, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	selectData, err := client.Select(s.opts.Folder, &imapv2.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return fmt.Errorf("select folder %s: %w", s.opts.Folder, err)
	}

	total := int(selectData.NumMessages)
	if s.logger != nil {
		s.logger.Info("folder selected", "folder", s.opts.Folder, "messages", total)
	}
	if s.opts.OnSelect != nil {
		s.opts.OnSelect(s.boundedTotal(total))
	}
	if total == 0 {
		return nil
	}

	bodySection := &imapv2.FetchItemBodySection{Peek: true}
	fetchOptions := &imapv2.FetchOptions{
		Envelope: true,
		UID:      true,
	}
	if !s.opts.HeadersOnly {
		fetchOptions.BodySection = []*imapv2.FetchItemBodySection{bodySection}
	}

	// Walk sequence numbers from the top of the mailbox down so the newest
	// messages are scanned first, batch by batch.
	remaining := s.boundedTotal(total)
	for end := uint32(total); end >= 1 && remaining > 0; {
		start := uint32(1)
		if batch := uint32(s.opts.BatchSize); end > batch {
			start = end - batch + 1
		}
		if remaining < int(end-start+1) {
			start = end - uint32(remaining) + 1
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		seqSet := imapv2.SeqSet{}
		seqSet.AddRange(start, end)

		msgs, fetchErr := client.Fetch(seqSet, fetchOptions).Collect()
		if fetchErr != nil {
			var emitErr error
			remaining, emitErr = emitBatchFailure(fn, start, end, remaining, fetchErr)
			if emitErr != nil {
				return emitErr
			}
		} else {
			// Collect returns ascending sequence numbers; deliver newest first.
			for i := len(msgs) - 1; i >= 0 && remaining > 0; i-- {
				if err := fn(s.record(msgs[i], bodySection)); err != nil {
					return err
				}
				remaining--
			}
		}

		if start == 1 {
			break
		}
		end = start - 1
	}

	return nil
}

// emitBatchFailure delivers one error envelope per message in the failed
// batch's span, so downstream progress and error counts still account for
// every message the SELECT promised. Returns the updated remaining count.
func emitBatchFailure(fn func(model.Envelope) error, start, end uint32, remaining int, cause error) (int, error) {
	batchErr := fmt.Errorf("fetch messages %d:%d: %w", start, end, cause)
	for n := int(end - start + 1); n > 0 && remaining > 0; n-- {
		if err := fn(model.Envelope{Err: batchErr}); err != nil {
			return remaining, err
		}
		remaining--
	}
	return remaining, nil
}

func (s *Source) boundedTotal(total int) int {
	if s.opts.Limit > 0 && total > s.opts.Limit {
		return s.opts.Limit
	}
	return total
}

func (s *Source) record(buf *imapclient.FetchMessageBuffer, section *imapv2.FetchItemBodySection) model.Envelope {
	rec := recordFromEnvelope(buf.Envelope)

	if !s.opts.HeadersOnly {
		raw := buf.FindBodySection(section)
		if raw == nil {
			return model.Envelope{Err: fmt.Errorf("message uid %d: no body section returned", buf.UID)}
		}
		parsed := message.Parse(raw)
		rec.Body = parsed.Body
		// the envelope is authoritative for sender and subject; fall back to
		// the parsed headers only when it is missing
		if rec.Sender == "" {
			rec.Sender = parsed.Sender
		}
		if rec.Subject == "" {
			rec.Subject = parsed.Subject
		}
	}

	return model.Envelope{Record: rec}
}

func recordFromEnvelope(env *imapv2.Envelope) model.Record {
	if env == nil {
		return model.Record{}
	}

	rec := model.Record{Subject: env.Subject}

	if len(env.From) > 0 {
		from := env.From[0]
		if from.Name != "" {
			rec.Sender = fmt.Sprintf("%s <%s>", from.Name, from.Addr())
		} else {
			rec.Sender = from.Addr()
		}
	}

	return rec
}

func (s *Source) dial(ctx context.Context) (*imapclient.Client, func(), error) {
	address := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	options := &imapclient.Options{}

	if s.opts.UseTLS {
		options.TLSConfig = &tls.Config{
			ServerName:         s.opts.Host,
			InsecureSkipVerify: s.opts.InsecureSkipVerify,
		}
	}

	var (
		client *imapclient.Client
		err    error
	)

	if s.opts.UseTLS {
		client, err = imapclient.DialTLS(address, options)
	} else {
		client, err = imapclient.DialInsecure(address, options)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("dial imap %s: %w", address, err)
	}

	if err := client.Login(s.opts.Username, s.opts.Password).Wait(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("imap login failed: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("imap connection established", "address", address, "user", s.opts.Username, "tls", s.opts.UseTLS)
	}

	stopClose := context.AfterFunc(ctx, func() {
		_ = client.Close()
	})

	cleanup := func() {
		stopClose()
		if ctx.Err() == nil {
			if err := client.Logout().Wait(); err != nil {
				if s.logger != nil {
					s.logger.Warn("imap logout failed", "err", err)
				}
			}
		}
		if err := client.Close(); err != nil && s.logger != nil {
			s.logger.Debug("imap connection closed", "err", err)
		}
	}

	return client, cleanup, nil
}
