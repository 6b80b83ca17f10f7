package mbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/devcybiko/junk-email/message"
	"github.com/devcybiko/junk-email/model"
)

// Source reads scan records from a local mbox archive. It is the offline
// counterpart of the IMAP source: same record stream, no server.
type Source struct {
	path   string
	logger *slog.Logger
}

func NewSource(path string, logger *slog.Logger) (*Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("mbox path is empty")
	}
	return &Source{path: path, logger: logger}, nil
}

// Scan iterates the archive's messages in file order. Messages that cannot
// be read are delivered as error envelopes; a broken mbox stream ends the
// scan after reporting the error.
func (s *Source) Scan(ctx context.Context, fn func(model.Envelope) error) error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)

	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return s.emitError(fn, idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return s.emitError(fn, idx, fmt.Errorf("read: %w", err))
		}

		rec := message.Parse(raw)
		if err := fn(model.Envelope{Record: rec}); err != nil {
			return err
		}
	}
}

func (s *Source) emitError(fn func(model.Envelope) error, idx int, err error) error {
	err = fmt.Errorf("message %d: %w", idx, err)
	if s.logger != nil {
		s.logger.Error("mbox stream error", "path", s.path, "err", err)
	}
	return fn(model.Envelope{Err: err})
}

// Count returns the total number of messages in the archive without parsing
// them. Used to size the progress bar before a scan.
func Count(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)

	count := 0
	for {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return 0, err
		}

		// the message only needs to be consumed, not read successfully
		_, _ = io.Copy(io.Discard, msgReader)
		count++
	}
}
