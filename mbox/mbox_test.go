package mbox

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devcybiko/junk-email/model"
)

const testMbox = `From spammer@junk.example.com Mon Jan  5 10:00:00 2026
From: "Spammer" <spammer@junk.example.com>
To: victim@example.org
Subject: Win big
Content-Type: text/plain

Contact prize@lottery.example.net now!

From other@junk.example.com Mon Jan  5 11:00:00 2026
From: other@junk.example.com
Subject: Re: hello
Content-Type: text/plain

Just words, no addresses in this body.
`

func writeTestMbox(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mbox")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScan(t *testing.T) {
	path := writeTestMbox(t, testMbox)

	src, err := NewSource(path, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	var recs []model.Record
	err = src.Scan(context.Background(), func(env model.Envelope) error {
		if env.Err != nil {
			t.Errorf("unexpected envelope error: %v", env.Err)
			return nil
		}
		recs = append(recs, env.Record)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	if !strings.Contains(recs[0].Sender, "spammer@junk.example.com") {
		t.Errorf("first Sender = %q", recs[0].Sender)
	}
	if recs[0].Subject != "Win big" {
		t.Errorf("first Subject = %q, want %q", recs[0].Subject, "Win big")
	}
	if !strings.Contains(recs[0].Body, "prize@lottery.example.net") {
		t.Errorf("first Body = %q, want lottery address", recs[0].Body)
	}

	if recs[1].Subject != "Re: hello" {
		t.Errorf("second Subject = %q, want %q", recs[1].Subject, "Re: hello")
	}
}

func TestScan_EmptyPath(t *testing.T) {
	if _, err := NewSource("   ", nil); err == nil {
		t.Error("NewSource with blank path should fail")
	}
}

func TestScan_MissingFile(t *testing.T) {
	src, err := NewSource(filepath.Join(t.TempDir(), "nope.mbox"), nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	err = src.Scan(context.Background(), func(model.Envelope) error { return nil })
	if err == nil {
		t.Error("Scan() on missing file should fail")
	}
}

func TestScan_ContextCancelled(t *testing.T) {
	path := writeTestMbox(t, testMbox)

	src, err := NewSource(path, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = src.Scan(ctx, func(model.Envelope) error { return nil })
	if err != context.Canceled {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}

func TestCount(t *testing.T) {
	path := writeTestMbox(t, testMbox)

	count, err := Count(path)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestCount_MissingFile(t *testing.T) {
	if _, err := Count(filepath.Join(t.TempDir(), "nope.mbox")); err == nil {
		t.Error("Count() on missing file should fail")
	}
}
