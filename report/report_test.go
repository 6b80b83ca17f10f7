package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devcybiko/junk-email/aggregate"
)

func buildReport(t *testing.T) Report {
	t.Helper()
	agg := aggregate.New()
	agg.Observe([]string{"a@x.com", "b@x.com"})
	agg.Observe([]string{"a@x.com"})
	return Build(agg)
}

func TestRender(t *testing.T) {
	rep := buildReport(t)

	var buf bytes.Buffer
	if err := rep.Render(&buf, 0); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Found 2 unique email addresses\n") {
		t.Errorf("missing total line, got:\n%s", out)
	}

	aIdx := strings.Index(out, "a@x.com")
	bIdx := strings.Index(out, "b@x.com")
	if aIdx < 0 || bIdx < 0 || aIdx > bIdx {
		t.Errorf("rows out of order, got:\n%s", out)
	}
}

func TestRenderDeterministic(t *testing.T) {
	render := func() string {
		agg := aggregate.New()
		agg.Observe([]string{"z@x.com", "a@x.com", "m@x.com"})
		agg.Observe([]string{"m@x.com"})
		var buf bytes.Buffer
		if err := Build(agg).Render(&buf, 0); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		return buf.String()
	}

	if first, second := render(), render(); first != second {
		t.Errorf("renders differ:\n%s\nvs\n%s", first, second)
	}
}

func TestRenderTopLimit(t *testing.T) {
	agg := aggregate.New()
	agg.Observe([]string{"a@x.com", "b@x.com", "c@x.com"})

	var buf bytes.Buffer
	if err := Build(agg).Render(&buf, 2); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "c@x.com") {
		t.Errorf("row beyond top limit rendered:\n%s", out)
	}
	if !strings.Contains(out, "and 1 more") {
		t.Errorf("missing truncation marker:\n%s", out)
	}
	if !strings.Contains(out, "Found 3 unique") {
		t.Errorf("total line must reflect full count:\n%s", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Build(aggregate.New()).Render(&buf, 0); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Found 0 unique email addresses\n") {
		t.Errorf("unexpected empty render:\n%s", buf.String())
	}
}

func TestSave(t *testing.T) {
	rep := buildReport(t)

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := rep.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := "a@x.com\t2\nb@x.com\t1\n"
	if string(data) != want {
		t.Errorf("Save() wrote %q, want %q", data, want)
	}
}

func TestBuildIncludesNewAddresses(t *testing.T) {
	agg := aggregate.New()
	agg.Seed(map[string]int{"old@x.com": 3})
	agg.Observe([]string{"old@x.com", "fresh@x.com"})

	rep := Build(agg)
	if len(rep.NewAddresses) != 1 || rep.NewAddresses[0] != "fresh@x.com" {
		t.Errorf("NewAddresses = %v, want [fresh@x.com]", rep.NewAddresses)
	}
}
