package console

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

type recordingLogger struct {
	logger.Nop
	infos []string
}

func (r *recordingLogger) With(fields ...logger.Field) logger.Logger { return r }

func (r *recordingLogger) Info(msg string, fields ...logger.Field) {
	r.infos = append(r.infos, msg)
}

func TestListenerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(nil, WithWriter(&buf))

	l.OnDeepLink(context.Background(), "https://go.example/abc", &domain.LinkData{ShortCode: "abc"})
	l.OnDeferredDeepLink(context.Background(), nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first Line
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first line: %v", err)
	}
	if first.Kind != "deeplink" || first.URL != "https://go.example/abc" {
		t.Fatalf("unexpected first line %+v", first)
	}
	if first.Data == nil || first.Data.ShortCode != "abc" {
		t.Fatalf("expected link data in first line, got %+v", first.Data)
	}

	var second Line
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode second line: %v", err)
	}
	if second.Kind != "deferred" || second.Data != nil {
		t.Fatalf("unexpected second line %+v", second)
	}
}

func TestListenerStructuredMode(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingLogger{}
	l := New(rec, WithWriter(&buf), WithStructured(true))

	l.OnDeepLink(context.Background(), "https://go.example/abc", nil)

	if buf.Len() != 0 {
		t.Fatalf("structured mode must not write to the writer, got %q", buf.String())
	}
	if len(rec.infos) != 1 || rec.infos[0] != "attribution delivered" {
		t.Fatalf("unexpected log calls %v", rec.infos)
	}
}
