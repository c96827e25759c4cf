package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/0/buckets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"aw-watcher-window_host": {"id": "aw-watcher-window_host", "client": "aw-watcher-window", "type": "currentwindow"},
			"aw-watcher-afk_host":    {"id": "aw-watcher-afk_host", "client": "aw-watcher-afk", "type": "afkstatus"},
			"aw-watcher-vscode_host": {"id": "aw-watcher-vscode_host", "client": "aw-watcher-vscode", "type": "app.editor.activity"}
		}`))
	})
	mux.HandleFunc("/api/0/buckets/aw-watcher-window_host/events", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "" || r.URL.Query().Get("end") == "" {
			http.Error(w, "missing range", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"timestamp": "2024-01-07T09:00:00Z", "duration": 3600.0, "data": {"app": "VS Code", "title": "main.go", "audible": false, "tabCount": 3}}
		]`))
	})
	mux.HandleFunc("/api/0/buckets/aw-watcher-afk_host/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"timestamp": "2024-01-07T09:00:00Z", "duration": 3600.0, "data": {"status": "not-afk"}}]`))
	})
	mux.HandleFunc("/api/0/buckets/aw-watcher-vscode_host/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	return httptest.NewServer(mux)
}

func testPeriod() domain.Period {
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	return domain.Period{Type: domain.PeriodDay, Start: start, End: start.AddDate(0, 0, 1)}
}

func TestCollectAll(t *testing.T) {
	srv := fakeServer(t)
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	snap, err := client.CollectAll(context.Background(), testPeriod(), []string{"aw-watcher-vscode"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Window) != 1 {
		t.Fatalf("expected 1 window event, got %d", len(snap.Window))
	}
	if len(snap.AFK) != 1 {
		t.Fatalf("expected 1 afk event, got %d", len(snap.AFK))
	}

	ev := snap.Window[0]
	if ev.Kind != domain.KindWindow {
		t.Errorf("expected window kind, got %s", ev.Kind)
	}
	if ev.Duration != time.Hour {
		t.Errorf("expected 1h duration, got %v", ev.Duration)
	}
	if ev.Payload["app"] != "VS Code" {
		t.Errorf("expected app payload, got %q", ev.Payload["app"])
	}
	// Non-string payload values are stringified, not dropped.
	if ev.Payload["audible"] != "false" || ev.Payload["tabCount"] != "3" {
		t.Errorf("expected stringified payload, got %v", ev.Payload)
	}

	if snap.Buckets.Window == "" || snap.Buckets.AFK == "" {
		t.Error("bucket discovery info should be recorded")
	}
	if snap.Buckets.EditorCount != 1 {
		t.Errorf("expected 1 editor bucket, got %d", snap.Buckets.EditorCount)
	}

	counts := snap.Counts()
	if counts["window"] != 1 || counts["afk"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestCollectAll_UnreachableDaemon(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)

	_, err := client.CollectAll(context.Background(), testPeriod(), nil)
	if err == nil {
		t.Fatal("expected error for unreachable daemon")
	}
	var dsErr *domain.DataSourceError
	if !errors.As(err, &dsErr) {
		t.Errorf("expected DataSourceError, got %T", err)
	}
}

func TestCollectAll_MissingBucketsLeaveStreamsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/0/buckets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	snap, err := client.CollectAll(context.Background(), testPeriod(), nil)
	if err != nil {
		t.Fatalf("missing buckets should not be an error: %v", err)
	}
	if len(snap.Events()) != 0 {
		t.Errorf("expected no events, got %d", len(snap.Events()))
	}
}

func TestBuckets_Cached(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/0/buckets", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	ctx := context.Background()
	if _, err := client.Buckets(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Buckets(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}
