package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mbellini/effwatch/internal/domain"
)

func newBotServer(t *testing.T, sendErrCode int) (*httptest.Server, *[]string) {
	t.Helper()
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/gettoken"):
			if r.URL.Query().Get("appkey") != "key" {
				t.Errorf("missing appkey in token request")
			}
			fmt.Fprint(w, `{"errcode":0,"access_token":"tok-123"}`)
		case strings.HasPrefix(r.URL.Path, "/topapi/message/corpconversation/asyncsend_v2"):
			if r.URL.Query().Get("access_token") != "tok-123" {
				t.Errorf("send did not carry the fetched token")
			}
			var payload struct {
				Msg struct {
					Markdown struct {
						Text string `json:"text"`
					} `json:"markdown"`
				} `json:"msg"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decoding send payload: %v", err)
			}
			sent = append(sent, payload.Msg.Markdown.Text)
			fmt.Fprintf(w, `{"errcode":%d,"errmsg":"x"}`, sendErrCode)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &sent
}

func TestBotNotifier_Send(t *testing.T) {
	srv, sent := newBotServer(t, 0)
	n := NewBotNotifier(BotConfig{APIBase: srv.URL, AppKey: "key", AppSecret: "secret", AgentID: "1", UserID: "u1"})

	if err := n.Send(context.Background(), "title", "**report**"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*sent) != 1 || (*sent)[0] != "**report**" {
		t.Errorf("unexpected sent content: %v", *sent)
	}
}

func TestBotNotifier_TruncatesLongContent(t *testing.T) {
	srv, sent := newBotServer(t, 0)
	n := NewBotNotifier(BotConfig{APIBase: srv.URL, AppKey: "key", AppSecret: "s"})

	long := strings.Repeat("x", maxBotContentLen+500)
	if err := n.Send(context.Background(), "t", long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := (*sent)[0]
	if len(got) > maxBotContentLen {
		t.Errorf("content not truncated: %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "(truncated)") {
		t.Error("truncated content should be marked")
	}
}

func TestBotNotifier_SendFailureIsNotifyError(t *testing.T) {
	srv, _ := newBotServer(t, 40035)
	n := NewBotNotifier(BotConfig{APIBase: srv.URL, AppKey: "key", AppSecret: "s"})

	err := n.Send(context.Background(), "t", "c")
	var nerr *domain.NotifyError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotifyError, got %v", err)
	}
	if nerr.Channel != "bot" {
		t.Errorf("unexpected channel %q", nerr.Channel)
	}
}

type fakeNotifier struct {
	name string
	err  error
	sent int
}

func (f *fakeNotifier) Name() string { return f.name }
func (f *fakeNotifier) Send(context.Context, string, string) error {
	f.sent++
	return f.err
}

func TestDispatch_FailuresDoNotStopOthers(t *testing.T) {
	bad := &fakeNotifier{name: "bad", err: &domain.NotifyError{Channel: "bad", Err: errors.New("boom")}}
	good := &fakeNotifier{name: "good"}

	results := Dispatch(context.Background(), []Notifier{bad, good}, "t", "c")

	if good.sent != 1 {
		t.Error("second notifier skipped after first failed")
	}
	if results["bad"] || !results["good"] {
		t.Errorf("unexpected results: %v", results)
	}
}
