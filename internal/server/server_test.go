package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bioreason/bioreason/internal/coordinator"
	"github.com/bioreason/bioreason/internal/modes"
	"github.com/bioreason/bioreason/internal/triage"
)

// fakeProcessor answers every query in teleonomic mode and fails queries
// mentioning "unknown".
type fakeProcessor struct{}

func (fakeProcessor) ProcessQuery(_ context.Context, query string, _ coordinator.Selector) (*coordinator.Result, error) {
	res := &coordinator.Result{SessionID: "sess", Query: query, Mode: "teleonomic", State: coordinator.StateDone}
	if strings.Contains(query, "unknown") {
		res.State = coordinator.StateFailed
		return res, &modes.UnknownModeError{Mode: "bogus"}
	}
	res.Answer = "answer to " + query
	res.Iterations = 2
	res.ToolsUsed = []string{"search_literature"}
	return res, nil
}

func fixedClassifier(method string) (triage.Classifier, error) {
	switch method {
	case "", triage.MethodKeyword:
		return triage.Fixed("teleonomic"), nil
	default:
		return nil, fmt.Errorf("%w %q", triage.ErrUnknownMethod, method)
	}
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	return dialWith(t, fakeProcessor{})
}

func dialWith(t *testing.T, proc Processor) *websocket.Conn {
	t.Helper()
	s := New("", proc, fixedClassifier, time.Minute)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	return c
}

func roundTrip(t *testing.T, c *websocket.Conn, frame string) Response {
	t.Helper()
	if err := c.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return resp
}

func TestWebSocket_Answer(t *testing.T) {
	c := dial(t)
	resp := roundTrip(t, c, `{"id":"1","query":"Why do finches differ?","mode":"teleonomic"}`)
	if resp.Type != TypeResult || resp.ID != "1" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Answer != "answer to Why do finches differ?" || resp.Mode != "teleonomic" || resp.Iterations != 2 {
		t.Errorf("unexpected result %+v", resp)
	}
	if resp.State != coordinator.StateDone || len(resp.ToolsUsed) != 1 {
		t.Errorf("unexpected state/tools %+v", resp)
	}
}

func TestWebSocket_ErrorKind(t *testing.T) {
	c := dial(t)
	resp := roundTrip(t, c, `{"id":"2","query":"an unknown mode question"}`)
	if resp.Type != TypeError || resp.ErrorKind != KindUnknownMode {
		t.Fatalf("expected unknown_mode error, got %+v", resp)
	}
	if resp.SessionID != "sess" || resp.State != coordinator.StateFailed {
		t.Errorf("expected partial result fields, got %+v", resp)
	}
}

func TestWebSocket_BadRequest(t *testing.T) {
	c := dial(t)
	for _, frame := range []string{`not json`, `{"id":"3"}`} {
		resp := roundTrip(t, c, frame)
		if resp.Type != TypeError || resp.ErrorKind != KindBadRequest {
			t.Errorf("frame %q: expected bad_request, got %+v", frame, resp)
		}
	}
}

func TestHealthz(t *testing.T) {
	s := New("", fakeProcessor{}, nil, 0)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("expected 200 ok, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestErrorKind(t *testing.T) {
	cases := map[string]error{
		KindToolResolution: &coordinator.ToolResolutionError{Mode: "m", Tool: "t"},
		KindLoopExceeded:   &coordinator.LoopExceededError{Mode: "m", MaxIter: 3},
		KindUnknownMode:    &modes.UnknownModeError{Mode: "x"},
		KindInternal:       context.DeadlineExceeded,
	}
	for want, err := range cases {
		if got := errorKind(err); got != want {
			t.Errorf("errorKind(%v) = %s, want %s", err, got, want)
		}
	}
}

func TestWebSocket_UnknownClassifier(t *testing.T) {
	c := dial(t)
	resp := roundTrip(t, c, `{"id":"4","query":"Why do finches differ?","classifier":"tarot"}`)
	if resp.Type != TypeError || resp.ErrorKind != KindBadRequest || resp.ID != "4" {
		t.Fatalf("expected bad_request for an unknown classifier, got %+v", resp)
	}
	if !strings.Contains(resp.Error, "tarot") {
		t.Errorf("expected the method in the error, got %q", resp.Error)
	}
}

// blockingProcessor holds each query until its context ends.
type blockingProcessor struct {
	started   chan struct{}
	cancelled chan error
}

func (p *blockingProcessor) ProcessQuery(ctx context.Context, _ string, _ coordinator.Selector) (*coordinator.Result, error) {
	close(p.started)
	<-ctx.Done()
	p.cancelled <- ctx.Err()
	return nil, ctx.Err()
}

func TestWebSocket_DisconnectCancelsQueries(t *testing.T) {
	proc := &blockingProcessor{started: make(chan struct{}), cancelled: make(chan error, 1)}
	c := dialWith(t, proc)
	if err := c.WriteMessage(websocket.TextMessage, []byte(`{"id":"5","query":"slow","mode":"teleonomic"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-proc.started:
	case <-time.After(5 * time.Second):
		t.Fatal("query never started")
	}

	_ = c.Close()
	select {
	case err := <-proc.cancelled:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("query kept running after the client disconnected")
	}
}
