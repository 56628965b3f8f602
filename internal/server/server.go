// Package server exposes the coordinator over a WebSocket JSON API.
//
// Clients send one Request per text frame and receive one Response per
// request, tagged with the request id. Requests on one connection run
// concurrently; responses may arrive out of order.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/bioreason/bioreason/internal/coordinator"
	"github.com/bioreason/bioreason/internal/modes"
	"github.com/bioreason/bioreason/internal/triage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response types.
const (
	TypeResult = "result"
	TypeError  = "error"
)

// Error kinds reported in Response.ErrorKind.
const (
	KindBadRequest     = "bad_request"
	KindUnknownMode    = "unknown_mode"
	KindToolResolution = "tool_resolution"
	KindLoopExceeded   = "loop_exceeded"
	KindInternal       = "internal"
)

// Request is one query sent by a client.
type Request struct {
	ID         string `json:"id"`
	Query      string `json:"query"`
	Mode       string `json:"mode,omitempty"`
	Classifier string `json:"classifier,omitempty"`
}

// Response answers one Request.
type Response struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id,omitempty"`
	SessionID  string                 `json:"sessionId,omitempty"`
	Mode       string                 `json:"mode,omitempty"`
	Answer     string                 `json:"answer,omitempty"`
	Iterations int                    `json:"iterations,omitempty"`
	ToolsUsed  []string               `json:"toolsUsed,omitempty"`
	State      coordinator.State      `json:"state,omitempty"`
	Triage     *triage.Classification `json:"classification,omitempty"`
	Error      string                 `json:"error,omitempty"`
	ErrorKind  string                 `json:"errorKind,omitempty"`
}

// Processor answers queries.
type Processor interface {
	ProcessQuery(ctx context.Context, query string, sel coordinator.Selector) (*coordinator.Result, error)
}

// ClassifierFunc returns the classifier for a method name; "" selects the
// configured default. Unknown methods are an error.
type ClassifierFunc func(method string) (triage.Classifier, error)

// Server serves the query API.
type Server struct {
	addr       string
	proc       Processor
	classifier ClassifierFunc
	timeout    time.Duration
	upgrader   websocket.Upgrader
}

// New creates a server listening on addr.
func New(addr string, proc Processor, classifier ClassifierFunc, timeout time.Duration) *Server {
	return &Server{
		addr:       addr,
		proc:       proc,
		classifier: classifier,
		timeout:    timeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes: /ws for queries and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Query server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// conn serialises writes; gorilla connections allow one concurrent writer.
type conn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "err", err)
		return
	}
	c := &conn{Conn: raw}
	defer c.Close()

	// Hijacked connections keep r.Context() alive after the client leaves,
	// so in-flight queries are cancelled here before waiting for them.
	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()
	slog.Info("Client connected", "remote", r.RemoteAddr)
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("Client read failed", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		var req Request
		if err := json.Unmarshal(data, &req); err != nil || req.Query == "" {
			_ = c.send(Response{Type: TypeError, ID: req.ID, Error: "request needs a JSON object with a query", ErrorKind: KindBadRequest})
			continue
		}
		wg.Go(func() {
			if err := c.send(s.answer(ctx, req)); err != nil {
				slog.Warn("Client write failed", "remote", r.RemoteAddr, "err", err)
			}
		})
	}
}

func (s *Server) answer(ctx context.Context, req Request) Response {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sel := coordinator.Mode(req.Mode)
	if req.Mode == "" {
		classifier, err := s.classifier(req.Classifier)
		if err != nil {
			return Response{Type: TypeError, ID: req.ID, Error: err.Error(), ErrorKind: KindBadRequest}
		}
		sel = coordinator.Classify(classifier)
	}
	res, err := s.proc.ProcessQuery(ctx, req.Query, sel)

	resp := Response{Type: TypeResult, ID: req.ID}
	if res != nil {
		resp.SessionID = res.SessionID
		resp.Mode = res.Mode
		resp.Answer = res.Answer
		resp.Iterations = res.Iterations
		resp.ToolsUsed = res.ToolsUsed
		resp.State = res.State
		resp.Triage = res.Classification
	}
	if err != nil {
		resp.Type = TypeError
		resp.Error = err.Error()
		resp.ErrorKind = errorKind(err)
	}
	return resp
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, modes.ErrUnknownMode):
		return KindUnknownMode
	case errors.Is(err, coordinator.ErrToolResolution):
		return KindToolResolution
	case errors.Is(err, coordinator.ErrLoopExceeded):
		return KindLoopExceeded
	default:
		return KindInternal
	}
}
