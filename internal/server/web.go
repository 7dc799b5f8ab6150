package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
)

// WebServer serves JSON-RPC 2.0 over HTTP (/jsonrpc) and WebSocket
// (/jsonrpc/ws). Only WebSocket clients receive run.event pushes.
type WebServer struct {
	port      int
	listenAll bool
	l         *log.Logger
	rpc       *RPCServer
	notifier  *RPCNotifier
	server    *http.Server
	mu        sync.Mutex
}

func NewWebServer(l *log.Logger, port int, rpc *RPCServer, notifier *RPCNotifier, listenAll bool) *WebServer {
	if notifier == nil {
		notifier = NewRPCNotifier(l)
	}
	return &WebServer{
		port:      port,
		listenAll: listenAll,
		l:         l,
		rpc:       rpc,
		notifier:  notifier,
	}
}

// Notifier returns the push notifier for WebSocket clients.
func (s *WebServer) Notifier() *RPCNotifier {
	return s.notifier
}

func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.l.Println("Error accepting websocket:", err)
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.rpc.methods, &jrpc2.ServerOptions{AllowPush: true}).Start(ch)
	s.notifier.Register(srv)
	defer s.notifier.Unregister(srv)
	if err := srv.Wait(); err != nil {
		s.l.Println("WebSocket session ended:", err)
	}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	if s.rpc != nil {
		mux.Handle("/jsonrpc", requireToken(s.rpc.secret, s.rpc.bridge))
		mux.Handle("/jsonrpc/ws", requireToken(s.rpc.secret, http.HandlerFunc(s.handleWS)))
	}
	return mux
}

func (s *WebServer) addr() string {
	if s.listenAll {
		return fmt.Sprintf(":%d", s.port)
	}
	return fmt.Sprintf("127.0.0.1:%d", s.port)
}

func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	srv := s.server
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rpc != nil {
		s.rpc.Close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
