package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/session"
)

//go:embed static/*
var staticFS embed.FS

const (
	readLimit         = 4 << 20
	readHeaderTimeout = 5 * time.Second
)

// Poster runs functions on the UI goroutine. uiloop.Loop implements it.
type Poster interface {
	Post(fn func()) bool
	PostWait(ctx context.Context, fn func()) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithCheckOrigin overrides the websocket origin check. The default accepts
// same-host origins only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// Server hosts the editor page and the websocket endpoint for web items.
type Server struct {
	loop     Poster
	log      *logging.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	surfaces map[string]*Surface
	peers    map[*peer]struct{}
	httpSrv  *http.Server
	addr     string
	closed   bool
}

// NewServer creates a server that posts inbound events to loop.
func NewServer(loop Poster, opts ...Option) *Server {
	s := &Server{
		loop:     loop,
		log:      logging.Nop(),
		surfaces: make(map[string]*Surface),
		peers:    make(map[*peer]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Factory returns the session.BackendFactory for web items.
func (s *Server) Factory() session.BackendFactory {
	return func(item *session.Item) (session.Backend, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, ErrServerClosed
		}
		surf := newSurface(s, item)
		s.surfaces[item.ID()] = surf
		return surf, nil
	}
}

// Surface returns the registered surface of the item with id.
func (s *Server) Surface(id string) (*Surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	surf, ok := s.surfaces[id]
	return surf, ok
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	delete(s.surfaces, id)
	s.mu.Unlock()
}

// Addr returns the listening address once serving.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// URL returns the page address for item.
func (s *Server) URL(item *session.Item) string {
	u := url.URL{Scheme: "http", Host: s.Addr(), Path: "/", RawQuery: url.Values{"item": {item.ID()}}.Encode()}
	return u.String()
}

// ServeHTTP routes /ws to the websocket endpoint and everything else to the
// embedded page.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/ws" {
		s.handleWebSocket(w, r)
		return
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		http.Error(w, "static files unavailable", http.StatusInternalServerError)
		return
	}
	http.FileServer(http.FS(sub)).ServeHTTP(w, r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("item")
	surf, ok := s.Surface(id)
	if !ok {
		http.Error(w, ErrUnknownItem.Error(), http.StatusNotFound)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(readLimit)
	p := newPeer(conn, s.log.With("item", id))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		p.close()
		return
	}
	s.peers[p] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.peers, p)
		s.mu.Unlock()
		p.close()
		_ = s.loop.PostWait(context.Background(), func() { surf.detachPeer(p) })
	}()

	// Inbound frames wait for room on the loop; a closed page stops waiting.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-p.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	if err := s.loop.PostWait(ctx, func() { surf.attach(p) }); err != nil {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("connection lost", "item", id, "error", err)
			}
			return
		}
		in, err := parseInbound(data)
		if err != nil {
			s.log.Warn("dropping inbound frame", "item", id, "error", err)
			continue
		}
		if err := s.loop.PostWait(ctx, func() { surf.handle(p, in) }); err != nil {
			return
		}
	}
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{Handler: s, ReadHeaderTimeout: readHeaderTimeout}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.httpSrv = srv
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	s.log.Info("web backend listening", "addr", ln.Addr().String())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return ErrServerClosed
	}
	return err
}

// Listen opens addr for Serve.
func (s *Server) Listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// Shutdown stops the HTTP server and closes every page connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.httpSrv
	peers := make([]*peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		p.close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
