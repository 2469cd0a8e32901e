// Package inspect serves a development HTTP view over a store.
//
// Routes:
//
//	GET /keys?match=user/**   keys with dependent and subscriber counts
//	GET /keys/{key}           current value of a string key
//	PUT /keys/{key}           set a string key from a JSON body
//	GET /snapshot             all string keys and values
//	GET /render               text outline of the mounted view, if any
//	GET /watch                WebSocket stream of store events
//
// The inspector is meant for local development: it has no authentication and
// accepts WebSocket connections from any origin.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/bindstore/pkg/store"
)

// Dispatcher runs fn on the goroutine that owns the store's consumers.
// Writes from HTTP handlers go through it so that re-renders never race with
// the rest of the UI.
type Dispatcher func(fn func())

// KeyInfo describes a key in GET /keys responses.
type KeyInfo struct {
	Key         string `json:"key"`
	Symbol      bool   `json:"symbol,omitempty"`
	Dependents  int    `json:"dependents"`
	Subscribers int    `json:"subscribers"`
}

// Event is sent to /watch clients.
type Event struct {
	Type     string `json:"type"` // "created" or "changed"
	Key      string `json:"key"`
	Value    any    `json:"value,omitempty"`
	Prev     any    `json:"prev,omitempty"`
	Notified int    `json:"notified,omitempty"`
}

// Server is the inspector HTTP handler.
type Server struct {
	store    *store.Store
	dispatch Dispatcher
	view     func(io.Writer) error
	logger   *slog.Logger

	router   chi.Router
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	writeMu sync.Mutex
	clients map[*websocket.Conn]bool

	remove func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDispatcher routes writes through d.
// Default: run writes on the request goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Server) {
		if d != nil {
			s.dispatch = d
		}
	}
}

// WithView serves the output of render at GET /render.
func WithView(render func(io.Writer) error) Option {
	return func(s *Server) {
		s.view = render
	}
}

// New creates an inspector for st and starts observing it.
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:    st,
		dispatch: func(fn func()) { fn() },
		logger:   slog.Default(),
		clients:  make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/keys", s.handleKeys)
	r.Get("/keys/{key}", s.handleGet)
	r.Put("/keys/{key}", s.handleSet)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/render", s.handleRender)
	r.Get("/watch", s.handleWatch)
	s.router = r

	s.remove = st.AddObserver(s)
	return s
}

// Router returns the underlying router so callers can mount extra routes,
// such as a metrics endpoint.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops observing the store and disconnects every watcher.
func (s *Server) Close() {
	if s.remove != nil {
		s.remove()
		s.remove = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

// ClientCount returns the number of connected watchers.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// MatchKeys returns information about the keys whose name matches the
// doublestar pattern. An empty pattern matches every key.
func MatchKeys(st *store.Store, pattern string) ([]KeyInfo, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("inspect: invalid pattern %q", pattern)
	}
	var out []KeyInfo
	for _, k := range st.Keys() {
		name := store.KeyString(k)
		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, name); !ok {
				continue
			}
		}
		_, symbol := k.(*store.Symbol)
		out = append(out, KeyInfo{
			Key:         name,
			Symbol:      symbol,
			Dependents:  st.DependentCount(k),
			Subscribers: st.SubscriberCount(k),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := MatchKeys(s.store, r.URL.Query().Get("match"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if keys == nil {
		keys = []KeyInfo{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := s.store.Lookup(key)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": jsonValue(value)})
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("inspect: body must be a JSON value: %w", err))
		return
	}

	var err error
	s.dispatch(func() {
		err = s.store.Set(key, value)
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("inspect: key set", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	out := make(map[string]any, len(snap))
	for k, v := range snap {
		out[k] = jsonValue(v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if s.view == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	var err error
	s.dispatch(func() {
		err = s.view(w)
	})
	if err != nil {
		s.logger.Error("inspect: render failed", "error", err)
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.logger.Debug("inspect: watcher connected", "remote", r.RemoteAddr)

	// Keep the connection open until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// KeyCreated implements store.Observer.
func (s *Server) KeyCreated(key store.Key) {
	s.broadcast(Event{Type: "created", Key: store.KeyString(key)})
}

// ValueChanged implements store.Observer.
func (s *Server) ValueChanged(key store.Key, next, prev any, notified int) {
	s.broadcast(Event{
		Type:     "changed",
		Key:      store.KeyString(key),
		Value:    jsonValue(next),
		Prev:     jsonValue(prev),
		Notified: notified,
	})
}

func (s *Server) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("inspect: event not encodable", "key", ev.Key, "error", err)
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.mu.Lock()
			delete(s.clients, client)
			s.mu.Unlock()
			client.Close()
		}
	}
}

// jsonValue returns v if it encodes as JSON, otherwise its %v form.
func jsonValue(v any) any {
	if v == nil {
		return nil
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
