// Package http exposes an engine over a small JSON API. Each session
// owns its own engine instance, since players are stateful and
// single-threaded.
package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/variables"
)

// Session couples a player with its variable store.
type Session struct {
	Player ports.FlowPlayer
	Store  *variables.Store

	// mu serializes player and store access: players are stateful and
	// not safe for concurrent use, and net/http runs handlers on
	// per-request goroutines.
	mu sync.Mutex
}

// SessionFactory builds a fresh player per session.
type SessionFactory func() (*Session, error)

// Server hosts flow sessions over HTTP.
type Server struct {
	factory SessionFactory
	graph   *flow.Graph
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHandler builds the HTTP handler. The graph is shared read-only
// across sessions; factory creates the per-session player.
func NewHandler(graph *flow.Graph, factory SessionFactory, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		factory:  factory,
		graph:    graph,
		logger:   logger,
		sessions: make(map[string]*Session),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/graph", s.getGraph)
	r.Post("/sessions", s.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.getSession)
		r.Delete("/", s.deleteSession)
		r.Post("/play", s.play)
		r.Post("/refresh", s.refresh)
		r.Get("/variables", s.getVariables)
		r.Put("/variables", s.setVariable)
	})
	return r
}

type branchView struct {
	Index  int      `json:"index"`
	Valid  bool     `json:"valid"`
	Target string   `json:"target,omitempty"`
	Label  string   `json:"label,omitempty"`
	Path   []string `json:"path"`
}

type snapshotView struct {
	SessionID string       `json:"session_id,omitempty"`
	State     string       `json:"state"`
	Cursor    *objectView  `json:"cursor,omitempty"`
	Branches  []branchView `json:"branches"`
}

type objectView struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Text    string `json:"text,omitempty"`
	Speaker string `json:"speaker,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	type nodeView struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
		Name string `json:"name,omitempty"`
	}
	nodes := make([]nodeView, 0, len(s.graph.Nodes()))
	for _, n := range s.graph.Nodes() {
		v := nodeView{ID: string(n.ID()), Kind: n.Kind().String()}
		type named interface{ DisplayName() string }
		if d, ok := n.(named); ok {
			v.Name = d.DisplayName()
		}
		nodes = append(nodes, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Start string `json:"start"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Start == "" {
		http.Error(w, "body must carry a start node id", http.StatusBadRequest)
		return
	}

	sess, err := s.factory()
	if err != nil {
		s.logger.Error("session factory failed", "err", err)
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.Player.SetStartNode(r.Context(), domain.ID(body.Start)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := newSessionID()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	view := snapshot(sess)
	view.SessionID = id
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return sess
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) play(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var body struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.Player.Play(r.Context(), body.Index); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := sess.Player.Tick(r.Context()); err != nil {
		s.logger.Error("tick failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.Player.UpdateAvailableBranches(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) getVariables(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, sess.Store.Snapshot())
}

func (s *Server) setVariable(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var body struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// JSON numbers arrive as float64; int variables expect int.
	if f, ok := body.Value.(float64); ok && f == float64(int(f)) {
		body.Value = int(f)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.Store.SetByFullName(body.Name, body.Value); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := sess.Player.UpdateAvailableBranches(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func snapshot(sess *Session) snapshotView {
	view := snapshotView{
		State:    sess.Player.State().String(),
		Branches: []branchView{},
	}
	if cursor := sess.Player.Cursor(); cursor != nil {
		view.Cursor = viewOf(cursor)
	}
	for _, b := range sess.Player.AvailableBranches() {
		bv := branchView{Index: b.Index, Valid: b.Valid}
		for _, obj := range b.Path {
			bv.Path = append(bv.Path, string(obj.ID()))
		}
		if target := b.Target(); target != nil {
			bv.Target = string(target.ID())
			if df, ok := target.(*flow.DialogueFragment); ok {
				bv.Label = df.MenuText()
			}
		}
		view.Branches = append(view.Branches, bv)
	}
	return view
}

func viewOf(obj domain.FlowObject) *objectView {
	v := &objectView{ID: string(obj.ID()), Kind: obj.Kind().String()}
	type texter interface{ Text() string }
	if t, ok := obj.(texter); ok {
		v.Text = t.Text()
	}
	if sp, ok := obj.(domain.SpeakerProvider); ok {
		v.Speaker = string(sp.Speaker())
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newSessionID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
