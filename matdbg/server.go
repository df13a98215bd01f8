// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package matdbg

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// MaterialInfo is the wire form of one material.
type MaterialInfo struct {
	Name       string             `json:"name"`
	Parameters map[string]float32 `json:"parameters,omitempty"`
}

// QueryFunc snapshots the live materials. Called from server
// goroutines; implementations must be safe for concurrent use.
type QueryFunc func() []MaterialInfo

// EditFunc applies one parameter edit. Called from server goroutines.
type EditFunc func(material, parameter string, value float32) error

// wsMessage is what websocket clients send: either an edit
// (material+parameter+value) or a query ("*" or a material name).
type wsMessage struct {
	Material  string  `json:"material,omitempty"`
	Parameter string  `json:"parameter,omitempty"`
	Value     float32 `json:"value,omitempty"`
	Query     string  `json:"query,omitempty"`
}

// Server exposes materials over HTTP and accepts live edits over a
// websocket.
type Server struct {
	ln       net.Listener
	srv      *http.Server
	query    QueryFunc
	edit     EditFunc
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New starts a server on localhost:port. Port 0 picks a free port;
// the chosen address is available from [Server.Addr].
func New(port int, query QueryFunc, edit EditFunc) (*Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("matdbg: listen: %w", err)
	}
	s := &Server{
		ln:    ln,
		query: query,
		edit:  edit,
		conns: make(map[*websocket.Conn]struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/materials", s.handleMaterials)
	mux.HandleFunc("/api/material", s.handleMaterial)
	mux.HandleFunc("/ws", s.handleWS)
	s.srv = &http.Server{Handler: mux}
	go func() {
		// ErrServerClosed is the normal Close path.
		_ = s.srv.Serve(ln)
	}()
	return s, nil
}

// Addr reports the address the server listens on.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close stops the server and drops all websocket connections.
func (s *Server) Close() error {
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()
	return s.srv.Close()
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.query())
}

func (s *Server) handleMaterial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := r.URL.Query().Get("name")
	for _, m := range s.query() {
		if m.Name == name {
			writeJSON(w, m)
			return
		}
	}
	http.Error(w, "unknown material", http.StatusNotFound)
}

// handleWS upgrades the connection and applies edit messages until the
// client goes away. Each edit is answered with {"ok":true} or an
// error string.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		var resp any
		switch {
		case msg.Query != "":
			resp = s.runQuery(msg.Query)
		default:
			resp = map[string]any{"ok": true}
			if err := s.edit(msg.Material, msg.Parameter, msg.Value); err != nil {
				resp = map[string]any{"ok": false, "error": err.Error()}
			}
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

// runQuery resolves a websocket query: "*" lists everything, any other
// value selects one material by name.
func (s *Server) runQuery(q string) any {
	all := s.query()
	if q == "*" {
		return map[string]any{"ok": true, "materials": all}
	}
	for _, m := range all {
		if m.Name == q {
			return map[string]any{"ok": true, "materials": []MaterialInfo{m}}
		}
	}
	return map[string]any{"ok": false, "error": "unknown material " + q}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
