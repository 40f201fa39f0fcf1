package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"github.com/wricardo/wordduel/game/config"
	"github.com/wricardo/wordduel/game/engine"
	"github.com/wricardo/wordduel/game/service"
	"github.com/wricardo/wordduel/transport/websocket"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// RulesCatalog lists the selectable rules profiles
type RulesCatalog interface {
	ListRules() ([]*config.RulesInfo, error)
}

// Server represents the REST API server
type Server struct {
	coordinator service.Coordinator
	hub         *websocket.Hub
	catalog     RulesCatalog
	staticDir   string
	router      *mux.Router
}

// Option configures a Server
type Option func(*Server)

// WithRulesCatalog exposes the available profiles at /api/rules/profiles
func WithRulesCatalog(catalog RulesCatalog) Option {
	return func(s *Server) { s.catalog = catalog }
}

// WithStaticDir changes the directory served at /
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// NewServer creates a new API server. hub may be nil, in which case /ws
// answers 503.
func NewServer(coordinator service.Coordinator, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		coordinator: coordinator,
		hub:         hub,
		staticDir:   "./static/",
		router:      mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestLogger)

	api := s.router.PathPrefix("/api").Subrouter()

	// Rooms (read-only; players act over the WebSocket)
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/rooms/{id}/qr", s.handleRoomQR).Methods("GET")

	// Rules
	api.HandleFunc("/rules", s.handleGetRules).Methods("GET")
	api.HandleFunc("/rules/profiles", s.handleListProfiles).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the router so callers can mount extra handlers such as /mcp
func (s *Server) Router() *mux.Router {
	return s.router
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Room Handlers

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.coordinator.ListRooms(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"rooms": rooms,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, room)
}

func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	room, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	size := defaultQRSize
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		n, err := strconv.Atoi(sizeStr)
		if err != nil || n < minQRSize || n > maxQRSize {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("size must be between %d and %d", minQRSize, maxQRSize))
			return
		}
		size = n
	}

	png, err := qrcode.Encode(InviteURL(r, room.ID), qrcode.Medium, size)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render QR code: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) lookupRoom(w http.ResponseWriter, r *http.Request) (*service.RoomInfo, bool) {
	roomID := mux.Vars(r)["id"]

	room, err := s.coordinator.GetRoom(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, engine.ErrRoomNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return room, true
}

// InviteURL builds the link a second player opens to join roomID. The scheme
// honours X-Forwarded-Proto so links stay valid behind a tunnel.
func InviteURL(r *http.Request, roomID string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     "/",
		RawQuery: url.Values{"room": []string{roomID}}.Encode(),
	}
	return u.String()
}

// Rules Handlers

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.coordinator.Rules())
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondError(w, http.StatusNotFound, "no rules catalog configured")
		return
	}

	profiles, err := s.catalog.ListRules()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.coordinator.ListRooms(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	connections := 0
	if s.hub != nil {
		connections = s.hub.ClientCount()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"rooms":       len(rooms),
		"connections": connections,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket transport unavailable", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r, s.coordinator)
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The upgrader needs the raw writer to hijack the connection.
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
