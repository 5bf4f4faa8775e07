// Package api serves the pairing and playback HTTP surface: opening a clip
// pairing as a viewing session, querying reconstructed boxes at arbitrary
// timeline positions, driving playback, and streaming frames to viewers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dualcam/syncview/internal/clipsync"
	"github.com/dualcam/syncview/internal/config"
	"github.com/dualcam/syncview/internal/httputil"
	"github.com/dualcam/syncview/internal/monitoring"
	"github.com/dualcam/syncview/internal/session"
	"github.com/dualcam/syncview/internal/timeutil"
	"github.com/dualcam/syncview/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// liveSession pairs a session with its frame loop and stream fan-out.
type liveSession struct {
	session *session.Session
	driver  *session.Driver
	hub     *frameHub
}

// Server holds the open sessions and their shared dependencies.
type Server struct {
	config *config.Config
	client httputil.HTTPClient
	clock  timeutil.Clock

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// NewServer creates a Server. client is used for consensus lookups and may be
// nil when the config names no consensus endpoint; a nil clock falls back to
// the real clock.
func NewServer(cfg *config.Config, client httputil.HTTPClient, clock timeutil.Clock) *Server {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Server{
		config:   cfg,
		client:   client,
		clock:    clock,
		sessions: make(map[string]*liveSession),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the route table for the API.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pairings", s.handlePairings)
	mux.HandleFunc("/api/sessions/{id}", s.handleSession)
	mux.HandleFunc("/api/sessions/{id}/boxes", s.showBoxes)
	mux.HandleFunc("/api/sessions/{id}/seek", s.seekSession)
	mux.HandleFunc("/api/sessions/{id}/play", s.playSession)
	mux.HandleFunc("/api/sessions/{id}/pause", s.pauseSession)
	mux.HandleFunc("/api/sessions/{id}/stream", s.streamFrames)
	mux.HandleFunc("/api/sessions/{id}/chart", s.showTrajectoryChart)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}

func (s *Server) lookup(id string) (*liveSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.sessions[id]
	return ls, ok
}

// Close stops every open session's frame loop. Used at shutdown.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.driver.Stop()
		ls.hub.closeAll()
	}
}

type openRequest struct {
	PairingID string             `json:"pairing_id"`
	CameraA   session.ClipRecord `json:"camera_a"`
	CameraB   session.ClipRecord `json:"camera_b"`
}

type syncInfo struct {
	DelayA    float64 `json:"delay_a"`
	DelayB    float64 `json:"delay_b"`
	DurationA float64 `json:"duration_a"`
	DurationB float64 `json:"duration_b"`
	Total     float64 `json:"total"`
}

func syncInfoFrom(st clipsync.SyncState) syncInfo {
	return syncInfo{
		DelayA:    st.DelayA,
		DelayB:    st.DelayB,
		DurationA: st.DurationA,
		DurationB: st.DurationB,
		Total:     st.Total(),
	}
}

type sessionInfo struct {
	SessionID string   `json:"session_id"`
	PairingID string   `json:"pairing_id"`
	Sync      syncInfo `json:"sync"`
	Position  float64  `json:"position"`
	Playing   bool     `json:"playing"`
}

func (s *Server) handlePairings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.openPairing(w, r)
	case http.MethodGet:
		s.listSessions(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) openPairing(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid pairing body: %v", err))
		return
	}

	sess, err := session.New(req.PairingID, req.CameraA, req.CameraB, s.config, s.client, s.clock)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	hub := newFrameHub()
	driver := session.NewDriver(sess, s.clock, s.config.GetFrameRate(), hub)
	driver.Start()

	ls := &liveSession{session: sess, driver: driver, hub: hub}
	s.mu.Lock()
	s.sessions[sess.ID] = ls
	s.mu.Unlock()

	monitoring.Logf("opened session %s for pairing %s (total %.2fs)",
		sess.ID, sess.PairingID, sess.Sync().Total())

	httputil.WriteJSON(w, http.StatusCreated, sessionInfo{
		SessionID: sess.ID,
		PairingID: sess.PairingID,
		Sync:      syncInfoFrom(sess.Sync()),
	})
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]sessionInfo, 0, len(s.sessions))
	for _, ls := range s.sessions {
		out = append(out, sessionInfo{
			SessionID: ls.session.ID,
			PairingID: ls.session.PairingID,
			Sync:      syncInfoFrom(ls.session.Sync()),
			Position:  ls.driver.Position(),
			Playing:   ls.driver.Playing(),
		})
	}
	s.mu.Unlock()

	httputil.WriteJSONOK(w, out)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(r.PathValue("id"))
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}

	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, sessionInfo{
			SessionID: ls.session.ID,
			PairingID: ls.session.PairingID,
			Sync:      syncInfoFrom(ls.session.Sync()),
			Position:  ls.driver.Position(),
			Playing:   ls.driver.Playing(),
		})
	case http.MethodDelete:
		s.mu.Lock()
		delete(s.sessions, ls.session.ID)
		s.mu.Unlock()
		ls.driver.Stop()
		ls.hub.closeAll()
		httputil.WriteJSONOK(w, map[string]string{"status": "closed"})
	default:
		httputil.MethodNotAllowed(w)
	}
}

// showBoxes answers a stateless query: the reconstructed boxes at an
// arbitrary shared-axis time, without touching the session's playback
// position.
func (s *Server) showBoxes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	ls, ok := s.lookup(r.PathValue("id"))
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}

	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		httputil.BadRequest(w, "invalid 't' parameter")
		return
	}

	boxA, boxB, seekA, seekB := ls.session.BoxesAtReal(t)
	httputil.WriteJSONOK(w, session.Frame{
		RealTime: t,
		SeekA:    seekA,
		SeekB:    seekB,
		BoxA:     boxA,
		BoxB:     boxB,
	})
}

// seekSession scrubs the playback position to a normalized fraction of the
// synchronized timeline and returns the frame at the new position.
func (s *Server) seekSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	ls, ok := s.lookup(r.PathValue("id"))
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}

	f, err := strconv.ParseFloat(r.FormValue("f"), 64)
	if err != nil {
		httputil.BadRequest(w, "invalid 'f' parameter")
		return
	}

	httputil.WriteJSONOK(w, ls.driver.Scrub(f))
}

func (s *Server) playSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	ls, ok := s.lookup(r.PathValue("id"))
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}
	ls.driver.Play()
	httputil.WriteJSONOK(w, map[string]string{"status": "playing"})
}

func (s *Server) pauseSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	ls, ok := s.lookup(r.PathValue("id"))
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}
	ls.driver.Pause()
	httputil.WriteJSONOK(w, map[string]string{"status": "paused"})
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"version":            version.Version,
		"frame_rate":         s.config.GetFrameRate(),
		"consensus_endpoint": s.config.GetConsensusURL() != "",
	})
}
