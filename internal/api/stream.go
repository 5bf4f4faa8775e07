package api

import (
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/dualcam/syncview/internal/httputil"
	"github.com/dualcam/syncview/internal/session"
)

// frameHub fans rendered frames out to stream subscribers. It implements
// session.Renderer, so the driver's frame loop feeds it directly. Sends never
// block the frame loop; a subscriber that falls behind drops frames.
type frameHub struct {
	mu     sync.Mutex
	subs   map[string]chan session.Frame
	closed bool
}

func newFrameHub() *frameHub {
	return &frameHub{subs: make(map[string]chan session.Frame)}
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// RenderFrame broadcasts a frame to all subscribers.
func (h *frameHub) RenderFrame(f session.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- f:
		default:
		}
	}
}

func (h *frameHub) Subscribe() (string, chan session.Frame) {
	id := randomID()
	ch := make(chan session.Frame, 8)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return id, ch
	}
	h.subs[id] = ch
	return id, ch
}

func (h *frameHub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

func (h *frameHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
	h.closed = true
}

// streamFrames serves the session's frame loop as server-sent events. Each
// event is one JSON-encoded frame. The stream ends when the client
// disconnects or the session is closed.
func (s *Server) streamFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	ls, ok := s.lookup(r.PathValue("id"))
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.InternalServerError(w, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

	id, frames := ls.hub.Subscribe()
	defer ls.hub.Unsubscribe(id)

	// Send initial ping to establish connection
	w.Write([]byte(": ping\n\n"))
	flusher.Flush()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				// Session closed, exit gracefully
				return
			}
			payload, err := json.Marshal(frame)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
