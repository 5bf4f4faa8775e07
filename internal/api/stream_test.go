package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dualcam/syncview/internal/session"
)

func TestFrameHubBroadcast(t *testing.T) {
	t.Parallel()

	hub := newFrameHub()
	id1, ch1 := hub.Subscribe()
	_, ch2 := hub.Subscribe()

	hub.RenderFrame(session.Frame{RealTime: 1.5})
	assert.InDelta(t, 1.5, (<-ch1).RealTime, 1e-9)
	assert.InDelta(t, 1.5, (<-ch2).RealTime, 1e-9)

	// Unsubscribed channels are closed and no longer receive.
	hub.Unsubscribe(id1)
	_, open := <-ch1
	assert.False(t, open)

	hub.RenderFrame(session.Frame{RealTime: 2.0})
	assert.InDelta(t, 2.0, (<-ch2).RealTime, 1e-9)
}

func TestFrameHubDropsWhenSubscriberLags(t *testing.T) {
	t.Parallel()

	hub := newFrameHub()
	_, ch := hub.Subscribe()

	// Overfill the buffer; broadcasts must not block the frame loop.
	for i := 0; i < 20; i++ {
		hub.RenderFrame(session.Frame{RealTime: float64(i)})
	}
	assert.Equal(t, 8, len(ch))
	assert.Zero(t, (<-ch).RealTime)
}

func TestFrameHubCloseAll(t *testing.T) {
	t.Parallel()

	hub := newFrameHub()
	_, ch := hub.Subscribe()
	hub.closeAll()

	_, open := <-ch
	assert.False(t, open)

	// Late subscribers get an already-closed channel instead of leaking.
	_, late := hub.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestStreamFrames(t *testing.T) {
	t.Parallel()

	_, mux, clock := newTestServer(t)
	info := openTestSession(t, mux)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/sessions/" + info.SessionID + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": ping\n", line)

	playResp, err := http.Post(ts.URL+"/api/sessions/"+info.SessionID+"/play", "", nil)
	require.NoError(t, err)
	playResp.Body.Close()
	require.Equal(t, http.StatusOK, playResp.StatusCode)

	clock.Advance(100 * time.Millisecond)

	var payload string
	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			payload = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}

	var frame session.Frame
	require.NoError(t, json.Unmarshal([]byte(payload), &frame))
	assert.InDelta(t, 0.1, frame.RealTime, 1e-9)
	assert.Nil(t, frame.BoxA) // camera A still blanked this early
	assert.NotNil(t, frame.BoxB)

	// Closing the session ends the stream.
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+info.SessionID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()

	require.Eventually(t, func() bool {
		_, err := reader.ReadString('\n')
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestStreamUnknownSession(t *testing.T) {
	t.Parallel()

	_, mux, _ := newTestServer(t)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/ses_missing/stream", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
