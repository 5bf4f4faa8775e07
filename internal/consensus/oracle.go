// Package consensus provides non-blocking cross-camera corroboration hints.
//
// When one camera's projection window is nearly exhausted, the paired camera
// may still see the object; a positive hint justifies extending the window.
// Lookups are advisory and must never stall the paint loop, so the oracle
// always answers from its cache immediately and refreshes asynchronously.
package consensus

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dualcam/syncview/internal/httputil"
	"github.com/dualcam/syncview/internal/monitoring"
	"github.com/dualcam/syncview/internal/timeutil"
)

// TTL is how long a cached hint is considered fresh. A stale hint is still
// returned (it remains usable) but triggers a background refresh.
const TTL = 500 * time.Millisecond

// Hint is the best-known corroboration state for one camera label.
type Hint struct {
	HasConsensus bool
	FetchedAt    time.Time
}

// consensusResponse is the wire format of the consensus endpoint.
type consensusResponse struct {
	HasConsensus bool `json:"has_consensus"`
}

// Oracle caches per-camera-label hints for one clip pairing.
//
// HintFor never blocks: it returns whatever is cached (possibly nothing on
// first use) and, when the entry is stale or missing, fires an asynchronous
// lookup to freshen the cache for subsequent frames. Overlapping refreshes
// are suppressed per label; results are last-write-wins.
type Oracle struct {
	client    httputil.HTTPClient
	clock     timeutil.Clock
	baseURL   string
	pairingID string

	mu       sync.Mutex
	cache    map[string]Hint
	inflight map[string]bool
}

// NewOracle creates an Oracle for one pairing against the consensus endpoint
// at baseURL.
func NewOracle(client httputil.HTTPClient, clock timeutil.Clock, baseURL, pairingID string) *Oracle {
	return &Oracle{
		client:    client,
		clock:     clock,
		baseURL:   baseURL,
		pairingID: pairingID,
		cache:     make(map[string]Hint),
		inflight:  make(map[string]bool),
	}
}

// HintFor returns the cached hint for a camera label and whether one exists.
// The first call near a projection boundary may return nothing even when
// corroboration exists; later frames within the same occlusion pick it up.
func (o *Oracle) HintFor(label string, queryTime float64) (Hint, bool) {
	o.mu.Lock()
	hint, ok := o.cache[label]
	fresh := ok && o.clock.Since(hint.FetchedAt) < TTL
	launch := !fresh && !o.inflight[label]
	if launch {
		o.inflight[label] = true
	}
	o.mu.Unlock()

	if launch {
		go o.refresh(label, queryTime)
	}
	return hint, ok
}

// Confirms reports whether a cached hint currently corroborates presence at
// the query time. Suitable as a trajectory.ConsensusFunc.
func (o *Oracle) Confirms(label string) func(queryTime float64) bool {
	return func(queryTime float64) bool {
		hint, ok := o.HintFor(label, queryTime)
		return ok && hint.HasConsensus
	}
}

// refresh fetches the endpoint and overwrites the cache entry. Any failure
// caches a negative hint so reconstruction proceeds without corroboration.
func (o *Oracle) refresh(label string, queryTime float64) {
	result, err := o.fetch(label, queryTime)
	if err != nil {
		monitoring.Logf("consensus lookup failed for pairing %s camera %s: %v", o.pairingID, label, err)
		result = false
	}

	o.mu.Lock()
	o.cache[label] = Hint{HasConsensus: result, FetchedAt: o.clock.Now()}
	o.inflight[label] = false
	o.mu.Unlock()
}

func (o *Oracle) fetch(label string, queryTime float64) (bool, error) {
	q := url.Values{}
	q.Set("pairing_id", o.pairingID)
	q.Set("camera", label)
	q.Set("t", fmt.Sprintf("%.3f", queryTime))

	resp, err := o.client.Get(o.baseURL + "?" + q.Encode())
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body consensusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode consensus response: %w", err)
	}
	return body.HasConsensus, nil
}
