package cinema

import (
	"context"
	"sync"
	"time"

	"github.com/moyoez/friendlyshare-go/tool"
)

// DefaultReclaimGrace is how long an empty room survives before destruction.
const DefaultReclaimGrace = 30 * time.Second

type reclaimToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Reclaimer schedules deferred destruction of empty rooms. Its bookkeeping map
// has its own lock, separate from the room map, so "cancel then touch room"
// and "timer fires then touch room" cannot deadlock against each other.
//
// Guarantee: once Cancel returns, the expiry callback for that token will not
// run. The expiry goroutine re-confirms ownership of an unaborted token under
// the reclaimer lock before calling out.
type Reclaimer struct {
	mu      sync.Mutex
	pending map[string]*reclaimToken
	grace   time.Duration

	// expire removes the room; it must re-check existence and emptiness
	// under the room lock.
	expire func(code string)
}

// NewReclaimer builds a reclaimer with the given grace period. The expire
// callback runs outside the reclaimer lock.
func NewReclaimer(grace time.Duration, expire func(code string)) *Reclaimer {
	if grace <= 0 {
		grace = DefaultReclaimGrace
	}
	return &Reclaimer{
		pending: make(map[string]*reclaimToken),
		grace:   grace,
		expire:  expire,
	}
}

// Schedule starts the grace timer for code. Callers must cancel any
// outstanding timer first; a duplicate here means a caller skipped that, so
// the stale timer is aborted before the new one is installed.
func (rc *Reclaimer) Schedule(code string) {
	ctx, cancel := context.WithCancel(context.Background())
	tok := &reclaimToken{ctx: ctx, cancel: cancel}

	rc.mu.Lock()
	if old, exists := rc.pending[code]; exists {
		tool.DefaultLogger.Errorf("Reclaim timer for room %s scheduled twice, aborting the old one", code)
		old.cancel()
	}
	rc.pending[code] = tok
	rc.mu.Unlock()

	go rc.wait(code, tok)
}

func (rc *Reclaimer) wait(code string, tok *reclaimToken) {
	timer := time.NewTimer(rc.grace)
	defer timer.Stop()

	select {
	case <-tok.ctx.Done():
		// cancellation racing a near-simultaneous expiry is expected
		tool.DefaultLogger.Debugf("Reclaim timer for room %s cancelled", code)
		return
	case <-timer.C:
	}

	rc.mu.Lock()
	if rc.pending[code] != tok || tok.ctx.Err() != nil {
		rc.mu.Unlock()
		return
	}
	delete(rc.pending, code)
	rc.mu.Unlock()

	rc.expire(code)
}

// Cancel aborts the outstanding timer for code. Idempotent when none exists.
func (rc *Reclaimer) Cancel(code string) {
	rc.mu.Lock()
	tok, ok := rc.pending[code]
	if ok {
		delete(rc.pending, code)
		tok.cancel()
	}
	rc.mu.Unlock()
}

// PendingCount reports how many timers are outstanding.
func (rc *Reclaimer) PendingCount() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.pending)
}
