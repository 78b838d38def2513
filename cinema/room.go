package cinema

import (
	"github.com/moyoez/friendlyshare-go/types"
)

// outboundQueueSize is the per-connection buffer between room broadcasts and
// the connection's writer goroutine. Broadcasts never block on a slow peer;
// a viewer whose queue is full loses messages instead of stalling the room.
const outboundQueueSize = 256

// Viewer is one connected participant's live state within a room. Stats fields
// are updated on every Stats message from that connection.
type Viewer struct {
	ID       uint64
	Name     string
	Time     float64
	State    types.PlayerState
	Director bool

	send chan []byte
}

func newViewer(id uint64) *Viewer {
	return &Viewer{
		ID:    id,
		State: types.PlayerStatePaused,
		send:  make(chan []byte, outboundQueueSize),
	}
}

// Outbound returns the channel the connection's writer goroutine drains. It is
// closed when the viewer leaves the room.
func (v *Viewer) Outbound() <-chan []byte {
	return v.send
}

// enqueue hands a payload to the viewer's writer without blocking. Reports
// false when the queue is full and the payload was dropped.
func (v *Viewer) enqueue(payload []byte) bool {
	select {
	case v.send <- payload:
		return true
	default:
		return false
	}
}

func (v *Viewer) statsResponse() types.StatsResponse {
	return types.StatsResponse{
		Type:        "StatsResponse",
		ID:          v.ID,
		Name:        v.Name,
		Time:        v.Time,
		PlayerState: v.State,
		Director:    v.Director,
	}
}

// Room is the per-code session state. It is owned exclusively by the Registry;
// every mutation happens under the registry's room lock.
type Room struct {
	Code string

	viewers  map[uint64]*Viewer
	director string
	hasDir   bool
}

func newRoom(code string) *Room {
	return &Room{
		Code:    code,
		viewers: make(map[uint64]*Viewer),
	}
}

func (r *Room) addViewer(v *Viewer) {
	r.viewers[v.ID] = v
}

func (r *Room) removeViewer(id uint64) {
	delete(r.viewers, id)
}

func (r *Room) empty() bool {
	return len(r.viewers) == 0
}

// broadcast fans a payload out to every viewer, optionally skipping one id.
// Callers hold the registry's room lock.
func (r *Room) broadcast(payload []byte, exclude *uint64) int {
	dropped := 0
	for id, v := range r.viewers {
		if exclude != nil && id == *exclude {
			continue
		}
		if !v.enqueue(payload) {
			dropped++
		}
	}
	return dropped
}
