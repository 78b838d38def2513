// Package cinema is the collaborative room engine: ephemeral watch-together
// sessions keyed by short codes, playback message fan-out between viewers, and
// deferred reclaim of empty rooms. Nothing here survives a restart.
package cinema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/moyoez/friendlyshare-go/tool"
	"github.com/moyoez/friendlyshare-go/types"
)

var ErrRoomNotFound = errors.New("room not found")

// Registry owns every live room and the short-URL table. The room map and the
// URL map are guarded by separate locks; each read-modify-broadcast sequence
// for a room runs inside one continuous critical section of the room lock.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	urlMu sync.Mutex
	urls  map[string]string

	reclaimer *Reclaimer
}

// NewRegistry builds an empty registry whose reclaimer destroys empty rooms
// after the given grace period.
func NewRegistry(grace time.Duration) *Registry {
	reg := &Registry{
		rooms: make(map[string]*Room),
		urls:  make(map[string]string),
	}
	reg.reclaimer = NewReclaimer(grace, reg.reclaimEmpty)
	return reg
}

// CreateRoom allocates a fresh code, stores the annotated short URL, and
// schedules the safety-net reclaim timer in case nobody ever joins.
func (reg *Registry) CreateRoom(targetURL string) string {
	reg.mu.Lock()
	var code string
	for {
		code = tool.GenerateRoomCode()
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}
	reg.rooms[code] = newRoom(code)
	reg.mu.Unlock()

	reg.urlMu.Lock()
	reg.urls[code] = fmt.Sprintf("%s?cinema=1&room=%s", targetURL, code)
	reg.urlMu.Unlock()

	reg.reclaimer.Schedule(code)
	tool.DefaultLogger.Infof("Created room %s", code)
	return code
}

// CheckRoom is a pure existence lookup.
func (reg *Registry) CheckRoom(code string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	_, ok := reg.rooms[code]
	return ok
}

// LookupURL returns the deep link stored for code.
func (reg *Registry) LookupURL(code string) (string, bool) {
	reg.urlMu.Lock()
	defer reg.urlMu.Unlock()
	url, ok := reg.urls[code]
	return url, ok
}

// Director returns whichever display name last claimed director status.
func (reg *Registry) Director(code string) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[code]
	if !ok || !room.hasDir {
		return "", false
	}
	return room.director, true
}

// Join re-verifies room existence under the lock (the caller's CheckRoom is
// racy by nature), adds a viewer with default stats, and cancels any pending
// reclaim timer for the code.
func (reg *Registry) Join(code string) (*Viewer, error) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	if !ok {
		reg.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	var id uint64
	for {
		id = tool.GenerateViewerID()
		if _, taken := room.viewers[id]; !taken {
			break
		}
	}
	viewer := newViewer(id)
	room.addViewer(viewer)
	reg.mu.Unlock()

	reg.reclaimer.Cancel(code)
	tool.DefaultLogger.Debugf("Viewer %d joined room %s", id, code)
	return viewer, nil
}

// Leave removes the viewer, closes its outbound queue, tells the remaining
// viewers, and schedules reclaim when the room has emptied.
func (reg *Registry) Leave(code string, id uint64) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	if !ok {
		reg.mu.Unlock()
		return
	}
	viewer, ok := room.viewers[id]
	if !ok {
		reg.mu.Unlock()
		return
	}
	room.removeViewer(id)
	close(viewer.send)

	if payload, err := encodeDisconnected(id); err == nil {
		room.broadcast(payload, nil)
	} else {
		tool.DefaultLogger.Errorf("Failed to encode disconnect notice: %v", err)
	}
	empty := room.empty()
	reg.mu.Unlock()

	tool.DefaultLogger.Debugf("Viewer %d left room %s", id, code)
	if empty {
		// cancel-then-schedule, never schedule twice
		reg.reclaimer.Cancel(code)
		reg.reclaimer.Schedule(code)
	}
}

// HandleMessage interprets one inbound payload from senderID. The whole
// read-modify-broadcast sequence holds the room lock so concurrent messages
// from other viewers cannot interleave inconsistently. Errors mean the payload
// was dropped; the connection stays open either way.
func (reg *Registry) HandleMessage(code string, senderID uint64, raw []byte) error {
	msg, err := ParseMessage(raw)
	if err != nil {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	sender, ok := room.viewers[senderID]
	if !ok {
		return fmt.Errorf("viewer %d is not in room %s", senderID, code)
	}

	switch msg.Type {
	case types.MessagePlay, types.MessagePause, types.MessageSeeked:
		// relayed verbatim, sender included, so every client reconciles
		// against the same stream
		if dropped := room.broadcast(raw, nil); dropped > 0 {
			tool.DefaultLogger.Warnf("Dropped %s for %d slow viewer(s) in room %s", msg.Type, dropped, code)
		}

	case types.MessageStats:
		sender.Name = msg.Name
		sender.Time = msg.Time
		if msg.PlayerState != "" {
			sender.State = msg.PlayerState
		}
		sender.Director = msg.Director
		if msg.Director {
			room.director = msg.Name
			room.hasDir = true
		}

	case types.MessageRequestStats:
		responses := make([]types.StatsResponse, 0, len(room.viewers))
		for _, v := range room.viewers {
			responses = append(responses, v.statsResponse())
		}
		sort.Slice(responses, func(i, j int) bool { return responses[i].ID < responses[j].ID })
		var director *string
		if room.hasDir {
			name := room.director
			director = &name
		}
		payload, err := encodeStatsResponses(responses, director)
		if err != nil {
			return fmt.Errorf("failed to encode stats responses: %v", err)
		}
		sender.enqueue(payload)
	}
	return nil
}

// reclaimEmpty is the reclaimer's expiry callback. It re-checks under the room
// lock that the room still exists and is still empty before destroying it;
// elapsed time alone is not trusted.
func (reg *Registry) reclaimEmpty(code string) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	if !ok {
		reg.mu.Unlock()
		return
	}
	if !room.empty() {
		reg.mu.Unlock()
		tool.DefaultLogger.Debugf("Room %s repopulated before reclaim, keeping it", code)
		return
	}
	delete(reg.rooms, code)
	reg.mu.Unlock()

	reg.urlMu.Lock()
	delete(reg.urls, code)
	reg.urlMu.Unlock()

	tool.DefaultLogger.Infof("Reclaimed empty room %s", code)
}

// RoomCount reports the number of live rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// ViewerCount reports how many viewers are connected to code.
func (reg *Registry) ViewerCount(code string) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[code]
	if !ok {
		return 0
	}
	return len(room.viewers)
}
