package types

// PlayerState is the playback state a viewer reports in Stats messages.
type PlayerState string

const (
	PlayerStatePlaying PlayerState = "Playing"
	PlayerStatePaused  PlayerState = "Paused"
	PlayerStateLoading PlayerState = "Loading"
)

// Message type tags on the room channel. Play/Pause/Seeked are relayed verbatim,
// Stats/RequestStats are absorbed by the server, Disconnected/StatsResponses are
// server-generated only.
const (
	MessagePlay          = "Play"
	MessagePause         = "Pause"
	MessageSeeked        = "Seeked"
	MessageStats         = "Stats"
	MessageRequestStats  = "RequestStats"
	MessageStatsResponse = "StatsResponses"
	MessageDisconnected  = "Disconnected"
)

// RoomMessage is the type-tagged wire envelope for everything a client may send.
// Fields are a union over the message types; Type decides which ones matter.
type RoomMessage struct {
	Type        string      `json:"type"`
	Name        string      `json:"name,omitempty"`
	Time        float64     `json:"time,omitempty"`
	PlayerState PlayerState `json:"player_state,omitempty"`
	Director    bool        `json:"director,omitempty"`
}

// StatsResponse is one viewer's snapshot inside a StatsResponses reply.
type StatsResponse struct {
	Type        string      `json:"type"`
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Time        float64     `json:"time"`
	PlayerState PlayerState `json:"player_state"`
	Director    bool        `json:"director"`
}

// StatsResponses aggregates every viewer's stats for the requester only.
type StatsResponses struct {
	Type      string          `json:"type"`
	Director  *string         `json:"director"`
	Responses []StatsResponse `json:"responses"`
}

// Disconnected tells remaining viewers that a connection went away.
type Disconnected struct {
	Type string `json:"type"`
	ID   uint64 `json:"id"`
}
