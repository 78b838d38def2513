package cinema

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/moyoez/friendlyshare-go/types"
)

// ParseMessage decodes a type-tagged payload from a viewer. Disconnected is
// server-generated only and is refused here like any other unknown tag.
func ParseMessage(raw []byte) (types.RoomMessage, error) {
	var msg types.RoomMessage
	if err := sonic.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("malformed room message: %v", err)
	}
	switch msg.Type {
	case types.MessagePlay, types.MessagePause, types.MessageSeeked,
		types.MessageStats, types.MessageRequestStats:
		return msg, nil
	default:
		return msg, fmt.Errorf("unrecognised message type %q", msg.Type)
	}
}

func encodeDisconnected(id uint64) ([]byte, error) {
	return sonic.Marshal(types.Disconnected{
		Type: types.MessageDisconnected,
		ID:   id,
	})
}

func encodeStatsResponses(responses []types.StatsResponse, director *string) ([]byte, error) {
	return sonic.Marshal(types.StatsResponses{
		Type:      types.MessageStatsResponse,
		Director:  director,
		Responses: responses,
	})
}
