package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/moyoez/friendlyshare-go/cinema"
	"github.com/moyoez/friendlyshare-go/metrics"
	"github.com/moyoez/friendlyshare-go/tool"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the auth middleware already gates this route
	},
}

// Inbound control messages are small and frequent (Stats every couple of
// seconds plus user actions); anything past this is a misbehaving client.
const (
	inboundMessageRate  = 20
	inboundMessageBurst = 40
)

// HandleRoomWS upgrades the request and runs one viewer's session: a writer
// goroutine drains the viewer's outbound queue while the read loop feeds
// messages to the room engine. Disconnecting triggers the leave sequence.
func HandleRoomWS(registry *cinema.Registry, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("room")
		if !registry.CheckRoom(code) {
			c.JSON(http.StatusNotFound, tool.FastReturnError("Room not found"))
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// the pre-upgrade check was racy; Join re-verifies under the lock
		viewer, err := registry.Join(code)
		if err != nil {
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "room not found")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}

		if m != nil {
			m.ConnectionOpened()
			defer m.ConnectionClosed()
		}

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for payload := range viewer.Outbound() {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}()

		limiter := rate.NewLimiter(rate.Limit(inboundMessageRate), inboundMessageBurst)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if !limiter.Allow() {
				if m != nil {
					m.IncMessagesDropped()
				}
				continue
			}
			if err := registry.HandleMessage(code, viewer.ID, raw); err != nil {
				tool.DefaultLogger.Debugf("Dropping message from viewer %d in room %s: %v", viewer.ID, code, err)
				if m != nil {
					m.IncMessagesDropped()
				}
				continue
			}
			if m != nil {
				m.IncMessagesRelayed()
			}
		}

		registry.Leave(code, viewer.ID)
		<-writerDone
	}
}
