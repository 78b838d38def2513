package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/friendlyshare-go/cinema"
	"github.com/moyoez/friendlyshare-go/metrics"
	"github.com/moyoez/friendlyshare-go/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// RoomController covers room lifecycle over REST: create, check, the short
// link redirect, and the QR invite image.
type RoomController struct {
	registry *cinema.Registry
	metrics  *metrics.Metrics
}

func NewRoomController(registry *cinema.Registry, m *metrics.Metrics) *RoomController {
	return &RoomController{registry: registry, metrics: m}
}

// HandleCreateRoom allocates a room for the base64 deep link in the url query
// and returns the code. A reclaim timer is already running in case nobody
// ever joins.
func (rc *RoomController) HandleCreateRoom(c *gin.Context) {
	b64 := c.Query("url")
	if b64 == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required parameter: url"))
		return
	}
	target, err := tool.DecodeBase64URL(b64)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid url parameter"))
		return
	}

	code := rc.registry.CreateRoom(target)
	if rc.metrics != nil {
		rc.metrics.IncRoomsCreated()
	}
	c.JSON(http.StatusOK, gin.H{"room": code})
}

// HandleCheckRoom is the pure existence check.
func (rc *RoomController) HandleCheckRoom(c *gin.Context) {
	code := c.Query("room")
	c.JSON(http.StatusOK, gin.H{"exists": rc.registry.CheckRoom(code)})
}

// HandleShortLink redirects a room code to its stored deep link, or 404s for
// expired and unknown codes alike.
func (rc *RoomController) HandleShortLink(c *gin.Context) {
	code := c.Param("code")
	target, ok := rc.registry.LookupURL(code)
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Room not found"))
		return
	}
	c.Redirect(http.StatusFound, target)
}

// HandleRoomQR returns a PNG QR code for the room's short link.
// GET ?room=CODE&size=200x200
func (rc *RoomController) HandleRoomQR(c *gin.Context) {
	code := c.Query("room")
	if _, ok := rc.registry.LookupURL(code); !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Room not found"))
		return
	}

	size := parseQRSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode("/wwf/"+code, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// parseQRSize parses size from "200x200" or "200".
func parseQRSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
