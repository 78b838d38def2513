// Package metrics exposes Prometheus counters and gauges for the share server.
package metrics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the server.
type Metrics struct {
	registry           *prometheus.Registry
	requestsTotal      prometheus.Counter
	errorsTotal        prometheus.Counter
	roomsCreatedTotal  prometheus.Counter
	messagesRelayed    prometheus.Counter
	messagesDropped    prometheus.Counter
	openConnections    prometheus.Gauge
	liveRooms          prometheus.Gauge
}

// New creates and registers the instruments on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "friendlyshare_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "friendlyshare_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	roomsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "friendlyshare_rooms_created_total",
		Help: "Total number of cinema rooms created",
	})
	messagesRelayed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "friendlyshare_room_messages_total",
		Help: "Total number of room messages accepted from viewers",
	})
	messagesDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "friendlyshare_room_messages_dropped_total",
		Help: "Total number of room messages dropped (malformed, unknown, or rate limited)",
	})
	openConnections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "friendlyshare_open_room_connections",
		Help: "Number of currently open room websocket connections",
	})
	liveRooms := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "friendlyshare_live_rooms",
		Help: "Number of rooms currently alive",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		roomsCreatedTotal,
		messagesRelayed,
		messagesDropped,
		openConnections,
		liveRooms,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		errorsTotal:       errorsTotal,
		roomsCreatedTotal: roomsCreatedTotal,
		messagesRelayed:   messagesRelayed,
		messagesDropped:   messagesDropped,
		openConnections:   openConnections,
		liveRooms:         liveRooms,
	}
}

func (m *Metrics) IncRequests()        { m.requestsTotal.Inc() }
func (m *Metrics) IncErrors()          { m.errorsTotal.Inc() }
func (m *Metrics) IncRoomsCreated()    { m.roomsCreatedTotal.Inc() }
func (m *Metrics) IncMessagesRelayed() { m.messagesRelayed.Inc() }
func (m *Metrics) IncMessagesDropped() { m.messagesDropped.Inc() }
func (m *Metrics) ConnectionOpened()   { m.openConnections.Inc() }
func (m *Metrics) ConnectionClosed()   { m.openConnections.Dec() }

// SetLiveRooms refreshes the live room gauge.
func (m *Metrics) SetLiveRooms(n int) {
	m.liveRooms.Set(float64(n))
}

// Handler serves the exposition endpoint. updateGauges runs before each scrape
// to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RequestMiddleware records request and error counts for every route.
func RequestMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.IncRequests()
		if c.Writer.Status() >= http.StatusBadRequest {
			m.IncErrors()
		}
	}
}
