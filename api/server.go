package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/friendlyshare-go/api/controllers"
	"github.com/moyoez/friendlyshare-go/api/middlewares"
	"github.com/moyoez/friendlyshare-go/cinema"
	"github.com/moyoez/friendlyshare-go/metrics"
	"github.com/moyoez/friendlyshare-go/servepoint"
	"github.com/moyoez/friendlyshare-go/tool"
	"github.com/moyoez/friendlyshare-go/types"
	"github.com/moyoez/friendlyshare-go/users"
)

// Server wires the serve point, user directory, and room engine into one gin
// engine. All registries are constructed at startup and passed in; there is no
// ambient shared state.
type Server struct {
	cfg      types.AppConfig
	sp       *servepoint.ServePoint
	users    *users.Directory
	registry *cinema.Registry
	metrics  *metrics.Metrics

	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

func NewServer(cfg types.AppConfig, sp *servepoint.ServePoint, dir *users.Directory, registry *cinema.Registry, m *metrics.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		sp:       sp,
		users:    dir,
		registry: registry,
		metrics:  m,
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(metrics.RequestMiddleware(s.metrics))

	browseCtrl := controllers.NewBrowseController(s.sp, time.Duration(s.cfg.ListingCacheSeconds)*time.Second)
	downloadCtrl := controllers.NewDownloadController(s.sp)
	cinemaCtrl := controllers.NewCinemaController(s.sp)
	roomCtrl := controllers.NewRoomController(s.registry, s.metrics)

	readOnly := middlewares.RequireRole(s.users, types.RoleReadOnly)
	uploader := middlewares.RequireRole(s.users, types.RoleUploader)
	admin := middlewares.RequireRole(s.users, types.RoleAdmin)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "fingerprint": s.cfg.Fingerprint})
	})
	engine.GET("/metrics", admin, s.metrics.Handler(func() {
		s.metrics.SetLiveRooms(s.registry.RoomCount())
	}))

	engine.GET("/browse/*path", readOnly, browseCtrl.HandleBrowse)
	engine.GET("/files/*path", readOnly, downloadCtrl.HandleDownload)
	engine.GET("/watch/*path", readOnly, cinemaCtrl.HandleCinemaPage)
	engine.GET("/wwf/:code", readOnly, roomCtrl.HandleShortLink)

	room := engine.Group("/api/room")
	{
		room.GET("/create", uploader, roomCtrl.HandleCreateRoom)
		room.GET("/check", readOnly, roomCtrl.HandleCheckRoom)
		room.GET("/qr", readOnly, roomCtrl.HandleRoomQR)
		room.GET("/ws", readOnly, HandleRoomWS(s.registry, s.metrics))
	}

	return engine
}

// Handler returns the routed engine, building it on first use. Tests drive
// this directly without opening a listener.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		s.engine = s.setupRoutes()
	}
	return s.engine
}

// Start builds the routes and serves until the listener fails.
func (s *Server) Start() error {
	engine := s.setupRoutes()

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.BindAddr, s.cfg.Port),
		Handler: engine,
	}
	server := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Serving %s on http://%s", s.cfg.ShareDir, server.Addr)
	return server.ListenAndServe()
}
