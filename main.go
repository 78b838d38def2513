package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/moyoez/friendlyshare-go/api"
	"github.com/moyoez/friendlyshare-go/cinema"
	"github.com/moyoez/friendlyshare-go/metrics"
	"github.com/moyoez/friendlyshare-go/servepoint"
	"github.com/moyoez/friendlyshare-go/tool"
	"github.com/moyoez/friendlyshare-go/users"
)

func main() {
	cfg := tool.SetFlags()
	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	appCfg = tool.MergeFlags(appCfg, cfg)

	tool.InitLogger()
	if cfg.Log == "" {
		tool.DefaultLogger.SetLevel(log.DebugLevel)
	} else {
		switch strings.ToLower(cfg.Log) {
		case "dev":
			tool.DefaultLogger.SetLevel(log.DebugLevel)
		case "prod":
			tool.DefaultLogger.SetLevel(log.InfoLevel)
		case "none":
			tool.DefaultLogger.SetLevel(log.FatalLevel)
		default:
			tool.DefaultLogger.Warnf("Unknown log mode %q, using debug level", cfg.Log)
			tool.DefaultLogger.SetLevel(log.DebugLevel)
		}
	}

	if appCfg.ShareDir == "" {
		tool.DefaultLogger.Fatalf("Please specify the shared directory (shareDir in %s or -useShareDir)", tool.ConfigPath)
	}

	sp, err := servepoint.New(appCfg.ShareDir)
	if err != nil {
		tool.DefaultLogger.Fatalf("Share root rejected: %v", err)
	}
	dir, err := users.Load(appCfg.CredsFile)
	if err != nil {
		tool.DefaultLogger.Fatalf("Could not load credentials: %v", err)
	}
	tool.DefaultLogger.Infof("Loaded %d user(s) from %s", dir.Len(), appCfg.CredsFile)

	registry := cinema.NewRegistry(time.Duration(appCfg.ReclaimGraceSeconds) * time.Second)
	m := metrics.New()

	server := api.NewServer(appCfg, sp, dir, registry, m)
	if err := server.Start(); err != nil {
		tool.DefaultLogger.Fatalf("Server startup failed: %v", err)
	}
}
