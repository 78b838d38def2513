package tool

import "flag"

// Config holds runtime overrides from CLI flags.
type Config struct {
	Log             string
	UseConfigPath   string
	UseShareDir     string
	UseCredsFile    string
	UseBindAddr     string
	UsePort         int
	UseReclaimGrace int // seconds before an empty room is destroyed
}

// SetFlags parses CLI flags and returns the override config.
func SetFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseShareDir, "useShareDir", "", "override the shared directory root")
	flag.StringVar(&cfg.UseCredsFile, "useCredsFile", "", "override the credentials file path")
	flag.StringVar(&cfg.UseBindAddr, "useBindAddr", "", "override the address to bind to")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override the HTTP port")
	flag.IntVar(&cfg.UseReclaimGrace, "reclaimGrace", 0, "override the empty room grace period in seconds")
	flag.Parse()
	return cfg
}
