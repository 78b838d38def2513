package tool

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/friendlyshare-go/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		ShareDir:            "",
		CredsFile:           "creds.yaml",
		BindAddr:            "0.0.0.0",
		Port:                5000,
		Fingerprint:         GenerateRandomFingerprint(),
		ReclaimGraceSeconds: 30,
		ListingCacheSeconds: 5,
	}
}

// LoadConfig reads the yaml config at path, creating it with defaults when missing.
// A .env file in the working directory is applied first so FRIENDLYSHARE_* variables
// can override the file location without touching flags.
func LoadConfig(path string) (types.AppConfig, error) {
	// missing .env is fine, only load it when present
	if err := godotenv.Load(); err == nil {
		DefaultLogger.Debugf("Loaded environment overrides from .env")
	}
	if env := os.Getenv("FRIENDLYSHARE_CONFIG"); env != "" && path == "" {
		path = env
	}
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file with fingerprint %s", cfg.Fingerprint)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}

	var configChanged bool
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = GenerateRandomFingerprint()
		DefaultLogger.Infof("Generated instance fingerprint")
		configChanged = true
	}
	if cfg.ReclaimGraceSeconds <= 0 {
		cfg.ReclaimGraceSeconds = 30
	}
	if cfg.ListingCacheSeconds < 0 {
		cfg.ListingCacheSeconds = 0
	}

	if configChanged {
		if writeErr := writeConfig(path, cfg); writeErr != nil {
			DefaultLogger.Warnf("Failed to update config file: %v", writeErr)
		}
	}

	CurrentConfig = cfg
	return cfg, nil
}

// MergeFlags applies CLI flag overrides on top of the loaded config.
func MergeFlags(cfg types.AppConfig, flags Config) types.AppConfig {
	if flags.UseShareDir != "" {
		cfg.ShareDir = flags.UseShareDir
	}
	if flags.UseCredsFile != "" {
		cfg.CredsFile = flags.UseCredsFile
	}
	if flags.UseBindAddr != "" {
		cfg.BindAddr = flags.UseBindAddr
	}
	if flags.UsePort > 0 {
		cfg.Port = flags.UsePort
	}
	if flags.UseReclaimGrace > 0 {
		cfg.ReclaimGraceSeconds = flags.UseReclaimGrace
	}
	cfg.ShareDir = strings.TrimSpace(cfg.ShareDir)
	return cfg
}

func writeConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
