package types

// AppConfig represents the application configuration loaded from the config file.
type AppConfig struct {
	ShareDir            string `yaml:"shareDir"`
	CredsFile           string `yaml:"credsFile"`
	BindAddr            string `yaml:"bindAddr"`
	Port                int    `yaml:"port"`
	Fingerprint         string `yaml:"fingerprint"`
	ReclaimGraceSeconds int    `yaml:"reclaimGraceSeconds"`
	ListingCacheSeconds int    `yaml:"listingCacheSeconds"`
}
