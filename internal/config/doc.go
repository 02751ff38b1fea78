// Package config provides centralized configuration management for the
// strength tooling. It handles loading configuration from multiple sources,
// validation, and path resolution.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables, including a .env file (highest priority)
//	2. YAML configuration file (config.yaml or FNO_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FNO_<SECTION>_<FIELD>:
//
//	FNO_SERVER_PORT=8080
//	FNO_LOGGING_LEVEL=debug
//	FNO_STRENGTH_WINDOW=60
//	FNO_STRENGTH_COMBINE=directional
//	FNO_STRENGTH_PUT_SEGMENTS=PUT_OPTIONS
//	FNO_FETCHER_INTERVAL=20s
//	FNO_ANALYSIS_LAST_DAYS=30
//
// # Path Management
//
// PathsConfig.Resolve turns the configured directories into absolute paths
// rooted at the base directory (the executable directory by default):
//
//	paths, err := cfg.Paths.Resolve()
//	downloadPath := paths.GetDownloadPath("fao_participant_oi_28082020.csv")
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	strengthCfg, err := cfg.StrengthConfig()
package config
