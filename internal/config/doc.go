// Package config loads, validates, and normalizes starrlist configuration.
//
// Configuration is a small TOML file (connection URLs, timeouts, directories,
// log rotation, journal settings) with working defaults, so running without a
// config file is fully supported. Trakt client credentials deliberately live
// outside the file: hook scripts receive them from the environment, matching
// how Sonarr and Radarr pass secrets to custom scripts.
package config
