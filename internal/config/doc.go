// Package config provides the ssdpctl configuration file.
//
// The file is YAML and holds the multicast port, interface limit, logging
// level, polling and announce intervals, and the header values announced in
// NOTIFY messages.
//
// # Configuration File Location
//
// The default file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/ssdp/config.yaml or $HOME/.config/ssdp/config.yaml
//   - macOS: $HOME/.config/ssdp/config.yaml
//   - Windows: %LOCALAPPDATA%\ssdp\config.yaml
//
// A missing file is not an error: Load returns Default().
//
// # Example
//
//	version: 1
//	port: 1900
//	max_interfaces: 16
//	log_level: info
//	poll_interval: 100ms
//	announce_interval: 30s
//	header:
//	  search_target: urn:schemas-upnp-org:device:Basic:1
//	  usn: uuid:2f402f80-da50-11e1-9b23-001788255acc
//	  location_port: 8080
//	  location_uri_suffix: description.xml
//	  sm_id: "700000123"
//	  device_type: DEV_TYPE
//
// # Thread Safety
//
// Save serialises writes within the process and replaces the file atomically.
package config
