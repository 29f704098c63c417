// Package config loads the client configuration file (config.yaml).
//
// Top-level types:
//   - Config{Client} — full config tree parsed from YAML
//   - ClientConfig — server_url, token_file, reconnect_delay, metrics_addr,
//     request_timeout, alert
//   - AlertConfig — sound_cmd, popup_cmd: optional shell commands run on
//     incoming notifications (the desktop analogue of the web client's sound
//     cue and browser popup)
//
// Load(path) reads the YAML file, applies defaults (3s reconnect delay, 15s
// request timeout, token file under the user config dir), then validates
// required fields. The server URL must be http(s); the WebSocket URL is
// derived from it by scheme substitution, matching how the web frontend
// builds its ws:// endpoint.
package config
