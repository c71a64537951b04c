// Package config loads the pipeline-server configuration from config.yaml.
//
// Config fields:
//   - Server.Host                 listen interface (default 0.0.0.0)
//   - Server.HTTPPort             REST API and WebSocket port (default 8080)
//   - Server.CORS.AllowedOrigins  browser origins allowed (default ["*"])
//   - Server.Stream.Interval      dashboard broadcast period (default 5s, 0 disables)
//   - Server.Seed.File            optional YAML catalog seed
//   - Server.UIDir                optional static front-end directory
//   - Log.Level / Log.Format      slog level and handler (default info, json)
//   - Log.File                    rotated log file; stdout when empty
//
// Load(path) applies defaults before unmarshalling, then validates. Watch
// re-runs Load once a burst of file events settles and hands the old and new
// config to the caller as a Change. Only Log.Level and the CORS allow-list
// apply live; Change.RestartRequired names the other keys that moved.
package config
