// Package configs manages client configuration for cleanroom.
//
// Configuration is stored in TOML format at ~/.config/cleanroom/config.toml
// (platform-appropriate via os.UserConfigDir). It holds:
//
//   - Client identity: orchestrator URL, client id, installation UUID
//   - Polling tuning: interval, elapsed-time bound, failure bound,
//     completion markers
//   - Transfer bounds: maximum dataset size
//
// The installation UUID is auto-generated on first use and tags journal
// entries.
//
// # Settings
//
// UserCleanroomSettings resolves the config and data directories at
// startup. Tests override it to redirect file locations.
package configs
