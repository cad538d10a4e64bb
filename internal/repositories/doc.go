// Package repositories implements persistence for the two credential strings.
//
// Key Implementations:
//   - [SettingsRepository] : [models.KeyValueStore] over the SQLite settings table
//   - [MemoryStore] : in-process [models.KeyValueStore] for tests and ephemeral sessions
//   - [CredentialStore] : typed access to the client id and access token keys
//
// Writes go straight to the underlying store. Nothing is batched or cached, and store
// errors are returned to the caller unchanged.
package repositories
