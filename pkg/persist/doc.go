// Package persist saves container state to a backend and restores it.
//
// The plugin restores each store from the last saved snapshot as the store
// is built, then saves the whole container after every mutation:
//
//	backend, err := persist.NewFileBackend(".depot")
//	c := store.New(store.WithPlugins(persist.Plugin(backend)))
//
// Snapshots are JSON envelopes carrying a format version, the save time and
// the state of every store keyed by id. Backends are available for memory,
// files, SQLite, S3 and Redis.
package persist
