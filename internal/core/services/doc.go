// Package services implements the driving port interfaces.
//
// SyncEngine reads through the local cache, writes to the backend with
// an offline fallback, and replays deferred operations once the backend
// is reachable again. Watcher decides when that happens. CacheManager
// owns the on-disk snapshots and the replay queue.
//
// Services depend only on ports; adapters are wired in by the caller.
package services
