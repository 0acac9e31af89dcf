// Package file provides the TOML configuration store.
//
// Keys are flat and dot-separated ("sync.cache_ttl"); on disk they are
// written as nested TOML tables. The store can watch its file and reload
// when it is edited by hand while the client runs.
package file
