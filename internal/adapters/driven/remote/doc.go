// Package remote implements the backend API port over HTTP.
//
// Requests are throttled by a token bucket and, when a token is
// configured, authenticated with a static OAuth2 bearer token. Read
// endpoints return the raw JSON body; normalisation happens in the core.
package remote
