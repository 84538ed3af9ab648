// Package youtube materializes playlists with the YouTube Data API v3.
// Each song is resolved to a video through search; the first hit wins.
package youtube
