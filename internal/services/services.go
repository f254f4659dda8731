// package services defines the provider interface used by extraction runs
//
// Spotify Web API
package services

import (
	"context"
	"encoding/json"
)

// Provider defines the read operations an extraction run needs from a music metadata provider.
type Provider interface {
	// Authenticate performs the client credentials exchange.
	// Returns an error if the credentials are rejected or the token endpoint is unreachable.
	Authenticate(ctx context.Context) error

	// OwnerPlaylists lists the public playlists owned by the named account, as returned by the provider.
	OwnerPlaylists(ctx context.Context, owner string) (json.RawMessage, error)

	// PlaylistTracks retrieves the track listing for a playlist, as returned by the provider.
	PlaylistTracks(ctx context.Context, playlistID string) (json.RawMessage, error)

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}
