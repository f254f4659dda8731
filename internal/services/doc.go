// Package services defines the [Provider] interface for music metadata providers and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with the OAuth2 client credentials flow. No user is involved; the application
// exchanges its client id and secret for an access token, which [oauth2.ReuseTokenSource] refreshes on expiry.
//
// Responses are kept as [json.RawMessage]. Nothing is decoded into typed structs, so the payload handed to storage is
// exactly what the API returned.
//
// Requests are paced with a [rate.Limiter] when requests_per_second is set.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthFailed] : token exchange rejected or unreachable
//   - [shared.ErrPlaylistNotFound] : 404 from the API
//   - [shared.ErrRateLimited] : 429 from the API
//   - [shared.ErrAPIRequest] : any other failed request
package services
