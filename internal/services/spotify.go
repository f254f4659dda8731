// Spotify API implementation of [Provider]
//
// Endpoints based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spotify-etl/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Page sizes requested for a single call. Only the first page is fetched.
const (
	ownerPlaylistsLimit = 50
	playlistTracksLimit = 100
)

// spotifyError is the error object returned by the Web API on non-2xx responses.
type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements the Provider interface for Spotify Web API interactions.
// Uses [clientcredentials] for authentication and returns raw JSON payloads.
type SpotifyService struct {
	config     *clientcredentials.Config
	baseURL    string
	transport  *http.Client
	httpClient *http.Client
	token      *oauth2.Token
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify service from cfg.
//
// client is used for both the token exchange and API calls and defaults to [http.DefaultClient].
func NewSpotifyService(cfg shared.SpotifyConfig, client *http.Client) (*SpotifyService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	if client == nil {
		client = http.DefaultClient
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		baseURL:   baseURL,
		transport: client,
		limiter:   limiter,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate exchanges the client id and secret for an access token.
//
// The token is requested eagerly so that bad credentials fail here rather than on the first API call.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.transport)

	token, err := s.config.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.token = token
	s.httpClient = oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, s.config.TokenSource(ctx)))
	return nil
}

// doRequest performs an authenticated GET against the Spotify API and returns the raw response body.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	if s.httpClient == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", shared.ErrAPIRequest)
	}

	return json.RawMessage(body), nil
}

func statusError(status int, body []byte) error {
	sentinel := shared.ErrAPIRequest
	switch status {
	case http.StatusNotFound:
		sentinel = shared.ErrPlaylistNotFound
	case http.StatusTooManyRequests:
		sentinel = shared.ErrRateLimited
	}

	var apiErr spotifyError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("%w: spotify API error: status %d: %s", sentinel, status, apiErr.Error.Message)
	}
	return fmt.Errorf("%w: spotify API error: status %d", sentinel, status)
}

// OwnerPlaylists retrieves the first page of public playlists owned by owner.
func (s *SpotifyService) OwnerPlaylists(ctx context.Context, owner string) (json.RawMessage, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(owner))
	query := url.Values{}
	query.Set("limit", fmt.Sprint(ownerPlaylistsLimit))
	query.Set("offset", "0")

	return s.doRequest(ctx, endpoint, query)
}

// PlaylistTracks retrieves the first page of tracks for playlistID.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) (json.RawMessage, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	query := url.Values{}
	query.Set("limit", fmt.Sprint(playlistTracksLimit))
	query.Set("offset", "0")
	query.Set("additional_types", "track")

	return s.doRequest(ctx, endpoint, query)
}

var _ Provider = (*SpotifyService)(nil)
