package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/spotify-etl/internal/shared"
	tu "github.com/desertthunder/spotify-etl/internal/testing"
)

const tracksPayload = `{"href":"https://api.spotify.com/v1/playlists/abc/tracks","items":[{"added_at":"2024-01-01T00:00:00Z","track":{"id":"t1","name":"Song","artists":[{"id":"a1","name":"Artist"}]}}],"limit":100,"next":null,"offset":0,"total":1}`

// fakeSpotify serves the token endpoint and a small slice of the Web API.
type fakeSpotify struct {
	apiStatus  int
	apiBody    string
	tokenCalls atomic.Int32
	apiCalls   atomic.Int32
	lastPath   string
	lastQuery  string
	lastAuth   string
}

func (f *fakeSpotify) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST to token endpoint, got %s", r.Method)
		}
		id, secret, ok := r.BasicAuth()
		if !ok || id != "test_client_id" || secret != "test_client_secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_client","error_description":"Invalid client"}`))
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token form: %v", err)
			return
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("expected client_credentials grant, got %s", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test_access_token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)
		f.lastPath = r.URL.Path
		f.lastQuery = r.URL.RawQuery
		f.lastAuth = r.Header.Get("Authorization")

		status := f.apiStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(f.apiBody))
	})
	return mux
}

func newTestService(t *testing.T, server *httptest.Server, secret string) *SpotifyService {
	t.Helper()
	srv, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: secret,
		TokenURL:     server.URL + "/api/token",
		APIBaseURL:   server.URL + "/v1/",
	}, server.Client())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(shared.SpotifyConfig{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
			}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected default base URL, got %s", srv.baseURL)
			}
			if srv.config.TokenURL != spotifyTokenURL {
				t.Errorf("expected default token URL, got %s", srv.config.TokenURL)
			}
			if srv.transport != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if srv.limiter != nil {
				t.Error("expected no limiter without requests_per_second")
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientSecret: "test_client_secret"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "test_client_id"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("With Rate Limit", func(t *testing.T) {
			srv, err := NewSpotifyService(shared.SpotifyConfig{
				ClientID:          "test_client_id",
				ClientSecret:      "test_client_secret",
				RequestsPerSecond: 2,
			}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("Valid Credentials", func(t *testing.T) {
			fake := &fakeSpotify{}
			server := httptest.NewServer(fake.handler(t))
			defer server.Close()

			srv := newTestService(t, server, "test_client_secret")
			if err := srv.Authenticate(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.token == nil || srv.token.AccessToken != "test_access_token" {
				t.Errorf("expected access token to be set, got %+v", srv.token)
			}
			if fake.tokenCalls.Load() != 1 {
				t.Errorf("expected one token call, got %d", fake.tokenCalls.Load())
			}
		})

		t.Run("Invalid Credentials", func(t *testing.T) {
			fake := &fakeSpotify{}
			server := httptest.NewServer(fake.handler(t))
			defer server.Close()

			srv := newTestService(t, server, "wrong_secret")
			err := srv.Authenticate(context.Background())
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			if srv.httpClient != nil {
				t.Error("expected no authenticated client after failure")
			}
		})

		t.Run("Unreachable Token Endpoint", func(t *testing.T) {
			server := httptest.NewServer(http.NotFoundHandler())
			url := server.URL
			server.Close()

			srv, err := NewSpotifyService(shared.SpotifyConfig{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
				TokenURL:     url + "/api/token",
			}, nil)
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			if err := srv.Authenticate(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection reset"))}
			srv, err := NewSpotifyService(shared.SpotifyConfig{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
			}, client)
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			err = srv.Authenticate(context.Background())
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), "connection reset") {
				t.Errorf("expected transport error in message, got %v", err)
			}
		})
	})

	t.Run("PlaylistTracks", func(t *testing.T) {
		t.Run("Not Authenticated", func(t *testing.T) {
			srv, _ := NewSpotifyService(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"}, nil)
			_, err := srv.PlaylistTracks(context.Background(), "abc")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Returns Raw Payload", func(t *testing.T) {
			fake := &fakeSpotify{apiBody: tracksPayload}
			server := httptest.NewServer(fake.handler(t))
			defer server.Close()

			srv := newTestService(t, server, "test_client_secret")
			if err := srv.Authenticate(context.Background()); err != nil {
				t.Fatalf("failed to authenticate: %v", err)
			}

			payload, err := srv.PlaylistTracks(context.Background(), "abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if string(payload) != tracksPayload {
				t.Errorf("expected payload to be returned verbatim, got %s", payload)
			}
			if fake.lastPath != "/v1/playlists/abc/tracks" {
				t.Errorf("unexpected path %s", fake.lastPath)
			}
			if !strings.Contains(fake.lastQuery, "limit=100") || !strings.Contains(fake.lastQuery, "offset=0") {
				t.Errorf("unexpected query %s", fake.lastQuery)
			}
			if fake.apiCalls.Load() != 1 {
				t.Errorf("expected one API call, got %d", fake.apiCalls.Load())
			}
			if fake.lastAuth != "Bearer test_access_token" {
				t.Errorf("expected bearer token, got %q", fake.lastAuth)
			}
		})

		t.Run("Missing Playlist ID", func(t *testing.T) {
			srv, _ := NewSpotifyService(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"}, nil)
			_, err := srv.PlaylistTracks(context.Background(), "")
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		tc := []struct {
			name    string
			status  int
			body    string
			wantErr error
			wantMsg string
		}{
			{
				name:    "Not Found",
				status:  http.StatusNotFound,
				body:    `{"error":{"status":404,"message":"Resource not found"}}`,
				wantErr: shared.ErrPlaylistNotFound,
				wantMsg: "Resource not found",
			},
			{
				name:    "Rate Limited",
				status:  http.StatusTooManyRequests,
				body:    `{"error":{"status":429,"message":"API rate limit exceeded"}}`,
				wantErr: shared.ErrRateLimited,
				wantMsg: "status 429",
			},
			{
				name:    "Server Error Without Body",
				status:  http.StatusBadGateway,
				body:    "",
				wantErr: shared.ErrAPIRequest,
				wantMsg: "status 502",
			},
			{
				name:    "Invalid JSON",
				status:  http.StatusOK,
				body:    "<html>oops</html>",
				wantErr: shared.ErrAPIRequest,
				wantMsg: "not valid JSON",
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				fake := &fakeSpotify{apiStatus: tt.status, apiBody: tt.body}
				server := httptest.NewServer(fake.handler(t))
				defer server.Close()

				srv := newTestService(t, server, "test_client_secret")
				if err := srv.Authenticate(context.Background()); err != nil {
					t.Fatalf("failed to authenticate: %v", err)
				}

				payload, err := srv.PlaylistTracks(context.Background(), "abc")
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if !strings.Contains(err.Error(), tt.wantMsg) {
					t.Errorf("expected error to contain %q, got %v", tt.wantMsg, err)
				}
				if payload != nil {
					t.Error("expected nil payload on error")
				}
			})
		}
	})

	t.Run("OwnerPlaylists", func(t *testing.T) {
		fake := &fakeSpotify{apiBody: `{"items":[],"total":0}`}
		server := httptest.NewServer(fake.handler(t))
		defer server.Close()

		srv := newTestService(t, server, "test_client_secret")
		if err := srv.Authenticate(context.Background()); err != nil {
			t.Fatalf("failed to authenticate: %v", err)
		}

		payload, err := srv.OwnerPlaylists(context.Background(), "spotify")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("expected JSON payload, got %v", err)
		}
		if fake.lastPath != "/v1/users/spotify/playlists" {
			t.Errorf("unexpected path %s", fake.lastPath)
		}
		if !strings.Contains(fake.lastQuery, "limit=50") {
			t.Errorf("unexpected query %s", fake.lastQuery)
		}

		if _, err := srv.OwnerPlaylists(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Service Interface", func(t *testing.T) {
		srv, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"}, nil)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Provider = srv
	})
}
