// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
)

// MockProvider is a test double for [services.Provider] that records every call.
type MockProvider struct {
	mu sync.Mutex

	AuthErr      error
	Playlists    json.RawMessage
	PlaylistsErr error
	Tracks       json.RawMessage
	TracksErr    error

	AuthCalls      int
	PlaylistsCalls int
	TracksCalls    int
	Owners         []string
	PlaylistIDs    []string
}

func (m *MockProvider) Authenticate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthCalls++
	return m.AuthErr
}

func (m *MockProvider) OwnerPlaylists(ctx context.Context, owner string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlaylistsCalls++
	m.Owners = append(m.Owners, owner)
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockProvider) PlaylistTracks(ctx context.Context, playlistID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TracksCalls++
	m.PlaylistIDs = append(m.PlaylistIDs, playlistID)
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return m.Tracks, nil
}

func (m *MockProvider) Name() string { return "mock" }

// FetchCalls counts every provider read made after authentication.
func (m *MockProvider) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PlaylistsCalls + m.TracksCalls
}

// PutCall is one recorded [MockStore.PutObject] invocation.
type PutCall struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
}

// MockStore is a test double for [storage.ObjectStore].
type MockStore struct {
	mu    sync.Mutex
	Err   error
	Calls []PutCall
}

func (m *MockStore) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, PutCall{
		Bucket:      bucket,
		Key:         key,
		Body:        append([]byte(nil), body...),
		ContentType: contentType,
	})
	return m.Err
}

// PutCalls returns a copy of the recorded uploads.
func (m *MockStore) PutCalls() []PutCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PutCall(nil), m.Calls...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
