package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-etl/internal/services"
	"github.com/desertthunder/spotify-etl/internal/shared"
	"github.com/desertthunder/spotify-etl/internal/storage"
)

// ExtractOpts configures an [Extractor].
type ExtractOpts struct {
	PlaylistURL string           // Sharing URL of the playlist to extract
	ProbeOwner  string           // Owner whose playlists are listed before the fetch; empty skips the call
	Bucket      string           // Destination bucket
	KeyPrefix   string           // Destination path, e.g. raw_data/to_processed/
	KeyLayout   string           // Key timestamp layout (shared.LayoutISO8601 or shared.LayoutLegacy)
	Timeout     time.Duration    // Per-run timeout; zero leaves it to the caller's context
	Clock       func() time.Time // Wall clock used for object keys (default: time.Now)
}

// RunResult summarizes a completed extraction.
type RunResult struct {
	RunID      string    `json:"run_id"`
	PlaylistID string    `json:"playlist_id"`
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	Bytes      int       `json:"bytes"`
	Stage      Stage     `json:"-"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Extractor fetches one playlist's tracks from a [services.Provider] and writes the raw payload to a [storage.ObjectStore].
type Extractor struct {
	provider services.Provider
	store    storage.ObjectStore
	opts     ExtractOpts
	logger   *log.Logger
}

// NewExtractor creates a new Extractor. A nil logger defaults to [shared.NewLogger].
func NewExtractor(provider services.Provider, store storage.ObjectStore, opts ExtractOpts, logger *log.Logger) *Extractor {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Extractor{
		provider: provider,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// NewExtractorFromConfig maps the application config onto [ExtractOpts].
func NewExtractorFromConfig(provider services.Provider, store storage.ObjectStore, config *shared.Config, logger *log.Logger) (*Extractor, error) {
	timeout, err := config.Run.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return NewExtractor(provider, store, ExtractOpts{
		PlaylistURL: config.Spotify.PlaylistURL,
		ProbeOwner:  config.Spotify.ProbeOwner,
		Bucket:      config.Storage.Bucket,
		KeyPrefix:   config.Storage.KeyPrefix,
		KeyLayout:   config.Storage.KeyLayout,
		Timeout:     timeout,
	}, logger), nil
}

// WithClock replaces the wall clock used for timestamps and object keys.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	if now != nil {
		e.opts.Clock = now
	}
	return e
}

func (e *Extractor) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a single extraction. On failure no object has been written and the returned error wraps the sentinel of
// the failing step.
func (e *Extractor) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	result := &RunResult{
		RunID:      shared.GenerateID(),
		PlaylistID: shared.PlaylistIDFromURL(e.opts.PlaylistURL),
		Bucket:     e.opts.Bucket,
		Stage:      StageStart,
		StartedAt:  e.opts.Clock(),
	}
	logger := shared.WithLogger(e.logger, "run_id", result.RunID)

	fail := func(err error) (*RunResult, error) {
		logger.Error("extraction failed", "stage", result.Stage, "error", err)
		result.Stage = StageFailed
		return nil, err
	}

	e.sendProgress(progress, authenticateUpdate(e.provider.Name()))
	if err := e.provider.Authenticate(ctx); err != nil {
		return fail(wrapStage(shared.ErrAuthFailed, err))
	}
	result.Stage = StageAuthenticated
	logger.Info("authenticated", "provider", e.provider.Name())

	if e.opts.ProbeOwner != "" {
		e.sendProgress(progress, probeUpdate(e.opts.ProbeOwner))
		playlists, err := e.provider.OwnerPlaylists(ctx, e.opts.ProbeOwner)
		if err != nil {
			return fail(wrapStage(shared.ErrFetchFailed, err))
		}
		logger.Debug("listed owner playlists", "owner", e.opts.ProbeOwner, "bytes", len(playlists))
	}

	e.sendProgress(progress, fetchUpdate(result.PlaylistID))
	payload, err := e.provider.PlaylistTracks(ctx, result.PlaylistID)
	if err != nil {
		return fail(wrapStage(shared.ErrFetchFailed, err))
	}
	result.Stage = StageFetched
	logger.Info("fetched playlist tracks", "playlist_id", result.PlaylistID, "bytes", len(payload))

	body, err := serialize(payload)
	if err != nil {
		return fail(err)
	}
	e.sendProgress(progress, serializeUpdate(len(body)))

	result.Key = storage.ObjectKey(e.opts.KeyPrefix, e.opts.KeyLayout, e.opts.Clock())
	e.sendProgress(progress, uploadUpdate(result.Bucket, result.Key))
	if err := e.store.PutObject(ctx, result.Bucket, result.Key, body, storage.ContentTypeJSON); err != nil {
		return fail(wrapStage(shared.ErrUploadFailed, err))
	}

	result.Stage = StageUploaded
	result.Bytes = len(body)
	result.FinishedAt = e.opts.Clock()
	logger.Info("uploaded payload", "bucket", result.Bucket, "key", result.Key, "bytes", result.Bytes)

	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

// serialize renders the provider payload as compact JSON text.
func serialize(payload json.RawMessage) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", shared.ErrSerialization)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSerialization, err)
	}
	return body, nil
}

// wrapStage tags err with the sentinel of the step that produced it, keeping err in the chain.
func wrapStage(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
