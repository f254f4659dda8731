package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/spotify-etl/internal/shared"
	"github.com/desertthunder/spotify-etl/internal/storage"
	"github.com/desertthunder/spotify-etl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run performs one extraction and reports progress to the output.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	var progress chan tasks.ProgressUpdate
	var wg sync.WaitGroup
	var writeErr error
	if !useJSON {
		progress = make(chan tasks.ProgressUpdate, 8)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for update := range progress {
				if err := r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message); err != nil && writeErr == nil {
					writeErr = err
				}
			}
		}()
	}

	result, err := r.extract(ctx, progress)
	if progress != nil {
		close(progress)
		wg.Wait()
	}
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	return r.writePlain("\n✓ Uploaded %d bytes\n  Bucket: %s\n  Key:    %s\n  Run:    %s\n",
		result.Bytes, result.Bucket, result.Key, result.RunID)
}

// PlaylistID prints the identifier derived from a sharing URL.
func (r *Runner) PlaylistID(ctx context.Context, cmd *cli.Command) error {
	link := cmd.StringArg("url")
	if link == "" {
		link = r.settings().Spotify.PlaylistURL
	}
	if link == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	return r.writePlain("%s\n", shared.PlaylistIDFromURL(link))
}

// Key prints the object key an upload would use at this moment.
func (r *Runner) Key(ctx context.Context, cmd *cli.Command) error {
	config := r.settings()

	layout := cmd.String("layout")
	if layout == "" {
		layout = config.Storage.KeyLayout
	}
	switch layout {
	case shared.LayoutISO8601, shared.LayoutLegacy, "":
	default:
		return fmt.Errorf("%w: unknown key layout %q", shared.ErrInvalidInput, layout)
	}

	return r.writePlain("%s\n", storage.ObjectKey(config.Storage.KeyPrefix, layout, r.clock()))
}

// ConfigInit writes the embedded example configuration.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config written", "path", path)
	return r.writePlain("✓ Config written to %s\n", path)
}

// ConfigShow prints the effective configuration as TOML with credentials masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	masked := *r.settings()
	masked.Spotify.ClientSecret = mask(masked.Spotify.ClientSecret)
	masked.Storage.AccessKey = mask(masked.Storage.AccessKey)
	masked.Storage.SecretKey = mask(masked.Storage.SecretKey)

	if err := toml.NewEncoder(r.output).Encode(masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// mask hides a credential entirely, leaving only whether it is set.
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
