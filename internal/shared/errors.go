package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Extraction stage errors, one per step of a run
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrFetchFailed   = fmt.Errorf("fetch failed")
	ErrSerialization = fmt.Errorf("serialization failed")
	ErrUploadFailed  = fmt.Errorf("upload failed")

	// Service errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrRateLimited      = fmt.Errorf("rate limited")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
