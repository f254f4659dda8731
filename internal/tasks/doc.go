// Package tasks runs the Spotify extraction: authenticate, fetch, serialize, upload.
//
// # Extraction
//
// [Extractor.Run] performs one extraction and walks a fixed sequence of stages:
//
//	Start → Authenticated → Fetched → Uploaded
//
// Any failing step moves the run to Failed and returns immediately, wrapped with the sentinel for that step:
//   - [shared.ErrAuthFailed] : client credentials rejected or token endpoint unreachable
//   - [shared.ErrFetchFailed] : playlist missing, private, rate limited, or provider error
//   - [shared.ErrSerialization] : payload could not be rendered as JSON
//   - [shared.ErrUploadFailed] : object store unreachable or access denied
//
// Nothing is retried and no partial object is written. Each run is independent; it builds no state that outlives it.
//
// # Progress Reporting
//
// Runs accept an optional channel of [ProgressUpdate]. Sends use select with default so a slow or absent reader
// never blocks a run.
package tasks
