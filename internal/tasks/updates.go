package tasks

import "fmt"

// ProgressUpdate represents a progress event during an extraction run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number
	Total   int    // Total steps in a run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Authenticate Phase = iota
	ProbeOwner
	FetchTracks
	Serialize
	Upload
	Done
)

func (p Phase) String() string {
	switch p {
	case Authenticate:
		return "authenticate"
	case ProbeOwner:
		return "probe_owner"
	case FetchTracks:
		return "fetch_tracks"
	case Serialize:
		return "serialize"
	case Upload:
		return "upload"
	case Done:
		return "done"
	default:
		return ""
	}
}

// Stage is the state of a run.
type Stage int

const (
	StageStart Stage = iota
	StageAuthenticated
	StageFetched
	StageUploaded
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageAuthenticated:
		return "authenticated"
	case StageFetched:
		return "fetched"
	case StageUploaded:
		return "uploaded"
	case StageFailed:
		return "failed"
	default:
		return ""
	}
}

const totalSteps = 5

func authenticateUpdate(provider string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    1,
		Total:   totalSteps,
		Message: fmt.Sprintf("Authenticating with %s...", provider),
	}
}

func probeUpdate(owner string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProbeOwner,
		Step:    2,
		Total:   totalSteps,
		Message: fmt.Sprintf("Listing playlists owned by %s...", owner),
		Data:    owner,
	}
}

func fetchUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    3,
		Total:   totalSteps,
		Message: fmt.Sprintf("Fetching tracks for playlist %s...", playlistID),
		Data:    playlistID,
	}
}

func serializeUpdate(size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Serialize,
		Step:    4,
		Total:   totalSteps,
		Message: fmt.Sprintf("Serializing %d bytes...", size),
		Data:    size,
	}
}

func uploadUpdate(bucket, key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    5,
		Total:   totalSteps,
		Message: fmt.Sprintf("Uploading to s3://%s/%s...", bucket, key),
		Data:    key,
	}
}

func doneUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    totalSteps,
		Total:   totalSteps,
		Message: fmt.Sprintf("Uploaded %d bytes to s3://%s/%s", result.Bytes, result.Bucket, result.Key),
		Data:    result,
	}
}
