package storage

import (
	"time"

	"github.com/desertthunder/spotify-etl/internal/shared"
)

const (
	keyBaseName = "spotify_raw_"
	keyExt      = ".json"

	// Fixed width UTC, so lexical order equals chronological order.
	isoKeyLayout = "2006-01-02T15:04:05.000000Z"

	legacyKeyLayout      = "2006-01-02 15:04:05.000000"
	legacyKeyLayoutWhole = "2006-01-02 15:04:05"
)

// ObjectKey builds the key for a payload uploaded at t, e.g. raw_data/to_processed/spotify_raw_2024-05-01T10:00:00.000000Z.json
func ObjectKey(prefix, layout string, t time.Time) string {
	return prefix + keyBaseName + FormatKeyTime(layout, t) + keyExt
}

// FormatKeyTime renders t for use in an object key.
//
// [shared.LayoutLegacy] reproduces the default datetime string of the original job: local time, a space separator,
// and microseconds only when they are non-zero. Any other layout uses [shared.LayoutISO8601].
func FormatKeyTime(layout string, t time.Time) string {
	if layout == shared.LayoutLegacy {
		if t.Nanosecond()/int(time.Microsecond) == 0 {
			return t.Format(legacyKeyLayoutWhole)
		}
		return t.Format(legacyKeyLayout)
	}
	return t.UTC().Format(isoKeyLayout)
}
