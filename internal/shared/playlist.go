package shared

import "strings"

// PlaylistIDFromURL derives a playlist identifier from a sharing URL such as
// https://open.spotify.com/playlist/<id>?si=...
//
// The query string (and fragment) is dropped first, then the last path segment is returned.
// The URL shape is not validated.
func PlaylistIDFromURL(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	link = strings.TrimRight(link, "/")
	if i := strings.LastIndex(link, "/"); i >= 0 {
		return link[i+1:]
	}
	return link
}
