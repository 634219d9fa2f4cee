package probe

import "regexp"

var (
	playlistMarker    = []byte("#EXTM3U")
	resolutionPattern = regexp.MustCompile(`RESOLUTION=(\d+)x(\d+)`)
)

// playlistHeight extracts the tallest advertised vertical resolution from an
// HLS master playlist. Media playlists and non-HLS bodies yield zero.
func playlistHeight(body []byte) (height int) {
	if !isPlaylist(body) {
		return 0
	}
	for _, match := range resolutionPattern.FindAllSubmatch(body, -1) {
		if h := atoiBytes(match[2]); h > height {
			height = h
		}
	}
	return height
}

func isPlaylist(body []byte) bool {
	return len(body) >= len(playlistMarker) && string(body[:len(playlistMarker)]) == string(playlistMarker)
}

func atoiBytes(b []byte) int {
	n := 0
	for _, c := range b {
		n = n*10 + int(c-'0')
	}
	return n
}
