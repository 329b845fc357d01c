// Package naming extracts scheduling metadata from video file names.
package naming

import (
	"regexp"
	"strconv"
)

// videoNamePattern matches names like "video05del11numero3": a two-digit day,
// a two-digit month and a sequence number of any length.
var videoNamePattern = regexp.MustCompile(`video(\d{2})del(\d{2})numero(\d+)`)

// VideoName holds the fields encoded in a video file name.
type VideoName struct {
	Day      int
	Month    int
	Sequence int
}

// ParseVideoName extracts day, month and sequence from a file name without its
// extension. The pattern may appear anywhere in stem. ok is false when stem does
// not contain it; values are not range checked.
func ParseVideoName(stem string) (name VideoName, ok bool) {
	m := videoNamePattern.FindStringSubmatch(stem)
	if m == nil {
		return VideoName{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	seq, err := strconv.Atoi(m[3])
	if err != nil {
		// Sequence overflowed int.
		return VideoName{}, false
	}
	return VideoName{Day: day, Month: month, Sequence: seq}, true
}
