package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Video files are recognized by this name prefix and extension.
const (
	VideoPrefix    = "video"
	VideoExtension = ".mp4"
)

// Discover lists the regular files directly inside dir whose name starts with
// VideoPrefix and ends with VideoExtension, sorted by name. Matching is case
// sensitive.
func Discover(fs afero.Fs, dir string) ([]string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list videos in %s: %w", dir, err)
	}
	var names []string
	for _, fi := range infos {
		if !fi.Mode().IsRegular() {
			continue
		}
		name := fi.Name()
		if strings.HasPrefix(name, VideoPrefix) && strings.HasSuffix(name, VideoExtension) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
