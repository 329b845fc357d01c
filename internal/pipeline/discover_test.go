package pipeline

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{
		"videos/video02del03numero1.mp4",
		"videos/video01del03numero2.mp4",
		"videos/video01del03numero1.mp4",
		"videos/clip_final.mp4",
		"videos/video01del03numero3.MP4",
		"videos/video01del03numero4.mkv",
		"videos/notes.txt",
		"videos/nested/video05del05numero1.mp4",
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte("x"), 0644))
	}
	require.NoError(t, fs.Mkdir("videos/video_dir.mp4", 0755))

	names, err := Discover(fs, "videos")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"video01del03numero1.mp4",
		"video01del03numero2.mp4",
		"video02del03numero1.mp4",
	}, names)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(afero.NewMemMapFs(), "videos")
	assert.Error(t, err)
}

func TestDiscover_Empty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("videos", 0755))
	names, err := Discover(fs, "videos")
	require.NoError(t, err)
	assert.Empty(t, names)
}
