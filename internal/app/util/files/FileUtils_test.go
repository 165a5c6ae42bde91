package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllTranscriptFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	write := func(name string, age time.Duration) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		mod := base.Add(age)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
	write("newest.SRT", 3*time.Minute)
	write("oldest.json", time.Minute)
	write("middle.vtt", 2*time.Minute)
	write("notes.md", 0)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	infos, err := GetAllTranscriptFiles(dir)
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "oldest.json", infos[0].Name)
	assert.Equal(t, "middle.vtt", infos[1].Name)
	assert.Equal(t, "newest.SRT", infos[2].Name)
	assert.Equal(t, ".srt", infos[2].Ext)
	assert.Equal(t, []string{
		filepath.Join(dir, "oldest.json"),
		filepath.Join(dir, "middle.vtt"),
		filepath.Join(dir, "newest.SRT"),
	}, Paths(infos))
}

func TestGetAllTranscriptFilesMissingDir(t *testing.T) {
	_, err := GetAllTranscriptFiles(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to read input directory")
}
