package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girderweb/girder/config"
)

func TestWatchReportsMatchingChanges(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan string, 8)

	w, err := config.Watch([]string{dir}, []string{".yaml"}, 50*time.Millisecond, func(path string) {
		changes <- path
	})
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \":8081\"\n"), 0o644))

	select {
	case got := <-changes:
		assert.Equal(t, "app.yaml", filepath.Base(got))
	case <-time.After(3 * time.Second):
		t.Fatal("change was not reported")
	}
}

func TestWatchIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan string, 8)

	w, err := config.Watch([]string{dir}, []string{".yaml"}, 50*time.Millisecond, func(path string) {
		changes <- path
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case got := <-changes:
		t.Fatalf("unexpected change reported: %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchSkipsMissingDirs(t *testing.T) {
	w, err := config.Watch([]string{filepath.Join(t.TempDir(), "nope")}, []string{".yaml"}, time.Millisecond, func(string) {})
	require.NoError(t, err)
	require.NoError(t, w.Close())
}
