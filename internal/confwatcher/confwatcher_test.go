package confwatcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livecast/ingest/internal/test"
)

func overwrite(t *testing.T, fpath string) {
	f, err := os.Create(fpath)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("{}"))
	require.NoError(t, err)
}

func requireChanged(t *testing.T, w *ConfWatcher) {
	select {
	case <-w.Watch():
	case <-time.After(500 * time.Millisecond):
		t.Errorf("timed out")
	}
}

func TestConfWatcherNoFile(t *testing.T) {
	w := &ConfWatcher{FilePath: filepath.Join(t.TempDir(), "missing.yml")}
	err := w.Initialize()
	require.Error(t, err)
}

func TestConfWatcherWrite(t *testing.T) {
	fpath := test.CreateTempFile(t, []byte("{}"))

	w := &ConfWatcher{FilePath: fpath}
	err := w.Initialize()
	require.NoError(t, err)
	defer w.Close()

	overwrite(t, fpath)
	requireChanged(t, w)
}

func TestConfWatcherWriteMultipleTimes(t *testing.T) {
	fpath := test.CreateTempFile(t, []byte("{}"))

	w := &ConfWatcher{FilePath: fpath}
	err := w.Initialize()
	require.NoError(t, err)
	defer w.Close()

	overwrite(t, fpath)
	time.Sleep(10 * time.Millisecond)
	overwrite(t, fpath)

	requireChanged(t, w)

	select {
	case <-time.After(500 * time.Millisecond):
	case <-w.Watch():
		t.Errorf("should not happen")
	}
}

func TestConfWatcherDeleteCreate(t *testing.T) {
	fpath := test.CreateTempFile(t, []byte("{}"))

	w := &ConfWatcher{FilePath: fpath}
	err := w.Initialize()
	require.NoError(t, err)
	defer w.Close()

	os.Remove(fpath)
	time.Sleep(10 * time.Millisecond)
	overwrite(t, fpath)

	requireChanged(t, w)
}

func TestConfWatcherSymlink(t *testing.T) {
	fpath := test.CreateTempFile(t, []byte("{}"))

	err := os.Symlink(fpath, fpath+"-sym")
	require.NoError(t, err)

	w := &ConfWatcher{FilePath: fpath + "-sym"}
	err = w.Initialize()
	require.NoError(t, err)
	defer w.Close()

	os.Remove(fpath)
	overwrite(t, fpath)

	requireChanged(t, w)
}
