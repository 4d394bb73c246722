//go:build !windows

package transcode

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livecast/ingest/internal/test"
)

func readInfo(t *testing.T, fpath string) string {
	var byts []byte

	require.Eventually(t, func() bool {
		var err error
		byts, err = os.ReadFile(fpath)
		return err == nil && strings.HasSuffix(string(byts), "\n")
	}, 5*time.Second, 10*time.Millisecond)

	return string(byts)
}

func TestCommandTranscoder(t *testing.T) {
	dir := t.TempDir()

	tr := &CommandTranscoder{
		Command: "sh -c 'echo $INGEST_STREAM $INGEST_INPUT $INGEST_SEGMENT $INGEST_PLAYLIST > info.txt; " +
			"exec sleep 30'",
		InputAddress: "rtmp://localhost:1935",
		Directory:    dir,
		Parent:       test.NilLogger,
	}
	tr.Initialize()
	defer tr.Close()

	pid, err := tr.Transcode(context.Background(), "mystream")
	require.NoError(t, err)
	require.NotZero(t, pid)

	info := readInfo(t, filepath.Join(dir, "mystream", "info.txt"))
	require.Equal(t, "mystream rtmp://localhost:1935/mystream "+
		"mystream_%v/data%d.ts mystream_%v.m3u8\n", info)

	require.Equal(t, []string{"mystream"}, tr.Streams())
}

func TestCommandTranscoderReplace(t *testing.T) {
	dir := t.TempDir()

	tr := &CommandTranscoder{
		Command:      "sh -c 'echo started > info.txt; exec sleep 30'",
		InputAddress: "rtmp://localhost:1935",
		Directory:    dir,
		Parent:       test.NilLogger,
	}
	tr.Initialize()
	defer tr.Close()

	pid1, err := tr.Transcode(context.Background(), "mystream")
	require.NoError(t, err)

	readInfo(t, filepath.Join(dir, "mystream", "info.txt"))

	pid2, err := tr.Transcode(context.Background(), "mystream")
	require.NoError(t, err)
	require.NotEqual(t, pid1, pid2)

	// the first process has been terminated and waited
	p, err := os.FindProcess(pid1)
	require.NoError(t, err)
	err = p.Signal(syscall.Signal(0))
	require.Error(t, err)

	require.Equal(t, []string{"mystream"}, tr.Streams())
}

func TestCommandTranscoderExit(t *testing.T) {
	dir := t.TempDir()

	tr := &CommandTranscoder{
		Command:      "sh -c 'exit 0'",
		InputAddress: "rtmp://localhost:1935",
		Directory:    dir,
		Parent:       test.NilLogger,
	}
	tr.Initialize()
	defer tr.Close()

	_, err := tr.Transcode(context.Background(), "mystream")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(tr.Streams()) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCommandTranscoderInvalidName(t *testing.T) {
	tr := &CommandTranscoder{
		Command:   "sh -c 'exit 0'",
		Directory: t.TempDir(),
		Parent:    test.NilLogger,
	}
	tr.Initialize()
	defer tr.Close()

	_, err := tr.Transcode(context.Background(), "a/b")
	require.EqualError(t, err, "invalid stream name 'a/b'")
}
