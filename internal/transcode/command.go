package transcode

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/livecast/ingest/internal/externalcmd"
	"github.com/livecast/ingest/internal/logger"
	"github.com/livecast/ingest/internal/registry"
)

// CommandTranscoder runs a transcoding command for each stream.
// Each command runs inside its own directory, Directory/<name>,
// and a command of a stream is terminated before another one is started.
type CommandTranscoder struct {
	Command      string
	InputAddress string
	Directory    string
	Parent       logger.Writer

	mutex     sync.Mutex
	pool      *externalcmd.Pool
	processes registry.Registry
}

// Initialize initializes CommandTranscoder.
func (t *CommandTranscoder) Initialize() {
	t.pool = &externalcmd.Pool{}
	t.pool.Initialize()

	t.Log(logger.Info, "command transcoder ready, output directory: %s", t.Directory)
}

// Close terminates all processes and waits for them to exit.
func (t *CommandTranscoder) Close() {
	t.mutex.Lock()
	t.processes.CloseAll()
	t.mutex.Unlock()

	t.pool.Close()
}

// Log implements logger.Writer.
func (t *CommandTranscoder) Log(level logger.Level, format string, args ...any) {
	t.Parent.Log(level, "[transcode] "+format, args...)
}

// Streams returns the names of the streams that are being transcoded.
func (t *CommandTranscoder) Streams() []string {
	return t.processes.Names()
}

// Transcode implements Transcoder.
func (t *CommandTranscoder) Transcode(_ context.Context, name string) (int, error) {
	err := checkStreamName(name)
	if err != nil {
		return 0, err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	dir := filepath.Join(t.Directory, name)

	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return 0, err
	}

	var cmd *externalcmd.Cmd
	cmd = &externalcmd.Cmd{
		Pool:      t.pool,
		CmdString: t.Command,
		Dir:       dir,
		Env: externalcmd.Environment{
			"INGEST_STREAM":   name,
			"INGEST_INPUT":    t.InputAddress + "/" + name,
			"INGEST_SEGMENT":  name + "_%v/data%d.ts",
			"INGEST_PLAYLIST": name + "_%v.m3u8",
		},
		OnExit: func(err error) {
			if err != nil {
				t.Log(logger.Warn, "process of stream '%s' exited: %v", name, err)
			} else {
				t.Log(logger.Info, "process of stream '%s' exited", name)
			}
			t.processes.Remove(name, cmd)
		},
	}

	// the process of the previous publisher of the stream
	// must exit before the new one writes into the same directory.
	if t.processes.Replace(name, cmd) {
		t.Log(logger.Info, "terminated previous process of stream '%s'", name)
	}

	err = cmd.Start()
	if err != nil {
		t.processes.Remove(name, cmd)
		return 0, err
	}

	return cmd.PID(), nil
}
