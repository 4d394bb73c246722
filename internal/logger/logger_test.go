package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/require"
)

func TestLoggerToStdout(t *testing.T) {
	for _, ca := range []string{
		"plain",
		"structured",
	} {
		t.Run(ca, func(t *testing.T) {
			var buf bytes.Buffer

			l := &Logger{
				Destinations: []Destination{DestinationStdout},
				Structured:   (ca == "structured"),
				timeNow:      func() time.Time { return time.Date(2003, 11, 4, 23, 15, 8, 431232, time.UTC) },
				stdout:       &buf,
			}
			err := l.Initialize()
			require.NoError(t, err)
			defer l.Close()

			l.Log(Info, "test format %d", 123)
			l.Log(Debug, "hidden")

			if ca == "plain" {
				require.Equal(t, "2003/11/04 23:15:08 INF test format 123\n", buf.String())
			} else {
				require.Equal(t, `{"timestamp":"2003-11-04T23:15:08.000431232Z",`+
					`"level":"INF","message":"test format 123"}`+"\n", buf.String())
			}
		})
	}
}

func TestLoggerToFile(t *testing.T) {
	for _, ca := range []string{
		"plain",
		"structured",
	} {
		t.Run(ca, func(t *testing.T) {
			fpath := filepath.Join(t.TempDir(), "ingest.log")

			l := &Logger{
				Level:        Debug,
				Destinations: []Destination{DestinationFile},
				Structured:   ca == "structured",
				File:         fpath,
				timeNow:      func() time.Time { return time.Date(2003, 11, 4, 23, 15, 8, 0, time.UTC) },
			}
			err := l.Initialize()
			require.NoError(t, err)

			l.Log(Warn, "test \"quoted\" %s", "value")
			l.Close()

			buf, err := os.ReadFile(fpath)
			require.NoError(t, err)

			if ca == "plain" {
				require.Equal(t, "2003/11/04 23:15:08 WAR test \"quoted\" value\n", string(buf))
			} else {
				require.Equal(t, `{"timestamp":"2003-11-04T23:15:08Z",`+
					`"level":"WAR","message":"test \"quoted\" value"}`+"\n", string(buf))
			}
		})
	}
}

func TestLoggerInvalidFile(t *testing.T) {
	l := &Logger{
		Destinations: []Destination{DestinationFile},
		File:         filepath.Join(t.TempDir(), "missing", "ingest.log"),
	}
	err := l.Initialize()
	require.Error(t, err)
}

func TestWriteLevelColor(t *testing.T) {
	for _, ca := range []struct {
		level Level
		code  string
		str   string
	}{
		{Debug, color.Debug.Code(), "DEB"},
		{Info, color.Green.Code(), "INF"},
		{Warn, color.Warn.Code(), "WAR"},
		{Error, color.Error.Code(), "ERR"},
	} {
		t.Run(ca.str, func(t *testing.T) {
			require.Equal(t, ca.code, levelColor(ca.level))

			var buf bytes.Buffer
			writeLevel(&buf, ca.level, true)
			require.Equal(t, color.RenderString(ca.code, ca.str)+" ", buf.String())

			buf.Reset()
			writeLevel(&buf, ca.level, false)
			require.Equal(t, ca.str+" ", buf.String())
		})
	}
}

func TestElapsed(t *testing.T) {
	require.Equal(t, "350ms", Elapsed(350*time.Millisecond))
	require.Equal(t, "1m2.5s", Elapsed(62500*time.Millisecond+300*time.Microsecond))
}
