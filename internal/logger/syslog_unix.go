//go:build !windows

package logger

import (
	"io"
	native "log/syslog"
)

func newSysLog(prefix string) (io.WriteCloser, error) {
	return native.New(native.LOG_INFO|native.LOG_DAEMON, prefix)
}
