// Package transcode contains the clients that start transcoding of streams.
package transcode

import (
	"context"
	"fmt"
	"strings"
)

// Transcoder starts transcoding a stream and returns the PID of the transcoding process.
type Transcoder interface {
	Transcode(ctx context.Context, name string) (int, error)
}

func checkStreamName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("invalid stream name '%s'", name)
	}
	return nil
}
