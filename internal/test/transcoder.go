package test

import (
	"context"
)

// Transcoder is a test transcoder.
type Transcoder struct {
	Func func(name string) (int, error)
}

// Transcode implements transcode.Transcoder.
func (t *Transcoder) Transcode(_ context.Context, name string) (int, error) {
	return t.Func(name)
}
