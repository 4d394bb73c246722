package rtmp

import (
	"github.com/livecast/ingest/internal/protocols/rtmp/amf0"
)

// Metadata is the content of a onMetaData message.
type Metadata struct {
	HasVideo bool
	HasAudio bool
}

func codecDeclared(md amf0.Object, key string) bool {
	v, ok := md.Get(key)
	if !ok {
		return false
	}

	switch vt := v.(type) {
	case float64:
		return vt != 0

	case string:
		return vt != ""

	case bool:
		return vt
	}

	return false
}

// parseMetadata decodes a @setDataFrame or onMetaData payload.
// It returns false when the payload is not a metadata.
func parseMetadata(payload amf0.Data) (*Metadata, bool) {
	if len(payload) >= 1 {
		if s, ok := payload[0].(string); ok && s == "@setDataFrame" {
			payload = payload[1:]
		}
	}

	if len(payload) < 2 {
		return nil, false
	}

	if s, ok := payload[0].(string); !ok || s != "onMetaData" {
		return nil, false
	}

	md, ok := amf0.AsObject(payload[1])
	if !ok {
		return nil, false
	}

	return &Metadata{
		HasVideo: codecDeclared(md, "videocodecid"),
		HasAudio: codecDeclared(md, "audiocodecid"),
	}, true
}
