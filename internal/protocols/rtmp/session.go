package rtmp

import (
	"fmt"
	"strings"

	"github.com/livecast/ingest/internal/protocols/rtmp/amf0"
	"github.com/livecast/ingest/internal/protocols/rtmp/message"
)

const (
	// StreamID is the message stream ID returned by createStream.
	StreamID = 1

	streamChunkStreamID = 5
)

// State is the state of a Session.
type State int

// states.
const (
	StateConnected State = iota
	StateAwaitingAuthorization
	StateAuthorized
	StateBroadcasting
	StateDenied
	StateClosed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAwaitingAuthorization:
		return "awaitingAuthorization"
	case StateAuthorized:
		return "authorized"
	case StateBroadcasting:
		return "broadcasting"
	case StateDenied:
		return "denied"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Action is a side effect requested by a Session.
type Action int

// actions.
const (
	// ActionNone means that nothing has to be done.
	ActionNone Action = iota

	// ActionAuthorize asks to authorize StreamName and StreamKey,
	// then to call HandleAuthorization.
	ActionAuthorize

	// ActionTranscode asks to start transcoding StreamName,
	// then to call HandleTranscodeResult.
	ActionTranscode

	// ActionClose asks to close the connection.
	ActionClose
)

// Result is the outcome of an event processed by a Session.
type Result struct {
	// messages to be sent to the peer, in order.
	Outbound []message.Message

	Action Action
}

func statusObject(level string, code string, description string) amf0.Object {
	return amf0.Object{
		{Key: "level", Value: level},
		{Key: "code", Value: code},
		{Key: "description", Value: description},
	}
}

// streamNameFromApp extracts the stream name from the app of a connect command.
func streamNameFromApp(app string) string {
	if i := strings.IndexByte(app, '?'); i >= 0 {
		app = app[:i]
	}
	return strings.Trim(app, "/")
}

// Session is the state machine of a publishing connection.
// It is not safe for concurrent use.
type Session struct {
	ChunkSize     uint32
	WindowAckSize uint32

	state            State
	streamName       string
	streamKey        string
	tcURL            string
	publishCommandID int
	readiness        readiness
}

// State returns the session state.
func (s *Session) State() State {
	return s.state
}

// StreamName returns the stream name.
func (s *Session) StreamName() string {
	return s.streamName
}

// StreamKey returns the stream key.
func (s *Session) StreamKey() string {
	return s.streamKey
}

// TCURL returns the URL used by the peer to connect.
func (s *Session) TCURL() string {
	return s.tcURL
}

// Tracks returns a description of the received tracks.
func (s *Session) Tracks() []string {
	return s.readiness.tracks()
}

// Close moves the session into the closed state.
func (s *Session) Close() {
	s.state = StateClosed
}

// HandleMessage processes an incoming message.
// An error means that the connection must be closed.
func (s *Session) HandleMessage(msg message.Message) (Result, error) {
	switch s.state {
	case StateAwaitingAuthorization, StateDenied, StateClosed:
		return Result{}, nil
	}

	switch msg := msg.(type) {
	case *message.CommandAMF0:
		return s.handleCommand(msg)

	case *message.DataAMF0:
		if s.state == StateAuthorized {
			if md, ok := parseMetadata(msg.Payload); ok {
				s.readiness.onMetadata(md)
			}
		}
		return Result{}, nil

	case *message.Video, *message.VideoEx, *message.Audio, *message.AudioEx:
		if s.state == StateAuthorized && s.readiness.onMedia(msg) {
			s.state = StateBroadcasting
			return Result{Action: ActionTranscode}, nil
		}
		return Result{}, nil

	case *message.UserControlPingRequest:
		return Result{
			Outbound: []message.Message{
				&message.UserControlPingResponse{ServerTime: msg.ServerTime},
			},
		}, nil
	}

	return Result{}, nil
}

func (s *Session) handleCommand(cmd *message.CommandAMF0) (Result, error) {
	switch cmd.Name {
	case "connect":
		return s.handleConnect(cmd)

	case "releaseStream", "FCPublish":
		if s.streamName == "" {
			return Result{}, fmt.Errorf("%s received before connect", cmd.Name)
		}

		return Result{
			Outbound: []message.Message{
				&message.CommandAMF0{
					ChunkStreamID: cmd.ChunkStreamID,
					Name:          "_result",
					CommandID:     cmd.CommandID,
					Arguments:     amf0.Data{nil},
				},
			},
		}, nil

	case "createStream":
		if s.streamName == "" {
			return Result{}, fmt.Errorf("createStream received before connect")
		}

		return Result{
			Outbound: []message.Message{
				&message.CommandAMF0{
					ChunkStreamID: cmd.ChunkStreamID,
					Name:          "_result",
					CommandID:     cmd.CommandID,
					Arguments: amf0.Data{
						nil,
						float64(StreamID),
					},
				},
			},
		}, nil

	case "publish":
		return s.handlePublish(cmd)

	case "play":
		return Result{}, fmt.Errorf("reading streams is not supported")

	case "deleteStream", "FCUnpublish", "closeStream":
		s.state = StateClosed
		return Result{Action: ActionClose}, nil
	}

	return Result{}, nil
}

func (s *Session) handleConnect(cmd *message.CommandAMF0) (Result, error) {
	if s.streamName != "" {
		return Result{}, fmt.Errorf("connect received twice")
	}

	if len(cmd.Arguments) < 1 {
		return Result{}, fmt.Errorf("invalid connect command: %+v", cmd)
	}

	connectObject, ok := amf0.AsObject(cmd.Arguments[0])
	if !ok {
		return Result{}, fmt.Errorf("invalid connect command: %+v", cmd)
	}

	app, ok := connectObject.GetString("app")
	if !ok {
		return Result{}, fmt.Errorf("invalid connect command: %+v", cmd)
	}

	s.streamName = streamNameFromApp(app)
	if s.streamName == "" {
		return Result{}, fmt.Errorf("stream name is empty")
	}

	s.tcURL, ok = connectObject.GetString("tcUrl")
	if !ok {
		s.tcURL, _ = connectObject.GetString("tcurl")
	}
	s.tcURL = strings.Trim(s.tcURL, "'")

	oe, _ := connectObject.GetFloat64("objectEncoding")

	return Result{
		Outbound: []message.Message{
			&message.SetWindowAckSize{
				Value: s.WindowAckSize,
			},
			&message.SetPeerBandwidth{
				Value: s.WindowAckSize,
				Type:  message.LimitTypeDynamic,
			},
			&message.SetChunkSize{
				Value: s.ChunkSize,
			},
			&message.CommandAMF0{
				ChunkStreamID: cmd.ChunkStreamID,
				Name:          "_result",
				CommandID:     cmd.CommandID,
				Arguments: amf0.Data{
					amf0.Object{
						{Key: "fmsVer", Value: "LNX 9,0,124,2"},
						{Key: "capabilities", Value: float64(31)},
					},
					append(
						statusObject("status", "NetConnection.Connect.Success", "Connection succeeded."),
						amf0.ObjectEntry{Key: "objectEncoding", Value: oe},
					),
				},
			},
		},
	}, nil
}

func (s *Session) handlePublish(cmd *message.CommandAMF0) (Result, error) {
	if s.streamName == "" {
		return Result{}, fmt.Errorf("publish received before connect")
	}

	if s.state != StateConnected {
		return Result{}, fmt.Errorf("publish received twice")
	}

	if len(cmd.Arguments) < 2 {
		return Result{}, fmt.Errorf("invalid publish command arguments")
	}

	streamKey, ok := cmd.Arguments[1].(string)
	if !ok || streamKey == "" {
		return Result{}, fmt.Errorf("invalid publish command arguments")
	}

	s.streamKey = streamKey
	s.publishCommandID = cmd.CommandID
	s.state = StateAwaitingAuthorization

	return Result{Action: ActionAuthorize}, nil
}

// HandleAuthorization processes the outcome of the authorization requested with ActionAuthorize.
func (s *Session) HandleAuthorization(ok bool) Result {
	if s.state != StateAwaitingAuthorization {
		return Result{}
	}

	if !ok {
		s.state = StateDenied

		return Result{
			Outbound: []message.Message{
				&message.CommandAMF0{
					ChunkStreamID:   streamChunkStreamID,
					MessageStreamID: StreamID,
					Name:            "onStatus",
					CommandID:       s.publishCommandID,
					Arguments: amf0.Data{
						nil,
						statusObject("error", "NetStream.Publish.BadName", "authorization failed"),
					},
				},
			},
			Action: ActionClose,
		}
	}

	s.state = StateAuthorized

	return Result{
		Outbound: []message.Message{
			&message.UserControlStreamBegin{
				StreamID: StreamID,
			},
			&message.CommandAMF0{
				ChunkStreamID:   streamChunkStreamID,
				MessageStreamID: StreamID,
				Name:            "onStatus",
				CommandID:       s.publishCommandID,
				Arguments: amf0.Data{
					nil,
					statusObject("status", "NetStream.Publish.Start", "publish start"),
				},
			},
		},
	}
}

// HandleTranscodeResult processes the outcome of the transcoding requested with ActionTranscode.
func (s *Session) HandleTranscodeResult(err error) Result {
	if s.state != StateBroadcasting || err == nil {
		return Result{}
	}

	s.state = StateClosed
	return Result{Action: ActionClose}
}
