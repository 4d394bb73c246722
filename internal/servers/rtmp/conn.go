package rtmp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/livecast/ingest/internal/auth"
	"github.com/livecast/ingest/internal/conf"
	"github.com/livecast/ingest/internal/defs"
	"github.com/livecast/ingest/internal/logger"
	"github.com/livecast/ingest/internal/protocols/rtmp"
	"github.com/livecast/ingest/internal/protocols/rtmp/message"
	"github.com/livecast/ingest/internal/registry"
	"github.com/livecast/ingest/internal/retry"
	"github.com/livecast/ingest/internal/transcode"
)

var (
	errTerminated      = errors.New("terminated")
	errDenied          = errors.New("publisher is not authorized")
	errClosedByPeer    = errors.New("stream closed by the publisher")
	errTranscodeFailed = errors.New("transcoding failed")
)

// isBenign returns true if err is a normal way for a connection to end.
func isBenign(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, errTerminated) ||
		errors.Is(err, errClosedByPeer)
}

type conn struct {
	parentCtx           context.Context
	readTimeout         conf.Duration
	writeTimeout        conf.Duration
	chunkSize           uint32
	windowAckSize       uint32
	maxMessageSize      uint32
	retryAttempts       int
	authRetryPause      conf.Duration
	transcodeRetryPause conf.Duration
	authorizer          serverAuthorizer
	transcoder          transcode.Transcoder
	streams             *registry.Registry
	wg                  *sync.WaitGroup
	nconn               net.Conn
	parent              *Server

	ctx       context.Context
	ctxCancel func()
	uuid      uuid.UUID
	created   time.Time
	rconn     *rtmp.Conn
	session   *rtmp.Session
	workers   sync.WaitGroup

	// fields read by the API
	mutex      sync.RWMutex
	state      rtmp.State
	streamName string
	tracks     []string

	// in
	chMessage   chan message.Message
	chAuthorize chan bool
	chTranscode chan error
}

func (c *conn) initialize() {
	c.ctx, c.ctxCancel = context.WithCancel(c.parentCtx)

	c.uuid = uuid.New()
	c.created = time.Now()
	c.session = &rtmp.Session{
		ChunkSize:     c.chunkSize,
		WindowAckSize: c.windowAckSize,
	}
	c.chMessage = make(chan message.Message)
	c.chAuthorize = make(chan bool)
	c.chTranscode = make(chan error)

	c.Log(logger.Info, "opened")

	c.wg.Add(1)
	go c.run()
}

// Close closes the connection. It doesn't wait for the connection to exit.
func (c *conn) Close() {
	c.ctxCancel()
}

// Log implements logger.Writer.
func (c *conn) Log(level logger.Level, format string, args ...any) {
	c.parent.Log(level, "[conn %v] "+format, append([]any{c.nconn.RemoteAddr()}, args...)...)
}

func (c *conn) ip() net.IP {
	if addr, ok := c.nconn.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP
	}
	return nil
}

func (c *conn) run() {
	defer c.wg.Done()

	err := c.runInner()

	c.ctxCancel()
	c.workers.Wait()

	if name := c.session.StreamName(); name != "" {
		c.streams.Remove(name, c)
	}

	c.parent.closeConn(c)

	level := logger.Warn
	if isBenign(err) {
		level = logger.Info
	}
	c.Log(level, "closed: %v (after %s)", err, logger.Elapsed(time.Since(c.created)))
}

func (c *conn) runInner() error {
	readerErr := make(chan error)
	go func() {
		readerErr <- c.runReader()
	}()

	for {
		select {
		case msg := <-c.chMessage:
			res, err := c.session.HandleMessage(msg)
			if err != nil {
				return c.stop(readerErr, err)
			}

			err = c.apply(res, errClosedByPeer)
			if err != nil {
				return c.stop(readerErr, err)
			}

		case allowed := <-c.chAuthorize:
			err := c.apply(c.session.HandleAuthorization(allowed), errDenied)
			if err != nil {
				return c.stop(readerErr, err)
			}

		case transcodeErr := <-c.chTranscode:
			if transcodeErr != nil {
				err := c.apply(c.session.HandleTranscodeResult(transcodeErr),
					fmt.Errorf("%w: %w", errTranscodeFailed, transcodeErr))
				if err != nil {
					return c.stop(readerErr, err)
				}
			}

		case err := <-readerErr:
			c.nconn.Close()
			return err

		case <-c.ctx.Done():
			return c.stop(readerErr, errTerminated)
		}
	}
}

func (c *conn) stop(readerErr chan error, err error) error {
	c.ctxCancel()
	c.nconn.Close()
	<-readerErr
	return err
}

// runReader performs the handshake, then reads messages
// and passes them to the event loop.
func (c *conn) runReader() error {
	c.nconn.SetReadDeadline(time.Now().Add(time.Duration(c.readTimeout)))
	c.nconn.SetWriteDeadline(time.Now().Add(time.Duration(c.writeTimeout)))

	rconn := &rtmp.Conn{
		RW:             c.nconn,
		MaxMessageSize: c.maxMessageSize,
	}
	err := rconn.Initialize()
	if err != nil {
		return err
	}

	// acknowledgements are written by this goroutine
	// and must not be subject to stale deadlines.
	c.nconn.SetWriteDeadline(time.Time{})

	c.mutex.Lock()
	c.rconn = rconn
	c.mutex.Unlock()

	for {
		c.nconn.SetReadDeadline(time.Now().Add(time.Duration(c.readTimeout)))
		msg, err := rconn.Read()
		if err != nil {
			return err
		}

		select {
		case c.chMessage <- msg:
		case <-c.ctx.Done():
			return errTerminated
		}
	}
}

func (c *conn) write(msg message.Message) error {
	c.nconn.SetWriteDeadline(time.Now().Add(time.Duration(c.writeTimeout)))
	err := c.rconn.Write(msg)
	c.nconn.SetWriteDeadline(time.Time{})
	return err
}

// apply writes the outbound messages of a session result, then performs its action.
// closeReason is returned when the action is ActionClose.
func (c *conn) apply(res rtmp.Result, closeReason error) error {
	for _, msg := range res.Outbound {
		err := c.write(msg)
		if err != nil {
			return err
		}
	}

	c.syncState()

	switch res.Action {
	case rtmp.ActionAuthorize:
		c.Log(logger.Info, "is publishing to stream '%s', waiting for authorization", c.session.StreamName())
		c.workers.Add(1)
		go c.authorize(c.session.StreamName(), c.session.StreamKey())

	case rtmp.ActionTranscode:
		name := c.session.StreamName()
		if c.streams.Replace(name, c) {
			c.Log(logger.Info, "replaced previous publisher of stream '%s'", name)
		}
		c.Log(logger.Info, "stream '%s' is ready, %s", name, describeTracks(c.session.Tracks()))
		c.workers.Add(1)
		go c.transcode(name)

	case rtmp.ActionClose:
		return closeReason
	}

	return nil
}

func describeTracks(tracks []string) string {
	switch len(tracks) {
	case 0:
		return "no tracks"
	case 1:
		return "1 track (" + tracks[0] + ")"
	}

	s := fmt.Sprintf("%d tracks (", len(tracks))
	for i, t := range tracks {
		if i != 0 {
			s += ", "
		}
		s += t
	}
	return s + ")"
}

func (c *conn) syncState() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state = c.session.State()
	c.streamName = c.session.StreamName()
	c.tracks = c.session.Tracks()
}

func (c *conn) authorize(name string, key string) {
	defer c.workers.Done()

	p := retry.Policy{
		Attempts: c.retryAttempts,
		Pause:    time.Duration(c.authRetryPause),
		OnError: func(attempt int, err error) {
			c.Log(logger.Warn, "authorization attempt %d failed: %v", attempt, err)
		},
	}

	allowed := false

	err := p.Do(c.ctx, func(ctx context.Context) error {
		err := c.authorizer.Authorize(ctx, &auth.Request{
			ID:         &c.uuid,
			IP:         c.ip(),
			StreamName: name,
			StreamKey:  key,
		})
		if auth.IsDenied(err) {
			return nil
		}

		allowed = (err == nil)
		return err
	})
	if err != nil {
		allowed = false
	}

	c.Log(logger.Info, "stream '%s': stream key validation: %s", name, func() string {
		if allowed {
			return "allowed"
		}
		return "denied"
	}())

	select {
	case c.chAuthorize <- allowed:
	case <-c.ctx.Done():
	}
}

func (c *conn) transcode(name string) {
	defer c.workers.Done()

	p := retry.Policy{
		Attempts: c.retryAttempts,
		Pause:    time.Duration(c.transcodeRetryPause),
		OnError: func(attempt int, err error) {
			c.Log(logger.Warn, "transcoding attempt %d failed: %v", attempt, err)
		},
	}

	var pid int

	err := p.Do(c.ctx, func(ctx context.Context) error {
		var err error
		pid, err = c.transcoder.Transcode(ctx, name)
		return err
	})
	if err == nil {
		c.Log(logger.Info, "started transcoding with pid %d", pid)
	}

	select {
	case c.chTranscode <- err:
	case <-c.ctx.Done():
	}
}

func (c *conn) apiItem() *defs.APIRTMPConn {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	bytesReceived := uint64(0)
	bytesSent := uint64(0)

	if c.rconn != nil {
		bytesReceived = c.rconn.BytesReceived()
		bytesSent = c.rconn.BytesSent()
	}

	return &defs.APIRTMPConn{
		ID:            c.uuid,
		Created:       c.created,
		RemoteAddr:    c.nconn.RemoteAddr().String(),
		State:         defs.APIRTMPConnState(c.state.String()),
		Stream:        c.streamName,
		Tracks:        append([]string{}, c.tracks...),
		BytesReceived: bytesReceived,
		BytesSent:     bytesSent,
	}
}
