// Package core contains the main struct of the software.
package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/livecast/ingest/internal/api"
	"github.com/livecast/ingest/internal/auth"
	"github.com/livecast/ingest/internal/conf"
	"github.com/livecast/ingest/internal/confwatcher"
	"github.com/livecast/ingest/internal/logger"
	"github.com/livecast/ingest/internal/pprof"
	"github.com/livecast/ingest/internal/rlimit"
	"github.com/livecast/ingest/internal/servers/rtmp"
	"github.com/livecast/ingest/internal/transcode"
)

var version = "v0.0.0"

var defaultConfPaths = []string{
	"ingest.yml",
	"/usr/local/etc/ingest.yml",
	"/usr/etc/ingest.yml",
	"/etc/ingest/ingest.yml",
}

var cli struct {
	Version  bool   `help:"print version"`
	Confpath string `arg:"" optional:""`
}

type coreTranscoder interface {
	transcode.Transcoder
	Close()
}

// Core is an instance of the ingest server.
type Core struct {
	ctx         context.Context
	ctxCancel   func()
	confPath    string
	conf        *conf.Conf
	started     time.Time
	logger      *logger.Logger
	authManager *auth.Manager
	transcoder  coreTranscoder
	rtmpServer  *rtmp.Server
	api         *api.API
	pprof       *pprof.PPROF
	confWatcher *confwatcher.ConfWatcher

	// out
	done chan struct{}
}

// New allocates a Core.
func New(args []string) (*Core, bool) {
	parser, err := kong.New(&cli,
		kong.Description("ingest "+version),
		kong.UsageOnError(),
		kong.ValueFormatter(func(value *kong.Value) string {
			switch value.Name {
			case "confpath":
				return "path to a config file. The default is ingest.yml."

			default:
				return kong.DefaultHelpValueFormatter(value)
			}
		}))
	if err != nil {
		panic(err)
	}

	_, err = parser.Parse(args)
	parser.FatalIfErrorf(err)

	if cli.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	p := &Core{
		ctx:       ctx,
		ctxCancel: ctxCancel,
		started:   time.Now(),
		done:      make(chan struct{}),
	}

	p.conf, p.confPath, err = conf.Load(cli.Confpath, defaultConfPaths)
	if err != nil {
		fmt.Printf("ERR: %s\n", err)
		ctxCancel()
		return nil, false
	}

	err = p.createResources(true)
	if err != nil {
		if p.logger != nil {
			p.Log(logger.Error, "%s", err)
		} else {
			fmt.Printf("ERR: %s\n", err)
		}
		p.closeResources(nil)
		ctxCancel()
		return nil, false
	}

	go p.run()

	return p, true
}

// Close closes Core and waits for all goroutines to return.
func (p *Core) Close() {
	p.ctxCancel()
	<-p.done
}

// Wait waits for the Core to exit.
func (p *Core) Wait() {
	<-p.done
}

// Log implements logger.Writer.
func (p *Core) Log(level logger.Level, format string, args ...any) {
	p.logger.Log(level, format, args...)
}

func (p *Core) run() {
	defer close(p.done)

	confChanged := func() chan struct{} {
		if p.confWatcher != nil {
			return p.confWatcher.Watch()
		}
		return make(chan struct{})
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

outer:
	for {
		select {
		case <-confChanged:
			p.Log(logger.Info, "reloading configuration (file changed)")

			newConf, _, err := conf.Load(p.confPath, nil)
			if err != nil {
				p.Log(logger.Error, "%s", err)
				break outer
			}

			err = p.reloadConf(newConf)
			if err != nil {
				p.Log(logger.Error, "%s", err)
				break outer
			}

		case <-interrupt:
			p.Log(logger.Info, "shutting down gracefully")
			break outer

		case <-p.ctx.Done():
			break outer
		}
	}

	p.ctxCancel()

	p.closeResources(nil)
}

func (p *Core) createResources(initial bool) error {
	if p.logger == nil {
		i := &logger.Logger{
			Level:        logger.Level(p.conf.LogLevel),
			Destinations: p.conf.LogDestinations,
			Structured:   p.conf.LogStructured,
			File:         p.conf.LogFile,
		}
		err := i.Initialize()
		if err != nil {
			return err
		}
		p.logger = i
	}

	if initial {
		p.Log(logger.Info, "ingest %s", version)

		if p.confPath != "" {
			p.Log(logger.Info, "configuration loaded from %s", p.confPath)
		} else {
			p.Log(logger.Warn, "configuration file not found, using an empty configuration")
		}

		// on Linux, try to raise the number of file descriptors that can be opened
		// to allow the maximum possible number of publishers
		if n, err := rlimit.Raise(); err == nil && n != 0 {
			p.Log(logger.Debug, "file descriptor limit is %d", n)
		}
	}

	if p.authManager == nil {
		p.authManager = &auth.Manager{
			Method:        p.conf.AuthMethod,
			HTTPAddress:   p.conf.AuthHTTPAddress,
			InternalUsers: p.conf.AuthInternalUsers,
			JWTJWKS:       p.conf.AuthJWTJWKS,
			JWTClaimKey:   p.conf.AuthJWTClaimKey,
			ReadTimeout:   time.Duration(p.conf.ReadTimeout),
			Parent:        p,
		}
	}

	if p.transcoder == nil {
		switch p.conf.TranscodeMethod {
		case conf.TranscodeMethodCommand:
			i := &transcode.CommandTranscoder{
				Command:      p.conf.TranscodeCommand,
				InputAddress: p.conf.TranscodeInputAddress,
				Directory:    p.conf.TranscodeDirectory,
				Parent:       p,
			}
			i.Initialize()
			p.transcoder = i

		default:
			i := &transcode.HTTPTranscoder{
				Address:     p.conf.TranscodeHTTPAddress,
				ReadTimeout: time.Duration(p.conf.ReadTimeout),
			}
			i.Initialize()
			p.transcoder = i
		}
	}

	if p.rtmpServer == nil {
		i := &rtmp.Server{
			Address:             p.conf.RTMPAddress,
			ReadTimeout:         p.conf.ReadTimeout,
			WriteTimeout:        p.conf.WriteTimeout,
			ChunkSize:           uint32(p.conf.RTMPChunkSize),
			WindowAckSize:       uint32(p.conf.RTMPWindowAckSize),
			MaxMessageSize:      uint32(p.conf.RTMPMaxMessageSize),
			RetryAttempts:       p.conf.RetryAttempts,
			AuthRetryPause:      p.conf.AuthRetryPause,
			TranscodeRetryPause: p.conf.TranscodeRetryPause,
			Authorizer:          p.authManager,
			Transcoder:          p.transcoder,
			Parent:              p,
		}
		err := i.Initialize()
		if err != nil {
			return err
		}
		p.rtmpServer = i
	}

	if p.conf.PPROF && p.pprof == nil {
		i := &pprof.PPROF{
			Address:      p.conf.PPROFAddress,
			ReadTimeout:  p.conf.ReadTimeout,
			WriteTimeout: p.conf.WriteTimeout,
			Parent:       p,
		}
		err := i.Initialize()
		if err != nil {
			return err
		}
		p.pprof = i
	}

	if p.conf.API && p.api == nil {
		i := &api.API{
			Version:      version,
			Started:      p.started,
			Address:      p.conf.APIAddress,
			ReadTimeout:  p.conf.ReadTimeout,
			WriteTimeout: p.conf.WriteTimeout,
			AuthManager:  p.authManager,
			RTMPServer:   p.rtmpServer,
			Parent:       p,
		}
		err := i.Initialize()
		if err != nil {
			return err
		}
		p.api = i
	}

	if initial && p.confPath != "" {
		i := &confwatcher.ConfWatcher{FilePath: p.confPath}
		err := i.Initialize()
		if err != nil {
			return err
		}
		p.confWatcher = i
	}

	return nil
}

func (p *Core) closeResources(newConf *conf.Conf) {
	// all components log through the logger.
	closeLogger := newConf == nil ||
		newConf.LogLevel != p.conf.LogLevel ||
		!reflect.DeepEqual(newConf.LogDestinations, p.conf.LogDestinations) ||
		newConf.LogStructured != p.conf.LogStructured ||
		newConf.LogFile != p.conf.LogFile

	closeAuthManager := closeLogger ||
		newConf.AuthMethod != p.conf.AuthMethod ||
		newConf.AuthHTTPAddress != p.conf.AuthHTTPAddress ||
		newConf.AuthJWTJWKS != p.conf.AuthJWTJWKS ||
		newConf.AuthJWTClaimKey != p.conf.AuthJWTClaimKey ||
		newConf.ReadTimeout != p.conf.ReadTimeout
	if !closeAuthManager && p.authManager != nil &&
		!reflect.DeepEqual(newConf.AuthInternalUsers, p.conf.AuthInternalUsers) {
		p.authManager.ReloadInternalUsers(newConf.AuthInternalUsers)
	}

	closeTranscoder := closeLogger ||
		newConf.TranscodeMethod != p.conf.TranscodeMethod ||
		newConf.TranscodeHTTPAddress != p.conf.TranscodeHTTPAddress ||
		newConf.TranscodeCommand != p.conf.TranscodeCommand ||
		newConf.TranscodeInputAddress != p.conf.TranscodeInputAddress ||
		newConf.TranscodeDirectory != p.conf.TranscodeDirectory ||
		newConf.ReadTimeout != p.conf.ReadTimeout

	closeRTMPServer := closeLogger ||
		newConf.RTMPAddress != p.conf.RTMPAddress ||
		newConf.RTMPChunkSize != p.conf.RTMPChunkSize ||
		newConf.RTMPWindowAckSize != p.conf.RTMPWindowAckSize ||
		newConf.RTMPMaxMessageSize != p.conf.RTMPMaxMessageSize ||
		newConf.ReadTimeout != p.conf.ReadTimeout ||
		newConf.WriteTimeout != p.conf.WriteTimeout ||
		newConf.RetryAttempts != p.conf.RetryAttempts ||
		newConf.AuthRetryPause != p.conf.AuthRetryPause ||
		newConf.TranscodeRetryPause != p.conf.TranscodeRetryPause ||
		closeAuthManager ||
		closeTranscoder

	closePPROF := closeLogger ||
		newConf.PPROF != p.conf.PPROF ||
		newConf.PPROFAddress != p.conf.PPROFAddress ||
		newConf.ReadTimeout != p.conf.ReadTimeout ||
		newConf.WriteTimeout != p.conf.WriteTimeout

	closeAPI := closeLogger ||
		newConf.API != p.conf.API ||
		newConf.APIAddress != p.conf.APIAddress ||
		newConf.ReadTimeout != p.conf.ReadTimeout ||
		newConf.WriteTimeout != p.conf.WriteTimeout ||
		closeAuthManager ||
		closeRTMPServer

	if newConf == nil && p.confWatcher != nil {
		p.confWatcher.Close()
		p.confWatcher = nil
	}

	if closeAPI && p.api != nil {
		p.api.Close()
		p.api = nil
	}

	if closePPROF && p.pprof != nil {
		p.pprof.Close()
		p.pprof = nil
	}

	if closeRTMPServer && p.rtmpServer != nil {
		p.rtmpServer.Close()
		p.rtmpServer = nil
	}

	if closeTranscoder && p.transcoder != nil {
		p.transcoder.Close()
		p.transcoder = nil
	}

	if closeAuthManager {
		p.authManager = nil
	}

	if closeLogger && p.logger != nil {
		p.logger.Close()
		p.logger = nil
	}
}

func (p *Core) reloadConf(newConf *conf.Conf) error {
	p.closeResources(newConf)
	p.conf = newConf
	return p.createResources(false)
}
