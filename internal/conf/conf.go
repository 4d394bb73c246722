// Package conf contains the struct that holds the configuration of the software.
package conf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/livecast/ingest/internal/conf/decrypt"
	"github.com/livecast/ingest/internal/conf/env"
	"github.com/livecast/ingest/internal/conf/yamlwrapper"
	"github.com/livecast/ingest/internal/logger"
)

const (
	envPrefix = "INGEST"
	envKey    = "INGEST_CONFKEY"

	maxChunkSize   = 0xFFFFFF
	minChunkSize   = 128
	maxMessageSize = 0xFFFFFF
)

func firstThatExists(paths []string) string {
	for _, pa := range paths {
		_, err := os.Stat(pa)
		if err == nil {
			return pa
		}
	}
	return ""
}

// Conf is a configuration.
type Conf struct {
	// General
	LogLevel        LogLevel        `json:"logLevel"`
	LogDestinations LogDestinations `json:"logDestinations"`
	LogStructured   bool            `json:"logStructured"`
	LogFile         string          `json:"logFile"`
	ReadTimeout     Duration        `json:"readTimeout"`
	WriteTimeout    Duration        `json:"writeTimeout"`

	// RTMP server
	RTMPAddress        string     `json:"rtmpAddress"`
	RTMPChunkSize      int        `json:"rtmpChunkSize"`
	RTMPWindowAckSize  int        `json:"rtmpWindowAckSize"`
	RTMPMaxMessageSize StringSize `json:"rtmpMaxMessageSize"`

	// External calls
	RetryAttempts int `json:"retryAttempts"`

	// Authorization
	AuthMethod        AuthMethod         `json:"authMethod"`
	AuthHTTPAddress   string             `json:"authHTTPAddress"`
	AuthRetryPause    Duration           `json:"authRetryPause"`
	AuthInternalUsers []AuthInternalUser `json:"authInternalUsers"`
	AuthJWTJWKS       string             `json:"authJWTJWKS"`
	AuthJWTClaimKey   string             `json:"authJWTClaimKey"`

	// Transcoding
	TranscodeMethod       TranscodeMethod `json:"transcodeMethod"`
	TranscodeHTTPAddress  string          `json:"transcodeHTTPAddress"`
	TranscodeRetryPause   Duration        `json:"transcodeRetryPause"`
	TranscodeCommand      string          `json:"transcodeCommand"`
	TranscodeInputAddress string          `json:"transcodeInputAddress"`
	TranscodeDirectory    string          `json:"transcodeDirectory"`

	// Control API
	API        bool   `json:"api"`
	APIAddress string `json:"apiAddress"`

	// pprof
	PPROF        bool   `json:"pprof"`
	PPROFAddress string `json:"pprofAddress"`
}

func (conf *Conf) setDefaults() {
	// General
	conf.LogLevel = LogLevel(logger.Info)
	conf.LogDestinations = LogDestinations{logger.DestinationStdout}
	conf.LogStructured = false
	conf.LogFile = "ingest.log"
	conf.ReadTimeout = Duration(10 * time.Second)
	conf.WriteTimeout = Duration(10 * time.Second)

	// RTMP server
	conf.RTMPAddress = ":1935"
	conf.RTMPChunkSize = 65536
	conf.RTMPWindowAckSize = 2500000
	conf.RTMPMaxMessageSize = 10 * 1024 * 1024

	// External calls
	conf.RetryAttempts = 3

	// Authorization
	conf.AuthMethod = AuthMethodHTTP
	conf.AuthHTTPAddress = "http://localhost:8081/auth/check"
	conf.AuthRetryPause = Duration(500 * time.Millisecond)
	conf.AuthInternalUsers = []AuthInternalUser{}
	conf.AuthJWTClaimKey = "ingest_streams"

	// Transcoding
	conf.TranscodeMethod = TranscodeMethodHTTP
	conf.TranscodeHTTPAddress = "http://localhost:8082/ffmpeg"
	conf.TranscodeRetryPause = Duration(1 * time.Second)
	conf.TranscodeDirectory = "./streams"

	// Control API
	conf.APIAddress = ":9997"

	// pprof
	conf.PPROFAddress = ":9999"
}

// Load loads a Conf.
// When fpath is empty, the first existing path of defaultConfPaths is used.
// It returns the path of the loaded file, or an empty string when no file was loaded.
func Load(fpath string, defaultConfPaths []string) (*Conf, string, error) {
	conf := &Conf{}

	fpath, err := conf.loadFromFile(fpath, defaultConfPaths)
	if err != nil {
		return nil, "", err
	}

	err = env.Load(envPrefix, conf)
	if err != nil {
		return nil, "", err
	}

	err = conf.Validate()
	if err != nil {
		return nil, "", err
	}

	return conf, fpath, nil
}

func (conf *Conf) loadFromFile(fpath string, defaultConfPaths []string) (string, error) {
	if fpath == "" {
		fpath = firstThatExists(defaultConfPaths)

		// when the configuration file is not explicitly set,
		// it is optional.
		if fpath == "" {
			conf.setDefaults()
			return "", nil
		}
	}

	byts, err := os.ReadFile(fpath)
	if err != nil {
		return "", err
	}

	if key, ok := os.LookupEnv(envKey); ok {
		byts, err = decrypt.Decrypt(key, byts)
		if err != nil {
			return "", err
		}
	}

	err = yamlwrapper.Unmarshal(byts, conf)
	if err != nil {
		return "", err
	}

	return fpath, nil
}

// Clone clones the configuration.
func (conf Conf) Clone() *Conf {
	enc, err := json.Marshal(conf)
	if err != nil {
		panic(err)
	}

	var dest Conf
	err = json.Unmarshal(enc, &dest)
	if err != nil {
		panic(err)
	}

	return &dest
}

func isHTTPURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func isRTMPURL(u string) bool {
	return strings.HasPrefix(u, "rtmp://") || strings.HasPrefix(u, "rtmps://")
}

// Validate checks the configuration for errors.
func (conf *Conf) Validate() error {
	// General

	if slices.Contains(conf.LogDestinations, logger.DestinationFile) && conf.LogFile == "" {
		return fmt.Errorf("'logFile' is empty")
	}
	if conf.ReadTimeout <= 0 {
		return fmt.Errorf("'readTimeout' must be greater than zero")
	}
	if conf.WriteTimeout <= 0 {
		return fmt.Errorf("'writeTimeout' must be greater than zero")
	}

	// RTMP server

	if conf.RTMPChunkSize < minChunkSize || conf.RTMPChunkSize > maxChunkSize {
		return fmt.Errorf("'rtmpChunkSize' must be between %d and %d", minChunkSize, maxChunkSize)
	}
	if conf.RTMPWindowAckSize <= 0 {
		return fmt.Errorf("'rtmpWindowAckSize' must be greater than zero")
	}
	if conf.RTMPMaxMessageSize == 0 || conf.RTMPMaxMessageSize > maxMessageSize {
		return fmt.Errorf("'rtmpMaxMessageSize' must be between 1 and %d", maxMessageSize)
	}

	// External calls

	if conf.RetryAttempts < 1 {
		return fmt.Errorf("'retryAttempts' must be greater than zero")
	}

	// Authorization

	switch conf.AuthMethod {
	case AuthMethodHTTP:
		if !isHTTPURL(conf.AuthHTTPAddress) {
			return fmt.Errorf("'authHTTPAddress' must be a HTTP URL")
		}

	case AuthMethodJWT:
		if !isHTTPURL(conf.AuthJWTJWKS) {
			return fmt.Errorf("'authJWTJWKS' must be a HTTP URL")
		}
		if conf.AuthJWTClaimKey == "" {
			return fmt.Errorf("'authJWTClaimKey' is empty")
		}
	}

	for _, u := range conf.AuthInternalUsers {
		if u.Name == "" {
			return fmt.Errorf("internal user name is empty")
		}
		if u.Key == "" {
			return fmt.Errorf("key of internal user '%s' is empty", u.Name)
		}
	}

	if conf.AuthRetryPause < 0 {
		return fmt.Errorf("'authRetryPause' must not be negative")
	}

	// Transcoding

	switch conf.TranscodeMethod {
	case TranscodeMethodHTTP:
		if !isHTTPURL(conf.TranscodeHTTPAddress) {
			return fmt.Errorf("'transcodeHTTPAddress' must be a HTTP URL")
		}

	case TranscodeMethodCommand:
		if conf.TranscodeCommand == "" {
			return fmt.Errorf("'transcodeCommand' is empty")
		}
		if !isRTMPURL(conf.TranscodeInputAddress) {
			return fmt.Errorf("'transcodeInputAddress' must be a RTMP URL")
		}
		if conf.TranscodeDirectory == "" {
			return fmt.Errorf("'transcodeDirectory' is empty")
		}
	}

	if conf.TranscodeRetryPause < 0 {
		return fmt.Errorf("'transcodeRetryPause' must not be negative")
	}

	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (conf *Conf) UnmarshalJSON(b []byte) error {
	conf.setDefaults()

	type alias Conf
	d := json.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()
	return d.Decode((*alias)(conf))
}
