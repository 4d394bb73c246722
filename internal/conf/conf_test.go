package conf

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/livecast/ingest/internal/logger"
)

func writeTempFile(t *testing.T, byts []byte) string {
	fpath := filepath.Join(t.TempDir(), "ingest.yml")
	err := os.WriteFile(fpath, byts, 0o644)
	require.NoError(t, err)
	return fpath
}

func TestConfDefaults(t *testing.T) {
	conf, confPath, err := Load("", []string{filepath.Join(t.TempDir(), "missing.yml")})
	require.NoError(t, err)
	require.Equal(t, "", confPath)

	require.Equal(t, &Conf{
		LogLevel:             LogLevel(logger.Info),
		LogDestinations:      LogDestinations{logger.DestinationStdout},
		LogFile:              "ingest.log",
		ReadTimeout:          Duration(10 * time.Second),
		WriteTimeout:         Duration(10 * time.Second),
		RTMPAddress:          ":1935",
		RTMPChunkSize:        65536,
		RTMPWindowAckSize:    2500000,
		RTMPMaxMessageSize:   10 * 1024 * 1024,
		RetryAttempts:        3,
		AuthMethod:           AuthMethodHTTP,
		AuthHTTPAddress:      "http://localhost:8081/auth/check",
		AuthRetryPause:       Duration(500 * time.Millisecond),
		AuthInternalUsers:    []AuthInternalUser{},
		AuthJWTClaimKey:      "ingest_streams",
		TranscodeMethod:      TranscodeMethodHTTP,
		TranscodeHTTPAddress: "http://localhost:8082/ffmpeg",
		TranscodeRetryPause:  Duration(1 * time.Second),
		TranscodeDirectory:   "./streams",
		APIAddress:           ":9997",
		PPROFAddress:         ":9999",
	}, conf)
}

func TestConfFromFile(t *testing.T) {
	tmpf := writeTempFile(t, []byte(
		"logLevel: debug\n"+
			"logDestinations: [stdout, file]\n"+
			"readTimeout: 5s\n"+
			"rtmpAddress: :1936\n"+
			"rtmpMaxMessageSize: 2MB\n"+
			"authMethod: internal\n"+
			"authInternalUsers:\n"+
			"- name: mystream\n"+
			"  key: mykey\n"+
			"- name: any\n"+
			"  key: sha256:rl3rgi4NcZkpAEcacZnQ2VuOfJ0FxAqCRaKB/SwdZoQ=\n"+
			"transcodeMethod: command\n"+
			"transcodeCommand: ffmpeg -i $INGEST_INPUT -f hls $INGEST_PLAYLIST\n"+
			"transcodeInputAddress: rtmp://relay:1935/live\n"+
			"api: yes\n"))

	conf, confPath, err := Load(tmpf, nil)
	require.NoError(t, err)
	require.Equal(t, tmpf, confPath)

	require.Equal(t, LogLevel(logger.Debug), conf.LogLevel)
	require.Equal(t, LogDestinations{logger.DestinationStdout, logger.DestinationFile}, conf.LogDestinations)
	require.Equal(t, Duration(5*time.Second), conf.ReadTimeout)
	require.Equal(t, ":1936", conf.RTMPAddress)
	require.Equal(t, StringSize(2*1024*1024), conf.RTMPMaxMessageSize)
	require.Equal(t, AuthMethodInternal, conf.AuthMethod)
	require.Equal(t, []AuthInternalUser{
		{Name: "mystream", Key: "mykey"},
		{Name: "any", Key: "sha256:rl3rgi4NcZkpAEcacZnQ2VuOfJ0FxAqCRaKB/SwdZoQ="},
	}, conf.AuthInternalUsers)
	require.Equal(t, TranscodeMethodCommand, conf.TranscodeMethod)
	require.Equal(t, "rtmp://relay:1935/live", conf.TranscodeInputAddress)
	require.Equal(t, true, conf.API)

	// unchanged defaults
	require.Equal(t, 3, conf.RetryAttempts)
	require.Equal(t, Duration(10*time.Second), conf.WriteTimeout)
}

func TestConfFromFileAndEnv(t *testing.T) {
	t.Setenv("INGEST_RTMPADDRESS", ":1937")
	t.Setenv("INGEST_RETRYATTEMPTS", "5")
	t.Setenv("INGEST_API", "yes")
	t.Setenv("INGEST_AUTHRETRYPAUSE", "2s")
	t.Setenv("INGEST_LOGDESTINATIONS", "stdout,syslog")
	t.Setenv("INGEST_AUTHINTERNALUSERS_0_NAME", "envstream")
	t.Setenv("INGEST_AUTHINTERNALUSERS_0_KEY", "envkey")

	tmpf := writeTempFile(t, []byte("rtmpAddress: :1936\nretryAttempts: 4\n"))

	conf, _, err := Load(tmpf, nil)
	require.NoError(t, err)

	require.Equal(t, ":1937", conf.RTMPAddress)
	require.Equal(t, 5, conf.RetryAttempts)
	require.Equal(t, true, conf.API)
	require.Equal(t, Duration(2*time.Second), conf.AuthRetryPause)
	require.Equal(t, LogDestinations{logger.DestinationStdout, logger.DestinationSyslog}, conf.LogDestinations)
	require.Equal(t, []AuthInternalUser{{Name: "envstream", Key: "envkey"}}, conf.AuthInternalUsers)
}

func TestConfEncryption(t *testing.T) {
	key := "testing123testin"
	plaintext := "rtmpAddress: :2935\n"

	encryptedConf := func() string {
		var secretKey [32]byte
		copy(secretKey[:], key)

		var nonce [24]byte
		_, err := rand.Read(nonce[:])
		require.NoError(t, err)

		encrypted := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &secretKey)
		return base64.StdEncoding.EncodeToString(encrypted)
	}()

	t.Setenv("INGEST_CONFKEY", key)

	tmpf := writeTempFile(t, []byte(encryptedConf))

	conf, _, err := Load(tmpf, nil)
	require.NoError(t, err)
	require.Equal(t, ":2935", conf.RTMPAddress)
}

func TestConfErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		conf string
		err  string
	}{
		{
			"unknown parameter",
			"other: yes\n",
			`json: unknown field "other"`,
		},
		{
			"invalid log level",
			"logLevel: verbose\n",
			"invalid log level: 'verbose'",
		},
		{
			"duplicate log destination",
			"logDestinations: [stdout, stdout]\n",
			"log destination set twice",
		},
		{
			"invalid chunk size",
			"rtmpChunkSize: 10\n",
			"'rtmpChunkSize' must be between 128 and 16777215",
		},
		{
			"invalid max message size",
			"rtmpMaxMessageSize: 20MB\n",
			"'rtmpMaxMessageSize' must be between 1 and 16777215",
		},
		{
			"invalid retry attempts",
			"retryAttempts: 0\n",
			"'retryAttempts' must be greater than zero",
		},
		{
			"invalid auth method",
			"authMethod: ldap\n",
			"invalid authMethod: 'ldap'",
		},
		{
			"invalid auth address",
			"authHTTPAddress: localhost:8081\n",
			"'authHTTPAddress' must be a HTTP URL",
		},
		{
			"jwt without jwks",
			"authMethod: jwt\n",
			"'authJWTJWKS' must be a HTTP URL",
		},
		{
			"internal user without key",
			"authMethod: internal\nauthInternalUsers:\n- name: mystream\n",
			"key of internal user 'mystream' is empty",
		},
		{
			"invalid credential",
			"authInternalUsers:\n- name: mystream\n  key: my/key\n",
			"credential contains unsupported characters. Supported are: " + plainCredentialSupportedChars,
		},
		{
			"command without command",
			"transcodeMethod: command\n",
			"'transcodeCommand' is empty",
		},
		{
			"command without input address",
			"transcodeMethod: command\ntranscodeCommand: ffmpeg -i $INGEST_INPUT\n",
			"'transcodeInputAddress' must be a RTMP URL",
		},
		{
			"command with invalid input address",
			"transcodeMethod: command\ntranscodeCommand: ffmpeg -i $INGEST_INPUT\n" +
				"transcodeInputAddress: http://relay:8080\n",
			"'transcodeInputAddress' must be a RTMP URL",
		},
		{
			"invalid read timeout",
			"readTimeout: 0s\n",
			"'readTimeout' must be greater than zero",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			tmpf := writeTempFile(t, []byte(ca.conf))
			_, _, err := Load(tmpf, nil)
			require.EqualError(t, err, ca.err)
		})
	}
}

func TestConfClone(t *testing.T) {
	tmpf := writeTempFile(t, []byte(
		"authMethod: internal\n"+
			"authInternalUsers:\n"+
			"- name: mystream\n"+
			"  key: mykey\n"))

	conf, _, err := Load(tmpf, nil)
	require.NoError(t, err)

	clone := conf.Clone()
	require.Equal(t, conf, clone)

	clone.AuthInternalUsers[0].Name = "other"
	require.Equal(t, "mystream", conf.AuthInternalUsers[0].Name)
}

func TestSampleConfFile(t *testing.T) {
	defaults, _, err := Load("", []string{filepath.Join(t.TempDir(), "missing.yml")})
	require.NoError(t, err)

	sample, confPath, err := Load(filepath.Join("..", "..", "ingest.yml"), nil)
	require.NoError(t, err)
	require.NotEqual(t, "", confPath)

	require.Equal(t, defaults, sample)
}
