package httpp

import (
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livecast/ingest/internal/logger"
)

type nilLogger struct{}

func (nilLogger) Log(logger.Level, string, ...any) {}

func TestServerHeader(t *testing.T) {
	s := &Server{
		Address:      "127.0.0.1:0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("ok")) //nolint:errcheck
		}),
		Parent: nilLogger{},
	}
	err := s.Initialize()
	require.NoError(t, err)
	defer s.Close()

	res, err := http.Get("http://" + s.Addr().String() + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ingest", res.Header.Get("Server"))

	byts, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "ok", string(byts))
}

func TestServerFilterEmptyPath(t *testing.T) {
	s := &Server{
		Address:      "127.0.0.1:0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Handler:      http.NotFoundHandler(),
		Parent:       nilLogger{},
	}
	err := s.Initialize()
	require.NoError(t, err)
	defer s.Close()

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("OPTIONS http://localhost HTTP/1.1\n" +
		"Host: localhost\n" +
		"User-Agent: Go-http-client/1.1\n\n"))
	require.NoError(t, err)

	buf := make([]byte, 12)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 400", string(buf))
}

func TestServerInvalidTimeouts(t *testing.T) {
	s := &Server{
		Address: "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
		Parent:  nilLogger{},
	}
	require.EqualError(t, s.Initialize(), "invalid ReadTimeout")
}

func TestServerFilterMethods(t *testing.T) {
	s := &Server{
		Address:      "127.0.0.1:0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		Parent: nilLogger{},
	}
	err := s.Initialize()
	require.NoError(t, err)
	defer s.Close()

	tr := &http.Transport{}
	defer tr.CloseIdleConnections()
	hc := &http.Client{Transport: tr}

	for _, ca := range []struct {
		method string
		status int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusOK},
		{http.MethodDelete, http.StatusMethodNotAllowed},
		{http.MethodPatch, http.StatusMethodNotAllowed},
	} {
		t.Run(ca.method, func(t *testing.T) {
			req, err := http.NewRequest(ca.method, "http://"+s.Addr().String()+"/", nil)
			require.NoError(t, err)

			res, err := hc.Do(req)
			require.NoError(t, err)
			defer res.Body.Close()

			require.Equal(t, ca.status, res.StatusCode)
		})
	}
}
