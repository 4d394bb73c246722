package api //nolint:revive

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/livecast/ingest/internal/conf"
	"github.com/livecast/ingest/internal/defs"
	"github.com/livecast/ingest/internal/servers/rtmp"
	"github.com/livecast/ingest/internal/test"
)

type dummyRTMPServer struct {
	conns []*defs.APIRTMPConn

	mutex  sync.Mutex
	kicked []uuid.UUID
}

func (s *dummyRTMPServer) APIConnsList() (*defs.APIRTMPConnList, error) {
	return &defs.APIRTMPConnList{Items: append([]*defs.APIRTMPConn(nil), s.conns...)}, nil
}

func (s *dummyRTMPServer) APIConnsGet(id uuid.UUID) (*defs.APIRTMPConn, error) {
	for _, c := range s.conns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, rtmp.ErrConnNotFound
}

func (s *dummyRTMPServer) APIConnsKick(id uuid.UUID) error {
	for _, c := range s.conns {
		if c.ID == id {
			s.mutex.Lock()
			s.kicked = append(s.kicked, id)
			s.mutex.Unlock()
			return nil
		}
	}
	return rtmp.ErrConnNotFound
}

func (s *dummyRTMPServer) APIStreamsList() (*defs.APIStreamList, error) {
	out := &defs.APIStreamList{Items: []*defs.APIStream{}}
	for _, c := range s.conns {
		if c.Stream != "" {
			out.Items = append(out.Items, &defs.APIStream{Name: c.Stream, ConnID: c.ID})
		}
	}
	return out, nil
}

type dummyAuthManager struct {
	refreshed atomic.Int64
}

func (m *dummyAuthManager) RefreshJWTJWKS() {
	m.refreshed.Add(1)
}

func httpRequest(t *testing.T, hc *http.Client, method string, ur string, out any) int {
	req, err := http.NewRequest(method, ur, nil)
	require.NoError(t, err)

	res, err := hc.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil {
		err = json.NewDecoder(res.Body).Decode(out)
		require.NoError(t, err)
	}

	return res.StatusCode
}

func newTestAPI(t *testing.T, srv *dummyRTMPServer, am *dummyAuthManager) *API {
	a := &API{
		Version:      "v1.2.3",
		Started:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Address:      "127.0.0.1:0",
		ReadTimeout:  conf.Duration(10 * time.Second),
		WriteTimeout: conf.Duration(10 * time.Second),
		AuthManager:  am,
		RTMPServer:   srv,
		Parent:       test.NilLogger,
	}
	err := a.Initialize()
	require.NoError(t, err)
	return a
}

func TestAPIInfo(t *testing.T) {
	a := newTestAPI(t, &dummyRTMPServer{}, &dummyAuthManager{})
	defer a.Close()

	hc := &http.Client{Transport: &http.Transport{}}

	var out defs.APIInfo
	status := httpRequest(t, hc, http.MethodGet, "http://"+a.httpServer.Addr().String()+"/v1/info", &out)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, defs.APIInfo{
		Version: "v1.2.3",
		Started: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, out)
}

func TestAPIRTMPConns(t *testing.T) {
	id1 := uuid.New()
	id2 := uuid.New()

	srv := &dummyRTMPServer{
		conns: []*defs.APIRTMPConn{
			{ID: id1, RemoteAddr: "127.0.0.1:3455", State: "publish", Stream: "mystream"},
			{ID: id2, RemoteAddr: "127.0.0.1:3456", State: "idle"},
		},
	}

	a := newTestAPI(t, srv, &dummyAuthManager{})
	defer a.Close()

	hc := &http.Client{Transport: &http.Transport{}}
	base := "http://" + a.httpServer.Addr().String() + "/v1"

	t.Run("list", func(t *testing.T) {
		var out defs.APIRTMPConnList
		status := httpRequest(t, hc, http.MethodGet, base+"/rtmpconns/list?itemsPerPage=1&page=1", &out)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, 2, out.ItemCount)
		require.Equal(t, 2, out.PageCount)
		require.Len(t, out.Items, 1)
		require.Equal(t, id2, out.Items[0].ID)
	})

	t.Run("list invalid page", func(t *testing.T) {
		var out defs.APIError
		status := httpRequest(t, hc, http.MethodGet, base+"/rtmpconns/list?itemsPerPage=0", &out)
		require.Equal(t, http.StatusBadRequest, status)
		require.Equal(t, "invalid items per page", out.Error)
	})

	t.Run("get", func(t *testing.T) {
		var out defs.APIRTMPConn
		status := httpRequest(t, hc, http.MethodGet, base+"/rtmpconns/get/"+id1.String(), &out)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "mystream", out.Stream)
		require.Equal(t, defs.APIRTMPConnState("publish"), out.State)
	})

	t.Run("get not found", func(t *testing.T) {
		var out defs.APIError
		status := httpRequest(t, hc, http.MethodGet, base+"/rtmpconns/get/"+uuid.New().String(), &out)
		require.Equal(t, http.StatusNotFound, status)
		require.Equal(t, "connection not found", out.Error)
	})

	t.Run("get invalid id", func(t *testing.T) {
		status := httpRequest(t, hc, http.MethodGet, base+"/rtmpconns/get/abc", nil)
		require.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("kick", func(t *testing.T) {
		var out defs.APIOK
		status := httpRequest(t, hc, http.MethodPost, base+"/rtmpconns/kick/"+id2.String(), &out)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "ok", out.Status)
		srv.mutex.Lock()
		defer srv.mutex.Unlock()
		require.Equal(t, []uuid.UUID{id2}, srv.kicked)
	})

	t.Run("kick not found", func(t *testing.T) {
		status := httpRequest(t, hc, http.MethodPost, base+"/rtmpconns/kick/"+uuid.New().String(), nil)
		require.Equal(t, http.StatusNotFound, status)
	})

	t.Run("streams", func(t *testing.T) {
		var out defs.APIStreamList
		status := httpRequest(t, hc, http.MethodGet, base+"/streams/list", &out)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, defs.APIStreamList{
			ItemCount: 1,
			PageCount: 1,
			Items:     []*defs.APIStream{{Name: "mystream", ConnID: id1}},
		}, out)
	})
}

func TestAPIJWKSRefresh(t *testing.T) {
	am := &dummyAuthManager{}
	a := newTestAPI(t, &dummyRTMPServer{}, am)
	defer a.Close()

	hc := &http.Client{Transport: &http.Transport{}}

	status := httpRequest(t, hc, http.MethodPost, "http://"+a.httpServer.Addr().String()+"/v1/auth/jwks/refresh", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(1), am.refreshed.Load())
}
