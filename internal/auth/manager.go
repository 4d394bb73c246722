// Package auth contains the authorization system of publishers.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/livecast/ingest/internal/conf"
	"github.com/livecast/ingest/internal/logger"
)

const (
	jwksRefreshPeriod = 60 * 60 * time.Second
)

func matchesStreamName(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "~") {
			re, err := regexp.Compile(pattern[1:])
			if err == nil && re.MatchString(name) {
				return true
			}
		} else if pattern == name {
			return true
		}
	}

	return false
}

type jwtClaims struct {
	jwt.RegisteredClaims
	streamsKey string
	streams    []string
}

func (c *jwtClaims) UnmarshalJSON(b []byte) error {
	err := json.Unmarshal(b, &c.RegisteredClaims)
	if err != nil {
		return err
	}

	var claimMap map[string]json.RawMessage
	err = json.Unmarshal(b, &claimMap)
	if err != nil {
		return err
	}

	rawStreams, ok := claimMap[c.streamsKey]
	if !ok {
		return fmt.Errorf("claim '%s' not found inside JWT", c.streamsKey)
	}

	return json.Unmarshal(rawStreams, &c.streams)
}

// Manager is the authorization manager.
type Manager struct {
	Method        conf.AuthMethod
	HTTPAddress   string
	InternalUsers []conf.AuthInternalUser
	JWTJWKS       string
	JWTClaimKey   string
	ReadTimeout   time.Duration
	Parent        logger.Writer

	mutex           sync.RWMutex
	httpClient      *http.Client
	jwksLastRefresh time.Time
	jwtKeyFunc      keyfunc.Keyfunc
}

// ReloadInternalUsers reloads InternalUsers.
func (m *Manager) ReloadInternalUsers(u []conf.AuthInternalUser) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.InternalUsers = u
}

// Log implements logger.Writer.
func (m *Manager) Log(level logger.Level, format string, args ...any) {
	if m.Parent != nil {
		m.Parent.Log(level, "[auth] "+format, args...)
	}
}

// Authorize checks whether a publisher can publish a stream.
// It returns nil when the publisher is allowed and an Error when it is not.
// Any other error means that the check could not be performed.
func (m *Manager) Authorize(ctx context.Context, req *Request) error {
	switch m.Method {
	case conf.AuthMethodInternal:
		return m.authorizeInternal(req)

	case conf.AuthMethodJWT:
		return m.authorizeJWT(ctx, req)

	default:
		return m.authorizeHTTP(ctx, req)
	}
}

func (m *Manager) client() *http.Client {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.httpClient == nil {
		m.httpClient = &http.Client{Timeout: m.ReadTimeout}
	}
	return m.httpClient
}

func (m *Manager) authorizeInternal(req *Request) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.InternalUsers {
		if (u.Name == "any" || u.Name == req.StreamName) && u.Key.Check(req.StreamKey) {
			return nil
		}
	}

	return Error{Wrapped: fmt.Errorf("stream key rejected")}
}

func (m *Manager) authorizeHTTP(ctx context.Context, req *Request) error {
	enc, _ := json.Marshal(struct {
		Username  string `json:"username"`
		StreamKey string `json:"streamKey"`
	}{
		Username:  req.StreamName,
		StreamKey: req.StreamKey,
	})

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.HTTPAddress, bytes.NewReader(enc))
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/json")

	res, err := m.client().Do(hreq)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if resBody, err2 := io.ReadAll(res.Body); err2 == nil && len(resBody) != 0 {
			return fmt.Errorf("server replied with code %d: %s", res.StatusCode, string(resBody))
		}

		return fmt.Errorf("server replied with code %d", res.StatusCode)
	}

	var allowed bool
	err = json.NewDecoder(res.Body).Decode(&allowed)
	if err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}

	if !allowed {
		return Error{Wrapped: fmt.Errorf("stream key rejected")}
	}

	return nil
}

func (m *Manager) authorizeJWT(ctx context.Context, req *Request) error {
	keyfunc, err := m.pullJWTJWKS(ctx)
	if err != nil {
		return err
	}

	if req.StreamKey == "" {
		return Error{Wrapped: fmt.Errorf("JWT not provided")}
	}

	var cc jwtClaims
	cc.streamsKey = m.JWTClaimKey
	_, err = jwt.ParseWithClaims(req.StreamKey, &cc, keyfunc)
	if err != nil {
		return Error{Wrapped: err}
	}

	if !matchesStreamName(cc.streams, req.StreamName) {
		return Error{Wrapped: fmt.Errorf("JWT doesn't allow publishing '%s'", req.StreamName)}
	}

	return nil
}

func (m *Manager) pullJWTJWKS(ctx context.Context) (jwt.Keyfunc, error) {
	now := time.Now()
	client := m.client()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if now.Sub(m.jwksLastRefresh) >= jwksRefreshPeriod {
		hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, m.JWTJWKS, nil)
		if err != nil {
			return nil, err
		}

		res, err := client.Do(hreq)
		if err != nil {
			return nil, fmt.Errorf("unable to download JWKS: %w", err)
		}
		defer res.Body.Close()

		var raw json.RawMessage
		err = json.NewDecoder(res.Body).Decode(&raw)
		if err != nil {
			return nil, err
		}

		tmp, err := keyfunc.NewJWKSetJSON(raw)
		if err != nil {
			return nil, err
		}

		m.jwtKeyFunc = tmp
		m.jwksLastRefresh = now
		m.Log(logger.Debug, "JWKS downloaded from %s", m.JWTJWKS)
	}

	return m.jwtKeyFunc.Keyfunc, nil
}

// RefreshJWTJWKS forces a download of the JWKS at the next authorization.
func (m *Manager) RefreshJWTJWKS() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.jwksLastRefresh = time.Time{}
	m.Log(logger.Info, "JWKS refresh requested")
}

// IsDenied returns true if err means that the publisher is not allowed.
func IsDenied(err error) bool {
	var aerr Error
	return errors.As(err, &aerr)
}
