// Package api contains the API server.
package api //nolint:revive

import (
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/livecast/ingest/internal/conf"
	"github.com/livecast/ingest/internal/defs"
	"github.com/livecast/ingest/internal/logger"
	"github.com/livecast/ingest/internal/protocols/httpp"
)

func interfaceIsEmpty(i any) bool {
	return reflect.ValueOf(i).Kind() != reflect.Pointer || reflect.ValueOf(i).IsNil()
}

type apiAuthManager interface {
	RefreshJWTJWKS()
}

type apiRTMPServer interface {
	APIConnsList() (*defs.APIRTMPConnList, error)
	APIConnsGet(uuid.UUID) (*defs.APIRTMPConn, error)
	APIConnsKick(uuid.UUID) error
	APIStreamsList() (*defs.APIStreamList, error)
}

type apiParent interface {
	logger.Writer
}

// API is an API server.
type API struct {
	Version      string
	Started      time.Time
	Address      string
	ReadTimeout  conf.Duration
	WriteTimeout conf.Duration
	AuthManager  apiAuthManager
	RTMPServer   apiRTMPServer
	Parent       apiParent

	httpServer *httpp.Server
}

// Initialize initializes API.
func (a *API) Initialize() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	group := router.Group("/v1")

	group.GET("/info", a.onInfo)

	if !interfaceIsEmpty(a.AuthManager) {
		group.POST("/auth/jwks/refresh", a.onAuthJwksRefresh)
	}

	if !interfaceIsEmpty(a.RTMPServer) {
		group.GET("/rtmpconns/list", a.onRTMPConnsList)
		group.GET("/rtmpconns/get/:id", a.onRTMPConnsGet)
		group.POST("/rtmpconns/kick/:id", a.onRTMPConnsKick)
		group.GET("/streams/list", a.onStreamsList)
	}

	a.httpServer = &httpp.Server{
		Address:      a.Address,
		ReadTimeout:  time.Duration(a.ReadTimeout),
		WriteTimeout: time.Duration(a.WriteTimeout),
		Handler:      router,
		Parent:       a,
	}
	err := a.httpServer.Initialize()
	if err != nil {
		return err
	}

	a.Log(logger.Info, "listener opened on "+a.httpServer.Addr().String())

	return nil
}

// Close closes the API.
func (a *API) Close() {
	a.Log(logger.Info, "listener is closing")
	a.httpServer.Close()
}

// Log implements logger.Writer.
func (a *API) Log(level logger.Level, format string, args ...any) {
	a.Parent.Log(level, "[API] "+format, args...)
}

func (a *API) writeError(ctx *gin.Context, status int, err error) {
	// show error in logs
	a.Log(logger.Error, err.Error())

	// add error to response
	ctx.JSON(status, &defs.APIError{
		Error: err.Error(),
	})
}

func (a *API) writeOK(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, &defs.APIOK{Status: "ok"})
}

func (a *API) onInfo(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, &defs.APIInfo{
		Version: a.Version,
		Started: a.Started,
	})
}

func (a *API) onAuthJwksRefresh(ctx *gin.Context) {
	a.AuthManager.RefreshJWTJWKS()
	a.writeOK(ctx)
}
