package api //nolint:revive

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/livecast/ingest/internal/servers/rtmp"
)

func statusOf(err error) int {
	if errors.Is(err, rtmp.ErrConnNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (a *API) connID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return uuid.UUID{}, false
	}
	return id, true
}

func (a *API) onRTMPConnsList(ctx *gin.Context) {
	data, err := a.RTMPServer.APIConnsList()
	if err != nil {
		a.writeError(ctx, http.StatusInternalServerError, err)
		return
	}

	data.ItemCount = len(data.Items)
	data.PageCount, err = paginate(&data.Items, ctx.Query("itemsPerPage"), ctx.Query("page"))
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	ctx.JSON(http.StatusOK, data)
}

func (a *API) onRTMPConnsGet(ctx *gin.Context) {
	id, ok := a.connID(ctx)
	if !ok {
		return
	}

	data, err := a.RTMPServer.APIConnsGet(id)
	if err != nil {
		a.writeError(ctx, statusOf(err), err)
		return
	}

	ctx.JSON(http.StatusOK, data)
}

func (a *API) onRTMPConnsKick(ctx *gin.Context) {
	id, ok := a.connID(ctx)
	if !ok {
		return
	}

	err := a.RTMPServer.APIConnsKick(id)
	if err != nil {
		a.writeError(ctx, statusOf(err), err)
		return
	}

	a.writeOK(ctx)
}

func (a *API) onStreamsList(ctx *gin.Context) {
	data, err := a.RTMPServer.APIStreamsList()
	if err != nil {
		a.writeError(ctx, http.StatusInternalServerError, err)
		return
	}

	data.ItemCount = len(data.Items)
	data.PageCount, err = paginate(&data.Items, ctx.Query("itemsPerPage"), ctx.Query("page"))
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	ctx.JSON(http.StatusOK, data)
}
