package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChangeStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

type RealtimeHandler struct {
	stream ChangeStream
}

func NewRealtimeHandler(stream ChangeStream) *RealtimeHandler {
	return &RealtimeHandler{
		stream: stream,
	}
}

// HandleRealtime godoc
// @Summary      Stream data changes to admin dashboards
// @Description  Upgrades to a websocket. Each message is a {table, type, id, at} change event.
// @Tags         admin
// @Param        token  query  string  false  "admin token when headers cannot be set"
// @Success      101
// @Failure      401  {object}  response.Err
// @Router       /admin/realtime [get]
// @Security BearerAuth
func (h *RealtimeHandler) HandleRealtime(ctx *gin.Context) {
	// The upgrader writes its own error response.
	if err := h.stream.ServeWS(ctx.Writer, ctx.Request); err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
	}
}
