package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ecanteen/internal/logger"
	"ecanteen/internal/realtime"
)

type BoardHandler struct {
	board *realtime.OrderBoard
}

func NewBoardHandler(board *realtime.OrderBoard) *BoardHandler {
	return &BoardHandler{board: board}
}

// @Summary      Live order board
// @Description  WebSocket stream of order.created and order.status events for kitchen screens.
// @Tags         Orders
// @Security     BearerAuth
// @Success      101
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /orders/stream [get]
func (h *BoardHandler) Stream(c *gin.Context) {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "WebSocket upgrade required"})
		return
	}
	if err := h.board.Serve(c.Writer, c.Request); err != nil {
		logger.WithModule("board").Warn("websocket upgrade failed",
			zap.String("request_id", c.GetString("request_id")), zap.Error(err))
	}
}
