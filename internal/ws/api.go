// Exposes the WebSocket upgrade endpoint of Welzyne.

package ws

import (
	"Welzyne/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser dashboard may be served from a different origin than the API
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Registers the WebSocket handler onto the gin server.
func APIHandlers(router *gin.Engine, registry *Registry, logger log.Logger) {
	router.GET("/ws", wshandler(registry, logger))
}

// wshandler upgrades the request and parks the connection in the registry.
// The read loop keeps the connection's control-frame processing alive; client
// messages carry no protocol meaning and are logged only.
func wshandler(registry *Registry, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		conn, upgerr := upgrader.Upgrade(gctx.Writer, gctx.Request, nil)
		if upgerr != nil {
			// Upgrade already replied with an error status
			logger.WithCtx(gctx).Error().Err(upgerr).Msg("WebSocket upgrade failed")
			return
		}
		id := registry.Register(conn)
		defer registry.Remove(id)
		for {
			_, message, readerr := conn.ReadMessage()
			if readerr != nil {
				// Explicit close, error or heartbeat termination, all end here
				if websocket.IsUnexpectedCloseError(readerr, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Error().Err(readerr).Msgf("WebSocket connection %s closed unexpectedly", id)
				}
				return
			}
			logger.Info().Msgf("Received message on WebSocket connection %s: %s", id, message)
		}
	}
}
