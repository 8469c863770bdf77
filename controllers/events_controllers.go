package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dmoralesp/cafe-pos/events"
	"github.com/dmoralesp/cafe-pos/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS middleware on the upgrade request.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler upgrades the connection and registers it on the event hub
// until the client disconnects.
func EventsHandler(c *gin.Context) {
	role := c.GetString("role")
	if role == "" {
		role = c.Param("role")
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	events.RegisterClient(conn, role)
	utils.InfoLogger.Printf("Event client connected (role=%s)", role)

	defer events.UnregisterClient(conn)
	for {
		// Clients only listen; reads just detect the disconnect.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
