package handler

import (
	"anoa.com/studentrecords/internal/ws"
	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect upgrades an authenticated request to a websocket session keyed
// by the caller's account ID.
func (h *WSHandler) Connect(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	h.hub.ServeWS(c.Writer, c.Request, actor.UserID.String())
}
