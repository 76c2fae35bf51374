package http

import (
	"encoding/json"
	"net/http"

	"github.com/BradMoyetones/chat-backend-go/internal/app"
	"github.com/BradMoyetones/chat-backend-go/internal/app/orch"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

func handleMessageEvent(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var msg domain.Message
		if err := c.ShouldBindJSON(&msg); err != nil || msg.ConversationID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid message"})
			return
		}
		o.MessageCreated(&msg)
		c.JSON(http.StatusOK, gin.H{"dispatched": true})
	}
}

func handleMessageReadEvent(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var read domain.MessageRead
		if err := c.ShouldBindJSON(&read); err != nil || read.ConversationID == 0 || len(read.MessageIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid read receipt"})
			return
		}
		o.MessagesRead(&read)
		c.JSON(http.StatusOK, gin.H{"dispatched": true})
	}
}

func handleMembershipRefresh(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID domain.UserID `json:"userId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid user"})
			return
		}
		if err := o.RefreshRoomMembership(c.Request.Context(), req.UserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"refreshed": true})
	}
}

var contactEvents = map[string]struct{}{
	domain.EventContactRequestReceived: {},
	domain.EventContactRequestAccept:   {},
	domain.EventContactRequestCancel:   {},
	domain.EventContactDeleted:         {},
}

func handleContactEvent(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Event        string          `json:"event"`
			TargetUserID domain.UserID   `json:"targetUserId"`
			Payload      json.RawMessage `json:"payload"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.TargetUserID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid contact event"})
			return
		}
		if _, ok := contactEvents[req.Event]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown contact event"})
			return
		}
		delivery := o.ContactEvent(req.Event, req.TargetUserID, req.Payload)
		c.JSON(http.StatusOK, gin.H{"delivered": delivery == app.Delivered})
	}
}
