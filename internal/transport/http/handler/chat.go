package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sarvuday-server/internal/app"
	"sarvuday-server/internal/transport/http/response"
)

type ChatHandler struct {
	chatService       *app.ChatService
	transcriptService *app.TranscriptService
	debug             bool
}

type SendMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type CreateSessionRequest struct {
	InitialMessage string `json:"initialMessage" binding:"max=2000"`
}

func NewChatHandler(chatService *app.ChatService, transcriptService *app.TranscriptService, debug bool) *ChatHandler {
	return &ChatHandler{
		chatService:       chatService,
		transcriptService: transcriptService,
		debug:             debug,
	}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload", "")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:         userID,
		ConversationID: req.SessionID,
		Message:        req.Message,
	})
	if err != nil {
		writeError(c, err, "failed to process message", h.debug)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"chat":         result.Turn,
		"sessionId":    result.ConversationID,
		"isNewSession": result.IsNewSession,
	})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sessionID := strings.TrimSpace(c.Query("sessionId"))
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, "sessionId is required", "")
		return
	}

	turns, err := h.chatService.GetHistory(c.Request.Context(), userID, sessionID)
	if err != nil {
		writeError(c, err, "failed to fetch chat history", h.debug)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.Success(c, http.StatusOK, gin.H{
		"chats":     turns,
		"sessionId": sessionID,
	})
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid request payload", "")
			return
		}
	}

	header, err := h.chatService.CreateSession(c.Request.Context(), userID, req.InitialMessage)
	if err != nil {
		writeError(c, err, "failed to create chat session", h.debug)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"sessionId":        header.SessionID,
		"conversationName": header.ConversationName,
	})
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sessions, err := h.chatService.ListSessions(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to fetch chat sessions", h.debug)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

func (h *ChatHandler) ExportSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	filename, err := h.transcriptService.ExportSession(c.Request.Context(), userID, c.Param("sessionId"))
	if err != nil {
		writeError(c, err, "failed to export chat session", h.debug)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":  "Chat session exported",
		"filename": filename,
	})
}
