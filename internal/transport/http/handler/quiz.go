package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sarvuday-server/internal/app"
	"sarvuday-server/internal/transport/http/response"
)

type QuizHandler struct {
	quizService *app.QuizService
	debug       bool
}

type SubmitQuizRequest struct {
	QuizType string `json:"quizType" binding:"required"`
	Score    *int   `json:"score" binding:"required"`
	Remark   string `json:"remark" binding:"required"`
}

func NewQuizHandler(quizService *app.QuizService, debug bool) *QuizHandler {
	return &QuizHandler{quizService: quizService, debug: debug}
}

func (h *QuizHandler) Submit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload", "")
		return
	}

	result, err := h.quizService.Submit(c.Request.Context(), app.SubmitQuizInput{
		UserID:   userID,
		QuizType: req.QuizType,
		Score:    *req.Score,
		Remark:   req.Remark,
	})
	if err != nil {
		writeError(c, err, "failed to save quiz result", h.debug)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Quiz result saved successfully.",
		"result":  result,
	})
}

func (h *QuizHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	history, err := h.quizService.History(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to fetch quiz history", h.debug)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"history": history})
}
