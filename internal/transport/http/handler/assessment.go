package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sarvuday-server/internal/app"
	"sarvuday-server/internal/transport/http/response"
)

type AssessmentHandler struct {
	assessmentService *app.AssessmentService
	debug             bool
}

func NewAssessmentHandler(assessmentService *app.AssessmentService, debug bool) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService, debug: debug}
}

// Results returns scored responses grouped by conversation and category.
func (h *AssessmentHandler) Results(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	summary, err := h.assessmentService.Summarize(c.Request.Context(), userID, app.SummaryFilter{
		ConversationID: c.Query("sessionId"),
		Category:       c.Query("category"),
	})
	if err != nil {
		writeError(c, err, "failed to fetch assessment results", h.debug)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": summary})
}
