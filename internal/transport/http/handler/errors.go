package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sarvuday-server/internal/ai"
	"sarvuday-server/internal/app"
	"sarvuday-server/internal/transport/http/middleware"
	"sarvuday-server/internal/transport/http/response"
)

// writeError maps service errors onto HTTP statuses. Internal detail is only
// exposed when debug is set.
func writeError(c *gin.Context, err error, fallback string, debug bool) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, app.ErrMessageEmpty),
		errors.Is(err, app.ErrInvalidHistory),
		errors.Is(err, app.ErrInvalidCategory),
		errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, err.Error(), "")
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, app.ErrCompletionFailed):
		detail := ""
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) {
			detail = upstream.Detail
		}
		response.Error(c, http.StatusBadGateway, app.ErrCompletionFailed.Error(), detail)
	default:
		detail := ""
		if debug {
			detail = err.Error()
		}
		response.Error(c, http.StatusInternalServerError, fallback, detail)
	}
}

func requireUser(c *gin.Context) (uint, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload", "")
		return 0, false
	}
	return id, true
}
