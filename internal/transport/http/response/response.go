package response

import "github.com/gin-gonic/gin"

// Success writes {"success": true, ...payload}.
func Success(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error writes {"success": false, "message": ...}. Detail is only included
// when non-empty.
func Error(c *gin.Context, status int, message, detail string) {
	body := gin.H{
		"success": false,
		"message": message,
	}
	if detail != "" {
		body["error"] = detail
	}
	c.JSON(status, body)
}
