package middlewares

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondJSON writes the {success, message, ...} envelope. Keys in fields are
// merged into the top level.
func RespondJSON(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{
		"success": status < 400,
		"message": message,
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// HttpError logs err and aborts with an error envelope.
func HttpError(c *gin.Context, log *zap.Logger, status int, message string, err error) {
	if err != nil && status >= 500 {
		log.Error("request failed",
			zap.Int("status", status),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	body := gin.H{"success": false, "message": message}
	c.AbortWithStatusJSON(status, body)
}
