package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// Success writes the standard {code, message, data} envelope used by the
// operational endpoints.
func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

// JSON writes body as is. The chat endpoint has its own wire shape and
// does not use the envelope.
func JSON(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}

func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
