package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/foliochat/internal/pkg/response"
)

func Healthz(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
