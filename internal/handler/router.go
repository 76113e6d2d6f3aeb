package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Chat *ChatHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.Any("/chat", deps.Chat.Handle)
	api.GET("/healthz", Healthz)
}
