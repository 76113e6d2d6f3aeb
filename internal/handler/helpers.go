package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/foliochat/internal/middleware"
	appErr "github.com/xxxsen/foliochat/internal/pkg/errors"
	"github.com/xxxsen/foliochat/internal/pkg/response"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidJSON      = "Invalid JSON"
	msgInvalidMessages  = "Missing or invalid messages"
	msgNoQuestion       = "I didn't catch your question. Could you please type something?"
	msgConfig           = "Server configuration error"
	msgInternal         = "Something went wrong. Please try again later."
)

func requestLogger(c *gin.Context) *zap.Logger {
	return logutil.GetLogger(c.Request.Context()).With(
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
}

// handleError logs the underlying error and answers with a fixed message;
// internal detail never reaches the client.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logger := requestLogger(c)
	switch {
	case appErr.IsInvalid(err):
		logger.Info("invalid chat request", zap.Error(err))
		response.Error(c, http.StatusBadRequest, msgNoQuestion)
	case appErr.IsConfig(err):
		logger.Error("chat misconfigured", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, msgConfig)
	default:
		logger.Error("chat failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, msgInternal)
	}
}
