package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xxxsen/foliochat/internal/model"
	"github.com/xxxsen/foliochat/internal/pkg/response"
	"github.com/xxxsen/foliochat/internal/service"
)

const maxBodyBytes = 1 << 20

type ChatReplier interface {
	Reply(ctx context.Context, msgs []model.Message) (*service.ChatReply, error)
}

type ChatHandler struct {
	chat ChatReplier
}

func NewChatHandler(chat ChatReplier) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatMessage struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

type chatRequest struct {
	Messages  *[]*chatMessage `json:"messages"`
	SessionID interface{}     `json:"session_id"`
	PagePath  interface{}     `json:"page_path"`
}

type noQuestionResponse struct {
	Error   string           `json:"error"`
	Reply   string           `json:"reply"`
	Sources []service.Source `json:"sources"`
}

// Handle serves the chat path for every method; only POST is answered.
func (h *ChatHandler) Handle(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		response.Error(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isMalformedJSON(err) {
			response.Error(c, http.StatusBadRequest, msgInvalidJSON)
			return
		}
		response.Error(c, http.StatusBadRequest, msgInvalidMessages)
		return
	}
	msgs, ok := req.messages()
	if !ok {
		response.Error(c, http.StatusBadRequest, msgInvalidMessages)
		return
	}
	if !hasQuestion(msgs) {
		response.JSON(c, http.StatusBadRequest, noQuestionResponse{
			Error:   msgNoQuestion,
			Reply:   msgNoQuestion,
			Sources: []service.Source{},
		})
		return
	}

	requestLogger(c).Info("chat request",
		zap.Int("messages", len(msgs)),
		zap.Any("session_id", req.SessionID),
		zap.Any("page_path", req.PagePath),
	)
	out, err := h.chat.Reply(c.Request.Context(), msgs)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

// isMalformedJSON separates a broken or oversized body from well-formed JSON
// of the wrong shape. An empty body is the latter.
func isMalformedJSON(err error) bool {
	var syntaxErr *json.SyntaxError
	var tooLarge *http.MaxBytesError
	return errors.As(err, &syntaxErr) || errors.As(err, &tooLarge) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (r *chatRequest) messages() ([]model.Message, bool) {
	if r.Messages == nil {
		return nil, false
	}
	msgs := make([]model.Message, 0, len(*r.Messages))
	for _, m := range *r.Messages {
		if m == nil || m.Role == nil || m.Content == nil {
			return nil, false
		}
		if *m.Role != model.RoleUser && *m.Role != model.RoleAssistant {
			return nil, false
		}
		msgs = append(msgs, model.Message{Role: *m.Role, Content: *m.Content})
	}
	return msgs, true
}

func hasQuestion(msgs []model.Message) bool {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			return strings.TrimSpace(msgs[i].Content) != ""
		}
	}
	return false
}
