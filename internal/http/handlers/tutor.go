package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studyowl/tutor-backend/internal/http/response"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
	"github.com/studyowl/tutor-backend/internal/tutor/dispatch"
	"github.com/studyowl/tutor-backend/internal/tutor/provider"
)

type TutorHandler struct {
	log        *logger.Logger
	dispatcher *dispatch.Dispatcher
}

func NewTutorHandler(log *logger.Logger, dispatcher *dispatch.Dispatcher) *TutorHandler {
	return &TutorHandler{
		log:        log.With("handler", "TutorHandler"),
		dispatcher: dispatcher,
	}
}

type chatReq struct {
	Message          string                 `json:"message"`
	ModelID          string                 `json:"modelId"`
	History          []provider.ChatMessage `json:"history"`
	IsGradingRequest bool                   `json:"isGradingRequest"`
	IsUnified        bool                   `json:"isUnified"`
	Language         string                 `json:"language"`
	CustomPrompt     string                 `json:"customPrompt"`
	UserContext      map[string]any         `json:"userContext"`
}

// POST /api/tutor/chat
func (h *TutorHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid JSON in request body"))
		return
	}

	var missing []string
	if strings.TrimSpace(req.Message) == "" {
		missing = append(missing, "message")
	}
	if strings.TrimSpace(req.ModelID) == "" {
		missing = append(missing, "modelId")
	}
	if len(missing) > 0 {
		response.RespondError(c, http.StatusBadRequest, fmt.Errorf(
			"missing required field(s): %s", strings.Join(missing, ", "),
		))
		return
	}

	out, apiErr := h.dispatcher.Handle(c.Request.Context(), dispatch.ChatRequest{
		Message:          req.Message,
		ModelID:          req.ModelID,
		History:          req.History,
		IsGradingRequest: req.IsGradingRequest,
		IsUnified:        req.IsUnified,
		Language:         req.Language,
		CustomPrompt:     req.CustomPrompt,
		UserContext:      req.UserContext,
	})
	if apiErr != nil {
		response.RespondError(c, apiErr.Status, apiErr)
		return
	}
	response.RespondOK(c, out)
}

type explanationReq struct {
	Topic       string         `json:"topic"`
	ModelID     string         `json:"modelId"`
	Language    string         `json:"language"`
	UserContext map[string]any `json:"userContext"`
}

// POST /api/tutor/explanation
func (h *TutorHandler) Explanation(c *gin.Context) {
	var req explanationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid JSON in request body"))
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		response.RespondError(c, http.StatusBadRequest, fmt.Errorf("missing required field(s): topic"))
		return
	}

	out, apiErr := h.dispatcher.HandleExplanation(c.Request.Context(), dispatch.ExplanationRequest{
		Topic:       req.Topic,
		ModelID:     req.ModelID,
		Language:    req.Language,
		UserContext: req.UserContext,
	})
	if apiErr != nil {
		response.RespondError(c, apiErr.Status, apiErr)
		return
	}
	response.RespondOK(c, out)
}
