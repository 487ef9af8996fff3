package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/planora/agent-gateway/internal/middleware"
	"github.com/planora/agent-gateway/internal/model"
	"github.com/planora/agent-gateway/internal/service"
)

// tokenResolver and dispatcher are the two collaborators the chat endpoint
// needs; narrowed to interfaces so tests can fake them.
type tokenResolver interface {
	ResolveAccessToken(ctx context.Context, userID string) (string, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, message, accessToken string) (*model.ChatOutcome, error)
}

type ChatHandler struct {
	tokens tokenResolver
	disp   dispatcher
}

func NewChatHandler(tokens tokenResolver, disp dispatcher) *ChatHandler {
	return &ChatHandler{tokens: tokens, disp: disp}
}

type chatResponse struct {
	Message         string             `json:"message"`
	Success         bool               `json:"success"`
	ToolResults     []model.ToolResult `json:"tool_results,omitempty"`
	NeedsGoogleAuth bool               `json:"needs_google_auth"`
}

// POST /v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "E_VALIDATION", "invalid body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "E_VALIDATION", "message is required")
		return
	}

	accessToken, err := h.tokens.ResolveAccessToken(r.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, service.ErrDecryption) {
			writeError(w, http.StatusBadRequest, "E_DECRYPTION",
				"Failed to decrypt Google token. Please reconnect your Google account.")
			return
		}
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}

	outcome, err := h.disp.Dispatch(r.Context(), req.Message, accessToken)
	if err != nil {
		var upstream *service.UpstreamError
		if errors.As(err, &upstream) {
			// Raw upstream body goes into details for operators; the
			// top-level message stays generic.
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": map[string]any{
					"code":    "E_UPSTREAM",
					"message": "chat completion failed",
					"details": upstream.Body,
				},
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:         outcome.Message,
		Success:         true,
		ToolResults:     outcome.ToolResults,
		NeedsGoogleAuth: outcome.NeedsAuth,
	})
}
