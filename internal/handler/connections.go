package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/planora/agent-gateway/internal/middleware"
	"github.com/planora/agent-gateway/internal/model"
	"github.com/planora/agent-gateway/internal/secretbox"
	"github.com/planora/agent-gateway/internal/service"
	"golang.org/x/oauth2"
)

const providerGoogle = "google"

// ConnectionHandler manages the user's linked Google account: the stored
// bundle is sealed before it touches the database and plaintext token values
// are never echoed back.
type ConnectionHandler struct {
	creds *service.CredentialService
	box   *secretbox.Box
	oauth *oauth2.Config
	cache *service.TokenCache
}

func NewConnectionHandler(creds *service.CredentialService, box *secretbox.Box, oauth *oauth2.Config, cache *service.TokenCache) *ConnectionHandler {
	return &ConnectionHandler{creds: creds, box: box, oauth: oauth, cache: cache}
}

// GET /v1/connections
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	connections, err := h.creds.List(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": connections})
}

// POST /v1/connections/google
//
// Accepts either an OAuth authorization code (exchanged server-side) or an
// explicit token bundle from a client that ran the consent flow itself.
// Either way the bundle must carry a refresh token, or every later request
// would dead-end on an expired access token.
func (h *ConnectionHandler) ConnectGoogle(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req struct {
		Code         string    `json:"code"`
		AccessToken  string    `json:"access_token"`
		RefreshToken string    `json:"refresh_token"`
		TokenType    string    `json:"token_type"`
		Expiry       time.Time `json:"expiry"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}

	var bundle model.TokenBundle
	switch {
	case req.Code != "":
		token, err := h.oauth.Exchange(r.Context(), req.Code)
		if err != nil {
			writeError(w, http.StatusBadRequest, "E_OAUTH_EXCHANGE", "authorization code exchange failed")
			return
		}
		bundle = model.TokenBundle{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenType:    token.TokenType,
			Expiry:       token.Expiry,
		}
	case req.RefreshToken != "":
		bundle = model.TokenBundle{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
			TokenType:    req.TokenType,
			Expiry:       req.Expiry,
		}
	default:
		writeError(w, http.StatusBadRequest, "E_VALIDATION", "code or refresh_token is required")
		return
	}
	if bundle.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "E_VALIDATION", "provider returned no refresh token; re-run consent with offline access")
		return
	}

	plaintext, err := json.Marshal(bundle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", "encode token bundle")
		return
	}
	sealed, err := h.box.Seal(plaintext)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", "seal token bundle")
		return
	}
	if err := h.creds.Save(r.Context(), user.UserID, providerGoogle, sealed); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	h.cache.Invalidate(r.Context(), user.UserID, providerGoogle)

	writeJSON(w, http.StatusCreated, map[string]string{"provider": providerGoogle, "status": "connected"})
}

// DELETE /v1/connections/google
func (h *ConnectionHandler) DisconnectGoogle(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if err := h.creds.Delete(r.Context(), user.UserID, providerGoogle); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	h.cache.Invalidate(r.Context(), user.UserID, providerGoogle)
	w.WriteHeader(http.StatusNoContent)
}
