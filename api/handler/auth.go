package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/api/transport"
	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/httpcontext"
	authUC "github.com/fastygo/compliance/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

type sessionView struct {
	SessionID   string          `json:"session_id"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        domain.Identity `json:"user"`
}

func newSessionView(s *domain.Session) sessionView {
	return sessionView{
		SessionID:   s.ID,
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
		User:        s.Identity,
	}
}

// @Summary Sign in with email and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.Login(stdCtx, authUC.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, newSessionView(session))
}

// @Summary Refresh an existing session
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	sessionID, ok := h.sessionID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.Refresh(stdCtx, sessionID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, newSessionView(session))
}

// @Summary Sign out and drop the session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	sessionID, ok := h.sessionID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, sessionID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"signed_out": true})
}

// sessionID reads the session from the header, falling back to the JSON body.
func (h *AuthHandler) sessionID(ctx *fasthttp.RequestCtx) (string, bool) {
	if id := string(ctx.Request.Header.Peek("X-Session-ID")); id != "" {
		return id, true
	}
	var req transport.SessionRequest
	if len(ctx.PostBody()) > 0 && !h.decode(ctx, &req) {
		return "", false
	}
	if req.SessionID == "" {
		h.badRequest(ctx, "missing session id")
		return "", false
	}
	return req.SessionID, true
}
