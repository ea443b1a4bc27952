package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/api/transport"
	"github.com/fastygo/compliance/pkg/httpcontext"
	contactUC "github.com/fastygo/compliance/usecase/contact"
)

type ContactHandler struct {
	baseHandler
	uc *contactUC.UseCase
}

func NewContactHandler(uc *contactUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Submit the contact form
// @Tags contact
// @Router /api/v1/contact [post]
func (h *ContactHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req contactUC.Request
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	note, err := h.uc.Submit(stdCtx, req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusAccepted, transport.NewSuccess(nil, transport.Meta{Notification: &note, ResetForm: true}))
}
