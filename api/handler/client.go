package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/api/transport"
	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/httpcontext"
	clientUC "github.com/fastygo/compliance/usecase/client"
)

type ClientHandler struct {
	baseHandler
	uc *clientUC.UseCase
}

func NewClientHandler(uc *clientUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List clients
// @Tags clients
// @Param search query string false "free-text search"
// @Param status query string false "status filter or all"
// @Router /api/v1/clients [get]
func (h *ClientHandler) List(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	clients, err := h.uc.List(stdCtx, owner, clientUC.ListQuery{
		Search: query(ctx, "search"),
		Status: query(ctx, "status"),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, clients, len(clients))
}

// @Summary List active clients for selection
// @Tags clients
// @Router /api/v1/clients/active [get]
func (h *ClientHandler) ListActive(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	clients, err := h.uc.ListActive(stdCtx, owner)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, clients, len(clients))
}

// @Summary Get client
// @Tags clients
// @Router /api/v1/clients/{id} [get]
func (h *ClientHandler) Get(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	client, err := h.uc.Get(stdCtx, owner, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, client)
}

// @Summary Create client
// @Tags clients
// @Param X-Submission-ID header string false "form submission id"
// @Router /api/v1/clients [post]
func (h *ClientHandler) Create(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	var req transport.ClientRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.Create(stdCtx, owner, submissionID(ctx), req.Client())
	respondMutation(h.baseHandler, ctx, http.StatusCreated, out, err)
}

// @Summary Update client
// @Tags clients
// @Router /api/v1/clients/{id} [put]
func (h *ClientHandler) Update(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	var patch domain.ClientPatch
	if !h.decode(ctx, &patch) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.Update(stdCtx, owner, pathID(ctx), patch)
	respondMutation(h.baseHandler, ctx, http.StatusOK, out, err)
}

// @Summary Delete client and its tasks and documents
// @Tags clients
// @Router /api/v1/clients/{id} [delete]
func (h *ClientHandler) Delete(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.Delete(stdCtx, owner, pathID(ctx))
	respondMutation(h.baseHandler, ctx, http.StatusOK, out, err)
}
