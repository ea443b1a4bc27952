package handler

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/api/transport"
	"github.com/fastygo/compliance/pkg/httpcontext"
	documentUC "github.com/fastygo/compliance/usecase/document"
)

type DocumentHandler struct {
	baseHandler
	uc *documentUC.UseCase
}

func NewDocumentHandler(uc *documentUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List documents
// @Tags documents
// @Router /api/v1/documents [get]
func (h *DocumentHandler) List(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	docs, err := h.uc.List(stdCtx, owner, documentUC.ListQuery{
		Search:   query(ctx, "search"),
		ClientID: query(ctx, "client_id"),
		TaskID:   query(ctx, "task_id"),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, docs, len(docs))
}

// @Summary Get document metadata
// @Tags documents
// @Router /api/v1/documents/{id} [get]
func (h *DocumentHandler) Get(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	doc, err := h.uc.Get(stdCtx, owner, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, doc)
}

// @Summary Record metadata for an externally hosted file
// @Tags documents
// @Router /api/v1/documents [post]
func (h *DocumentHandler) Create(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	var req transport.DocumentRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.Create(stdCtx, owner, submissionID(ctx), req.Document())
	respondMutation(h.baseHandler, ctx, http.StatusCreated, out, err)
}

// @Summary Upload a file and record it
// @Tags documents
// @Accept multipart/form-data
// @Router /api/v1/documents/upload [post]
func (h *DocumentHandler) Upload(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		h.badRequest(ctx, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.badRequest(ctx, "file could not be read")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.Upload(stdCtx, owner, submissionID(ctx), documentUC.Upload{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
		ClientID:    transport.OptionalID(formValue(ctx, "client_id")),
		TaskID:      transport.OptionalID(formValue(ctx, "task_id")),
		Description: formValue(ctx, "description"),
	})
	respondMutation(h.baseHandler, ctx, http.StatusCreated, out, err)
}

// @Summary Get a download link
// @Tags documents
// @Router /api/v1/documents/{id}/link [get]
func (h *DocumentHandler) Link(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	link, err := h.uc.Link(stdCtx, owner, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, link)
}

// @Summary Delete document
// @Tags documents
// @Router /api/v1/documents/{id} [delete]
func (h *DocumentHandler) Delete(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.Delete(stdCtx, owner, pathID(ctx))
	respondMutation(h.baseHandler, ctx, http.StatusOK, out, err)
}

func formValue(ctx *fasthttp.RequestCtx, key string) string {
	return strings.TrimSpace(string(ctx.FormValue(key)))
}
