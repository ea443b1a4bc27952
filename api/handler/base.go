package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/api/transport"
	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/httpcontext"
	appLogger "github.com/fastygo/compliance/pkg/logger"
	"github.com/fastygo/compliance/usecase/mutation"
)

const submissionHeader = "X-Submission-ID"

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondList(ctx *fasthttp.RequestCtx, data interface{}, count int) {
	h.respondJSON(ctx, http.StatusOK, transport.NewList(data, count))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	h.respondErrorMeta(ctx, err, nil)
}

func (h baseHandler) respondErrorMeta(ctx *fasthttp.RequestCtx, err error, meta interface{}) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.String("code", code),
			zap.Error(err))
	}
	body := transport.ErrorBody{Message: publicMessage(err, status), Fields: domain.FieldsOf(err)}
	h.respondJSON(ctx, status, transport.NewError(code, body, meta))
}

func (h baseHandler) badRequest(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), transport.ErrorBody{Message: message}, nil))
}

// respondMutation writes a pipeline outcome; the notification travels in meta.
func respondMutation[T any](h baseHandler, ctx *fasthttp.RequestCtx, status int, out mutation.Outcome[T], err error) {
	meta := transport.Meta{Notification: out.Notification, ResetForm: out.ResetForm}
	if err != nil {
		if out.Notification == nil {
			h.respondError(ctx, err)
			return
		}
		h.respondErrorMeta(ctx, err, meta)
		return
	}
	h.respondJSON(ctx, status, transport.NewSuccess(out.Value, meta))
}

// identity returns the caller bound by the auth middleware, answering 401 when absent.
func (h baseHandler) identity(ctx *fasthttp.RequestCtx) (domain.Identity, bool) {
	id, ok := httpcontext.IdentityFrom(ctx)
	if !ok {
		h.respondError(ctx, domain.ErrUnauthorized)
	}
	return id, ok
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dest interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dest); err != nil {
		h.badRequest(ctx, "invalid payload")
		return false
	}
	return true
}

func (h baseHandler) log(stdCtx context.Context) *zap.Logger {
	return appLogger.FromContext(stdCtx, h.logger)
}

func pathID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return strings.TrimSpace(id)
}

func query(ctx *fasthttp.RequestCtx, key string) string {
	return strings.TrimSpace(string(ctx.QueryArgs().Peek(key)))
}

func submissionID(ctx *fasthttp.RequestCtx) string {
	return strings.TrimSpace(string(ctx.Request.Header.Peek(submissionHeader)))
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	switch code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest, string(code)
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, string(code)
	case domain.ErrCodeConflict:
		return http.StatusConflict, string(code)
	case domain.ErrCodeTransport:
		return http.StatusBadGateway, string(code)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// publicMessage hides wrapped causes from clients.
func publicMessage(err error, status int) string {
	var dErr *domain.Error
	switch {
	case errors.As(err, &dErr) && dErr.Message != "":
		return dErr.Message
	case status >= http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}
