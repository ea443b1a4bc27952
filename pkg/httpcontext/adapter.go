package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	appLogger "github.com/fastygo/compliance/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 64
)

// Adapter turns a fasthttp.RequestCtx into a stdlib context bounded by the
// request timeout and carrying the log fields of the call.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Timeout reports the per-request deadline.
func (a *Adapter) Timeout() time.Duration {
	return a.timeout
}

// Attach derives the request context. It echoes the request id header and,
// when the auth middleware already ran, tags the context with the caller.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	ctx.Response.Header.Set(RequestIDHeader, reqID)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	fields := []zap.Field{
		zap.String("method", string(ctx.Method())),
		zap.String("path", string(ctx.Path())),
	}
	if remote := ctx.RemoteIP(); remote != nil {
		fields = append(fields, zap.String("remote_ip", remote.String()))
	}
	stdCtx = appLogger.ContextWithFields(stdCtx, fields...)

	if id, ok := IdentityFrom(ctx); ok {
		stdCtx = appLogger.ContextWithUserID(stdCtx, id.UserID)
	}
	return stdCtx, cancel
}

// requestID reuses a well-formed client supplied id, otherwise mints one.
func requestID(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(RequestIDHeader)))
	if header == "" || len(header) > maxRequestIDLen || strings.ContainsAny(header, "\r\n\t ") {
		return uuid.NewString()
	}
	return header
}
