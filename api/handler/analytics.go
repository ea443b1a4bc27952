package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/pkg/httpcontext"
	analyticsUC "github.com/fastygo/compliance/usecase/analytics"
)

type AnalyticsHandler struct {
	baseHandler
	uc *analyticsUC.UseCase
}

func NewAnalyticsHandler(uc *analyticsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Dashboard or analytics summary
// @Tags analytics
// @Param view query string false "dashboard (default) or analytics"
// @Router /api/v1/analytics [get]
func (h *AnalyticsHandler) Summary(ctx *fasthttp.RequestCtx) {
	owner, ok := h.identity(ctx)
	if !ok {
		return
	}

	view := analyticsUC.Variant(query(ctx, "view"))
	if view == "" {
		view = analyticsUC.VariantDashboard
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.uc.Summary(stdCtx, owner, view)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, summary)
}
