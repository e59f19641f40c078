package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/service"
)

// CalculateHandler 触发计算
type CalculateHandler struct {
	svc    *service.CalculationService
	logger *zap.Logger
}

func NewCalculateHandler(svc *service.CalculationService, logger *zap.Logger) *CalculateHandler {
	return &CalculateHandler{svc: svc, logger: logger}
}

func (h *CalculateHandler) CostToServe(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CalculateCostToServe(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Result[*service.CalculationResult]{Code: ResultSuccess, Type: "success", Message: res.Message, Result: res})
}

func (h *CalculateHandler) DropSize(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CalculateDropSize(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Result[*service.CalculationResult]{Code: ResultSuccess, Type: "success", Message: res.Message, Result: res})
}

func (h *CalculateHandler) All(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CalculateAll(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Result[*service.CalculateAllResult]{Code: ResultSuccess, Type: "success", Message: res.Message, Result: res})
}
