package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/service"
)

const csvContentType = "text/csv; charset=utf-8"

// ExportHandler CSV 导出
type ExportHandler struct {
	svc    *service.ExportService
	logger *zap.Logger
}

func NewExportHandler(svc *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

// CostResults ?include_order_fields=true 时追加订单字段
func (h *ExportHandler) CostResults(w http.ResponseWriter, r *http.Request) {
	include := parseBool(r.URL.Query().Get("include_order_fields"))
	f, err := h.svc.ExportCostResults(r.Context(), tenantFrom(r), include)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFile(w, csvContentType, f.FileName, f.Data)
}

func (h *ExportHandler) DropSizeResults(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.ExportDropSizeResults(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFile(w, csvContentType, f.FileName, f.Data)
}

func (h *ExportHandler) OrdersAnalytics(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.ExportOrdersAnalytics(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFile(w, csvContentType, f.FileName, f.Data)
}
