package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UploadHandler 工作簿导入、模板下载、租户数据删除
type UploadHandler struct {
	svc      *service.ImportService
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadHandler(svc *service.ImportService, maxBytes int64, logger *zap.Logger) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &UploadHandler{svc: svc, maxBytes: maxBytes, logger: logger}
}

// UploadExcel POST multipart 字段 file
func (h *UploadHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("failed to parse form: %v", err)))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("file not found in request"))
		return
	}
	defer file.Close()

	res, err := h.svc.UploadWorkbook(r.Context(), service.UploadWorkbookRequest{
		OrganizationID: tenantFrom(r),
		FileName:       header.Filename,
		Body:           file,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusOK, Warn("Import completed with errors", res))
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// DeleteAll 删除租户全部数据
func (h *UploadHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.DeleteAllData(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": counts}))
}

// Template 下载导入模板
func (h *UploadHandler) Template(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.TemplateWorkbook()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFile(w, xlsxContentType, "cts-import-template.xlsx", data)
}

// LastImport 最近一次导入摘要
func (h *UploadHandler) LastImport(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.LastImport(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}
