package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/service"
)

// DataHandler 租户数据与计算结果的查询，维度属性更新，订单手工维护
type DataHandler struct {
	svc    *service.QueryService
	logger *zap.Logger
}

func NewDataHandler(svc *service.QueryService, logger *zap.Logger) *DataHandler {
	return &DataHandler{svc: svc, logger: logger}
}

// listResult 列表响应：items + total
func listResult(items []map[string]any) map[string]any {
	return map[string]any{"items": items, "total": len(items)}
}

func (h *DataHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items := make([]map[string]any, 0, len(orders))
	for i := range orders {
		items = append(items, orders[i].ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(listResult(items)))
}

func (h *DataHandler) GetOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	o, err := h.svc.GetOrder(r.Context(), tenantFrom(r), orderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(o.ToJSON()))
}

// CreateOrder POST：引用的客户/线路不存在时自动创建
func (h *DataHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.OrderRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OrganizationID = tenantFrom(r)
	o, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(o.ToJSON()))
}

// UpdateOrder PUT：未给出的字段保持原值
func (h *DataHandler) UpdateOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	var req service.OrderRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OrganizationID = tenantFrom(r)
	req.OrderID = orderID
	o, err := h.svc.UpdateOrder(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(o.ToJSON()))
}

func (h *DataHandler) DeleteOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	if err := h.svc.DeleteOrder(r.Context(), tenantFrom(r), orderID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"order_id": orderID, "deleted": true}))
}

func (h *DataHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items := make([]map[string]any, 0, len(customers))
	for i := range customers {
		items = append(items, customers[i].ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(listResult(items)))
}

func (h *DataHandler) GetCustomer(w http.ResponseWriter, r *http.Request, customerID string) {
	c, err := h.svc.GetCustomer(r.Context(), tenantFrom(r), customerID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(c.ToJSON()))
}

// UpdateCustomer PUT：未给出的字段置为 NULL
func (h *DataHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request, customerID string) {
	var req service.UpdateCustomerRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OrganizationID = tenantFrom(r)
	req.CustomerID = customerID
	c, err := h.svc.UpdateCustomer(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(c.ToJSON()))
}

func (h *DataHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.svc.ListRoutes(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items := make([]map[string]any, 0, len(routes))
	for i := range routes {
		items = append(items, routes[i].ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(listResult(items)))
}

func (h *DataHandler) GetRoute(w http.ResponseWriter, r *http.Request, routeID string) {
	rt, err := h.svc.GetRoute(r.Context(), tenantFrom(r), routeID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rt.ToJSON()))
}

func (h *DataHandler) UpdateRoute(w http.ResponseWriter, r *http.Request, routeID string) {
	var req service.UpdateRouteRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OrganizationID = tenantFrom(r)
	req.RouteID = routeID
	rt, err := h.svc.UpdateRoute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rt.ToJSON()))
}

func (h *DataHandler) ListWarehouseCosts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListWarehouseCosts(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items := make([]map[string]any, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(listResult(items)))
}

func (h *DataHandler) GetWarehouseCost(w http.ResponseWriter, r *http.Request, id string) {
	wc, err := h.svc.GetWarehouseCost(r.Context(), tenantFrom(r), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(wc.ToJSON()))
}

func (h *DataHandler) ListTransportCosts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListTransportCosts(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items := make([]map[string]any, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(listResult(items)))
}

func (h *DataHandler) GetTransportCost(w http.ResponseWriter, r *http.Request, id string) {
	tc, err := h.svc.GetTransportCost(r.Context(), tenantFrom(r), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(tc.ToJSON()))
}

func (h *DataHandler) ListCostResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListCostResults(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items := make([]map[string]any, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(listResult(items)))
}

func (h *DataHandler) GetCostResult(w http.ResponseWriter, r *http.Request, orderID string) {
	c, err := h.svc.GetCostResult(r.Context(), tenantFrom(r), orderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(c.ToJSON()))
}

func (h *DataHandler) ListDropSizeResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListDropSizeResults(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items := make([]map[string]any, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(listResult(items)))
}

func (h *DataHandler) GetDropSizeResult(w http.ResponseWriter, r *http.Request, orderID string) {
	d, err := h.svc.GetDropSizeResult(r.Context(), tenantFrom(r), orderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(d.ToJSON()))
}
