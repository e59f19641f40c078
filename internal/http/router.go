package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	auth   *TenantAuth
	logger *zap.Logger
}

func NewRouter(auth *TenantAuth, logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		auth:   auth,
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// methods 按请求方法分发，未注册的方法返回 405
type methods map[string]http.HandlerFunc

func (m methods) serve(w http.ResponseWriter, req *http.Request) {
	h, ok := m[req.Method]
	if !ok {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h(w, req)
}

// tenant 注册需要租户身份的路由
func (r *Router) tenant(pattern string, m methods) {
	r.Handle(pattern, r.auth.Require(m.serve))
}

// tenantByID 注册 prefix/{id} 形式的路由；id 为空或多级路径时返回 404
func (r *Router) tenantByID(prefix string, m map[string]func(http.ResponseWriter, *http.Request, string)) {
	r.Handle(prefix, r.auth.Require(func(w http.ResponseWriter, req *http.Request) {
		h, ok := m[req.Method]
		if !ok {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := pathID(req.URL.Path, prefix)
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, req, id)
	}))
}

// RegisterHealthRoutes 存活检查（不需要租户身份）
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
}

func (r *Router) RegisterUploadRoutes(h *UploadHandler) {
	r.tenant(apiPrefix+"/upload/excel", methods{
		http.MethodPost:   h.UploadExcel,
		http.MethodDelete: h.DeleteAll,
	})
	r.tenant(apiPrefix+"/upload/template", methods{http.MethodGet: h.Template})
	r.tenant(apiPrefix+"/upload/last", methods{http.MethodGet: h.LastImport})
}

func (r *Router) RegisterCalculateRoutes(h *CalculateHandler) {
	r.tenant(apiPrefix+"/calculate/cost-to-serve", methods{http.MethodPost: h.CostToServe})
	r.tenant(apiPrefix+"/calculate/drop-size", methods{http.MethodPost: h.DropSize})
	r.tenant(apiPrefix+"/calculate/all", methods{http.MethodPost: h.All})
}

func (r *Router) RegisterDataRoutes(h *DataHandler) {
	r.tenant(apiPrefix+"/orders", methods{
		http.MethodGet:  h.ListOrders,
		http.MethodPost: h.CreateOrder,
	})
	r.tenantByID(apiPrefix+"/orders/", map[string]func(http.ResponseWriter, *http.Request, string){
		http.MethodGet:    h.GetOrder,
		http.MethodPut:    h.UpdateOrder,
		http.MethodDelete: h.DeleteOrder,
	})

	r.tenant(apiPrefix+"/customers", methods{http.MethodGet: h.ListCustomers})
	r.tenantByID(apiPrefix+"/customers/", map[string]func(http.ResponseWriter, *http.Request, string){
		http.MethodGet: h.GetCustomer,
		http.MethodPut: h.UpdateCustomer,
	})

	r.tenant(apiPrefix+"/routes", methods{http.MethodGet: h.ListRoutes})
	r.tenantByID(apiPrefix+"/routes/", map[string]func(http.ResponseWriter, *http.Request, string){
		http.MethodGet: h.GetRoute,
		http.MethodPut: h.UpdateRoute,
	})

	r.tenant(apiPrefix+"/warehouse-costs", methods{http.MethodGet: h.ListWarehouseCosts})
	r.tenantByID(apiPrefix+"/warehouse-costs/", map[string]func(http.ResponseWriter, *http.Request, string){
		http.MethodGet: h.GetWarehouseCost,
	})
	r.tenant(apiPrefix+"/transport-costs", methods{http.MethodGet: h.ListTransportCosts})
	r.tenantByID(apiPrefix+"/transport-costs/", map[string]func(http.ResponseWriter, *http.Request, string){
		http.MethodGet: h.GetTransportCost,
	})

	r.tenant(apiPrefix+"/cost-results", methods{http.MethodGet: h.ListCostResults})
	r.tenantByID(apiPrefix+"/cost-results/", map[string]func(http.ResponseWriter, *http.Request, string){
		http.MethodGet: h.GetCostResult,
	})
	r.tenant(apiPrefix+"/drop-size-results", methods{http.MethodGet: h.ListDropSizeResults})
	r.tenantByID(apiPrefix+"/drop-size-results/", map[string]func(http.ResponseWriter, *http.Request, string){
		http.MethodGet: h.GetDropSizeResult,
	})
}

func (r *Router) RegisterExportRoutes(h *ExportHandler) {
	r.tenant(apiPrefix+"/export/cost-results", methods{http.MethodGet: h.CostResults})
	r.tenant(apiPrefix+"/export/drop-size-results", methods{http.MethodGet: h.DropSizeResults})
	r.tenant(apiPrefix+"/export/orders-analytics", methods{http.MethodGet: h.OrdersAnalytics})
}
