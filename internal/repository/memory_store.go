package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// MemoryStore DB 未启用时使用的内存实现（同时实现四个 Repository 接口）
// 模拟主键、外键约束以及 orders 删除时结果的级联删除
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]*memTenant
}

type memTenant struct {
	customers   map[string]domain.Customer
	routes      map[string]domain.Route
	warehouse   []domain.WarehouseCost // 插入顺序
	transport   []domain.TransportCost // 插入顺序
	orders      map[string]domain.Order
	costResults map[string]domain.CostResult
	dropSizes   map[string]domain.DropSizeResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: map[string]*memTenant{}}
}

var (
	_ DimensionRepository  = (*MemoryStore)(nil)
	_ FactRepository       = (*MemoryStore)(nil)
	_ ResultRepository     = (*MemoryStore)(nil)
	_ TenantDataRepository = (*MemoryStore)(nil)
)

// tenant 调用方需持有写锁
func (s *MemoryStore) tenant(orgID string) *memTenant {
	t, ok := s.tenants[orgID]
	if !ok {
		t = &memTenant{
			customers:   map[string]domain.Customer{},
			routes:      map[string]domain.Route{},
			orders:      map[string]domain.Order{},
			costResults: map[string]domain.CostResult{},
			dropSizes:   map[string]domain.DropSizeResult{},
		}
		s.tenants[orgID] = t
	}
	return t
}

// view 只读访问，租户不存在时返回空数据
func (s *MemoryStore) view(orgID string) *memTenant {
	if t, ok := s.tenants[orgID]; ok {
		return t
	}
	return &memTenant{}
}

// ---- dimensions ----

func (s *MemoryStore) EnsureCustomers(_ context.Context, orgID string, customerIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	created := 0
	for _, id := range customerIDs {
		if _, ok := t.customers[id]; ok {
			continue
		}
		t.customers[id] = domain.Customer{OrganizationID: orgID, CustomerID: id}
		created++
	}
	return created, nil
}

func (s *MemoryStore) EnsureRoutes(_ context.Context, orgID string, routeIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	created := 0
	for _, id := range routeIDs {
		if _, ok := t.routes[id]; ok {
			continue
		}
		t.routes[id] = domain.Route{OrganizationID: orgID, RouteID: id}
		created++
	}
	return created, nil
}

func (s *MemoryStore) ListCustomers(_ context.Context, orgID string) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.view(orgID)
	out := make([]domain.Customer, 0, len(t.customers))
	for _, c := range t.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func (s *MemoryStore) GetCustomer(_ context.Context, orgID, customerID string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.view(orgID).customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	return &c, nil
}

func (s *MemoryStore) UpdateCustomer(_ context.Context, c *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.view(c.OrganizationID)
	if _, ok := t.customers[c.CustomerID]; !ok {
		return fmt.Errorf("customer %s: %w", c.CustomerID, ErrNotFound)
	}
	t.customers[c.CustomerID] = *c
	return nil
}

func (s *MemoryStore) ListRoutes(_ context.Context, orgID string) ([]domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.view(orgID)
	out := make([]domain.Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RouteID < out[j].RouteID })
	return out, nil
}

func (s *MemoryStore) GetRoute(_ context.Context, orgID, routeID string) (*domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.view(orgID).routes[routeID]
	if !ok {
		return nil, fmt.Errorf("route %s: %w", routeID, ErrNotFound)
	}
	return &r, nil
}

func (s *MemoryStore) UpdateRoute(_ context.Context, r *domain.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.view(r.OrganizationID)
	if _, ok := t.routes[r.RouteID]; !ok {
		return fmt.Errorf("route %s: %w", r.RouteID, ErrNotFound)
	}
	t.routes[r.RouteID] = *r
	return nil
}

// ---- facts ----

func (s *MemoryStore) DeleteFacts(_ context.Context, orgID string) (domain.FactCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	counts := domain.FactCounts{
		Orders:         len(t.orders),
		TransportCosts: len(t.transport),
		WarehouseCosts: len(t.warehouse),
	}
	t.deleteOrders()
	t.transport = nil
	t.warehouse = nil
	return counts, nil
}

// deleteOrders 同时级联删除结果（与外键 ON DELETE CASCADE 一致）
func (t *memTenant) deleteOrders() {
	t.orders = map[string]domain.Order{}
	t.costResults = map[string]domain.CostResult{}
	t.dropSizes = map[string]domain.DropSizeResult{}
}

func (s *MemoryStore) InsertWarehouseCosts(_ context.Context, orgID string, rows []domain.WarehouseCost) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		rows[i].OrganizationID = orgID
	}
	t.warehouse = append(t.warehouse, rows...)
	return len(rows), nil
}

func (s *MemoryStore) InsertTransportCosts(_ context.Context, orgID string, rows []domain.TransportCost) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	for _, row := range rows {
		if _, ok := t.routes[row.RouteID]; !ok {
			return 0, fmt.Errorf(`insert or update on table "transport_costs" violates foreign key constraint: route %q not present`, row.RouteID)
		}
	}
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		rows[i].OrganizationID = orgID
	}
	t.transport = append(t.transport, rows...)
	return len(rows), nil
}

func (s *MemoryStore) InsertOrders(_ context.Context, orgID string, rows []domain.Order) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	batch := make(map[string]bool, len(rows))
	for _, row := range rows {
		if _, ok := t.orders[row.OrderID]; ok || batch[row.OrderID] {
			return 0, fmt.Errorf(`duplicate key value violates unique constraint "orders_pkey": order_id=%s`, row.OrderID)
		}
		batch[row.OrderID] = true
		if err := t.checkOrderRefs(&row); err != nil {
			return 0, err
		}
	}
	for i := range rows {
		rows[i].OrganizationID = orgID
		t.orders[rows[i].OrderID] = rows[i]
	}
	return len(rows), nil
}

func (s *MemoryStore) ListWarehouseCosts(_ context.Context, orgID string) ([]domain.WarehouseCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.WarehouseCost(nil), s.view(orgID).warehouse...)
	// effective_from DESC NULLS LAST，相同时保持插入顺序
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].EffectiveFrom, out[j].EffectiveFrom
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Time.After(b.Time)
	})
	return out, nil
}

func (s *MemoryStore) GetWarehouseCost(_ context.Context, orgID, id string) (*domain.WarehouseCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.view(orgID).warehouse {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("warehouse cost %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) GetTransportCost(_ context.Context, orgID, id string) (*domain.TransportCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.view(orgID).transport {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("transport cost %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) ListTransportCosts(_ context.Context, orgID string) ([]domain.TransportCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TransportCost(nil), s.view(orgID).transport...), nil
}

func (s *MemoryStore) ListOrders(_ context.Context, orgID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.view(orgID)
	out := make([]domain.Order, 0, len(t.orders))
	for _, o := range t.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].OrderDate, out[j].OrderDate
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && !a.Time.Equal(b.Time) {
			return a.Time.After(b.Time)
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, orgID, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.view(orgID).orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return &o, nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(o.OrganizationID)
	if _, ok := t.orders[o.OrderID]; ok {
		return fmt.Errorf("order %s: %w", o.OrderID, ErrAlreadyExists)
	}
	if err := t.checkOrderRefs(o); err != nil {
		return err
	}
	t.orders[o.OrderID] = *o
	return nil
}

func (s *MemoryStore) UpdateOrder(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.view(o.OrganizationID)
	if _, ok := t.orders[o.OrderID]; !ok {
		return fmt.Errorf("order %s: %w", o.OrderID, ErrNotFound)
	}
	if err := t.checkOrderRefs(o); err != nil {
		return err
	}
	t.orders[o.OrderID] = *o
	return nil
}

func (s *MemoryStore) DeleteOrder(_ context.Context, orgID, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.view(orgID)
	if _, ok := t.orders[orderID]; !ok {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	delete(t.orders, orderID)
	delete(t.costResults, orderID)
	delete(t.dropSizes, orderID)
	return nil
}

// checkOrderRefs 订单引用的客户与线路必须存在
func (t *memTenant) checkOrderRefs(o *domain.Order) error {
	if _, ok := t.customers[o.CustomerID]; !ok {
		return fmt.Errorf(`insert or update on table "orders" violates foreign key constraint: customer %q not present`, o.CustomerID)
	}
	if _, ok := t.routes[o.RouteID]; !ok {
		return fmt.Errorf(`insert or update on table "orders" violates foreign key constraint: route %q not present`, o.RouteID)
	}
	return nil
}

// ---- results ----

func (s *MemoryStore) DeleteCostResults(_ context.Context, orgID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	n := len(t.costResults)
	t.costResults = map[string]domain.CostResult{}
	return n, nil
}

func (s *MemoryStore) InsertCostResults(_ context.Context, orgID string, rows []domain.CostResult) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	if err := t.checkResultKeys("cost_results", len(rows), func(i int) string { return rows[i].OrderID }, func(id string) bool {
		_, ok := t.costResults[id]
		return ok
	}); err != nil {
		return 0, err
	}
	for i := range rows {
		stampResult(&rows[i].ID, &rows[i].CalculatedAt)
		rows[i].OrganizationID = orgID
		t.costResults[rows[i].OrderID] = rows[i]
	}
	return len(rows), nil
}

func (s *MemoryStore) ListCostResults(_ context.Context, orgID string) ([]domain.CostResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.view(orgID)
	out := make([]domain.CostResult, 0, len(t.costResults))
	for _, c := range t.costResults {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (s *MemoryStore) GetCostResult(_ context.Context, orgID, orderID string) (*domain.CostResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.view(orgID).costResults[orderID]
	if !ok {
		return nil, fmt.Errorf("cost result for order %s: %w", orderID, ErrNotFound)
	}
	return &c, nil
}

func (s *MemoryStore) DeleteDropSizeResults(_ context.Context, orgID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	n := len(t.dropSizes)
	t.dropSizes = map[string]domain.DropSizeResult{}
	return n, nil
}

func (s *MemoryStore) InsertDropSizeResults(_ context.Context, orgID string, rows []domain.DropSizeResult) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(orgID)
	if err := t.checkResultKeys("drop_size_results", len(rows), func(i int) string { return rows[i].OrderID }, func(id string) bool {
		_, ok := t.dropSizes[id]
		return ok
	}); err != nil {
		return 0, err
	}
	for i := range rows {
		stampResult(&rows[i].ID, &rows[i].CalculatedAt)
		rows[i].OrganizationID = orgID
		t.dropSizes[rows[i].OrderID] = rows[i]
	}
	return len(rows), nil
}

func (s *MemoryStore) ListDropSizeResults(_ context.Context, orgID string) ([]domain.DropSizeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.view(orgID)
	out := make([]domain.DropSizeResult, 0, len(t.dropSizes))
	for _, d := range t.dropSizes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (s *MemoryStore) GetDropSizeResult(_ context.Context, orgID, orderID string) (*domain.DropSizeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.view(orgID).dropSizes[orderID]
	if !ok {
		return nil, fmt.Errorf("drop size result for order %s: %w", orderID, ErrNotFound)
	}
	return &d, nil
}

// checkResultKeys 结果行的 order_id 必须存在且不能重复
func (t *memTenant) checkResultKeys(table string, n int, orderID func(int) string, exists func(string) bool) error {
	batch := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := orderID(i)
		if exists(id) || batch[id] {
			return fmt.Errorf(`duplicate key value violates unique constraint "%s_organization_id_order_id_key": order_id=%s`, table, id)
		}
		batch[id] = true
		if _, ok := t.orders[id]; !ok {
			return fmt.Errorf(`insert or update on table "%s" violates foreign key constraint: order %q not present`, table, id)
		}
	}
	return nil
}

// ---- tenant data ----

func (s *MemoryStore) DeleteAll(_ context.Context, orgID string) (domain.DeletedCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[orgID]
	if !ok {
		return domain.DeletedCounts{}, nil
	}
	counts := domain.DeletedCounts{
		CostResults:     len(t.costResults),
		DropSizeResults: len(t.dropSizes),
		Orders:          len(t.orders),
		TransportCosts:  len(t.transport),
		WarehouseCosts:  len(t.warehouse),
		Routes:          len(t.routes),
		Customers:       len(t.customers),
	}
	delete(s.tenants, orgID)
	return counts, nil
}
