package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
	"github.com/vikas186/cts-optimizer-backend/internal/repository"
)

// QueryService 租户数据读取、维度属性维护与订单手工维护
type QueryService struct {
	dims    repository.DimensionRepository
	facts   repository.FactRepository
	results repository.ResultRepository
	lock    tenantLock
	logger  *zap.Logger
}

// NewQueryService 创建查询服务
func NewQueryService(d Deps) *QueryService {
	d = d.withDefaults()
	return &QueryService{dims: d.Dimensions, facts: d.Facts, results: d.Results, lock: d.lock(), logger: d.Logger}
}

func (s *QueryService) ListOrders(ctx context.Context, orgID string) ([]domain.Order, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.facts.ListOrders(ctx, orgID)
}

func (s *QueryService) GetOrder(ctx context.Context, orgID, orderID string) (*domain.Order, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.facts.GetOrder(ctx, orgID, orderID)
}

func (s *QueryService) ListCustomers(ctx context.Context, orgID string) ([]domain.Customer, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.dims.ListCustomers(ctx, orgID)
}

func (s *QueryService) GetCustomer(ctx context.Context, orgID, customerID string) (*domain.Customer, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.dims.GetCustomer(ctx, orgID, customerID)
}

func (s *QueryService) ListRoutes(ctx context.Context, orgID string) ([]domain.Route, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.dims.ListRoutes(ctx, orgID)
}

func (s *QueryService) GetRoute(ctx context.Context, orgID, routeID string) (*domain.Route, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.dims.GetRoute(ctx, orgID, routeID)
}

func (s *QueryService) ListWarehouseCosts(ctx context.Context, orgID string) ([]domain.WarehouseCost, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.facts.ListWarehouseCosts(ctx, orgID)
}

func (s *QueryService) GetWarehouseCost(ctx context.Context, orgID, id string) (*domain.WarehouseCost, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.facts.GetWarehouseCost(ctx, orgID, id)
}

func (s *QueryService) ListTransportCosts(ctx context.Context, orgID string) ([]domain.TransportCost, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.facts.ListTransportCosts(ctx, orgID)
}

func (s *QueryService) GetTransportCost(ctx context.Context, orgID, id string) (*domain.TransportCost, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.facts.GetTransportCost(ctx, orgID, id)
}

func (s *QueryService) ListCostResults(ctx context.Context, orgID string) ([]domain.CostResult, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.results.ListCostResults(ctx, orgID)
}

func (s *QueryService) GetCostResult(ctx context.Context, orgID, orderID string) (*domain.CostResult, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.results.GetCostResult(ctx, orgID, orderID)
}

func (s *QueryService) ListDropSizeResults(ctx context.Context, orgID string) ([]domain.DropSizeResult, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.results.ListDropSizeResults(ctx, orgID)
}

func (s *QueryService) GetDropSizeResult(ctx context.Context, orgID, orderID string) (*domain.DropSizeResult, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	return s.results.GetDropSizeResult(ctx, orgID, orderID)
}

// UpdateCustomerRequest 覆盖客户描述属性；字段为 nil 表示置为 NULL
type UpdateCustomerRequest struct {
	OrganizationID string   `json:"-"`
	CustomerID     string   `json:"-"`
	Segment        *string  `json:"segment"`
	RevenuePerUnit *float64 `json:"revenue_per_unit"`
}

// UpdateCustomer 更新客户 segment / revenue_per_unit
func (s *QueryService) UpdateCustomer(ctx context.Context, req UpdateCustomerRequest) (*domain.Customer, error) {
	if req.OrganizationID == "" {
		return nil, ErrTenantRequired
	}
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	c := &domain.Customer{OrganizationID: req.OrganizationID, CustomerID: req.CustomerID}
	if req.Segment != nil {
		if seg := strings.TrimSpace(*req.Segment); seg != "" {
			c.Segment = sql.NullString{String: seg, Valid: true}
		}
	}
	if req.RevenuePerUnit != nil {
		if err := checkAmount("revenue_per_unit", *req.RevenuePerUnit); err != nil {
			return nil, err
		}
		c.RevenuePerUnit = sql.NullFloat64{Float64: *req.RevenuePerUnit, Valid: true}
	}
	if err := s.dims.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Updated customer", zap.String("organization_id", c.OrganizationID), zap.String("customer_id", c.CustomerID))
	return c, nil
}

// UpdateRouteRequest 覆盖线路距离；nil 表示置为 NULL
type UpdateRouteRequest struct {
	OrganizationID string   `json:"-"`
	RouteID        string   `json:"-"`
	DistanceKm     *float64 `json:"distance_km"`
}

// UpdateRoute 更新线路 distance_km
func (s *QueryService) UpdateRoute(ctx context.Context, req UpdateRouteRequest) (*domain.Route, error) {
	if req.OrganizationID == "" {
		return nil, ErrTenantRequired
	}
	if req.RouteID == "" {
		return nil, fmt.Errorf("%w: route_id is required", ErrInvalidInput)
	}
	r := &domain.Route{OrganizationID: req.OrganizationID, RouteID: req.RouteID}
	if req.DistanceKm != nil {
		if err := checkAmount("distance_km", *req.DistanceKm); err != nil {
			return nil, err
		}
		r.DistanceKm = sql.NullFloat64{Float64: *req.DistanceKm, Valid: true}
	}
	if err := s.dims.UpdateRoute(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("Updated route", zap.String("organization_id", r.OrganizationID), zap.String("route_id", r.RouteID))
	return r, nil
}

// checkAmount 数值必须有限且不小于 0
func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidInput, field)
	}
	return nil
}
