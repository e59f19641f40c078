package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/calculator"
	"github.com/vikas186/cts-optimizer-backend/internal/domain"
	"github.com/vikas186/cts-optimizer-backend/internal/events"
	"github.com/vikas186/cts-optimizer-backend/internal/repository"
)

// 计算类型（事件 payload 中的 kind）
const (
	KindCostToServe = "cost_to_serve"
	KindDropSize    = "drop_size"
)

const noOrdersMessage = "No orders to calculate"

// CalculationService 服务成本与最小盈利数量计算
type CalculationService struct {
	dims    repository.DimensionRepository
	facts   repository.FactRepository
	results repository.ResultRepository
	lock    tenantLock
	events  events.Publisher
	logger  *zap.Logger
}

// NewCalculationService 创建计算服务
func NewCalculationService(d Deps) *CalculationService {
	d = d.withDefaults()
	return &CalculationService{
		dims:    d.Dimensions,
		facts:   d.Facts,
		results: d.Results,
		lock:    d.lock(),
		events:  d.Events,
		logger:  d.Logger,
	}
}

// CalculationResult 一次计算的结果
type CalculationResult struct {
	Calculated int    `json:"calculated"`
	Message    string `json:"message"`
}

// CalculateAllResult 依次执行两种计算的结果
type CalculateAllResult struct {
	CostToServe CalculationResult `json:"cost_to_serve"`
	DropSize    CalculationResult `json:"drop_size"`
	Message     string            `json:"message"`
}

// CalculateCostToServe 重新计算租户全部订单的服务成本
// 先清空旧结果；没有订单时返回 calculated=0
func (s *CalculationService) CalculateCostToServe(ctx context.Context, orgID string) (*CalculationResult, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	var res *CalculationResult
	err := s.lock.run(ctx, orgID, func() error {
		var err error
		res, err = s.costToServe(ctx, orgID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishCalculated(ctx, orgID, KindCostToServe, res)
	return res, nil
}

// CalculateDropSize 重新计算租户全部订单的最小盈利数量
func (s *CalculationService) CalculateDropSize(ctx context.Context, orgID string) (*CalculationResult, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	var res *CalculationResult
	err := s.lock.run(ctx, orgID, func() error {
		var err error
		res, err = s.dropSize(ctx, orgID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishCalculated(ctx, orgID, KindDropSize, res)
	return res, nil
}

// CalculateAll 先算服务成本再算最小盈利数量，持有同一把租户锁
func (s *CalculationService) CalculateAll(ctx context.Context, orgID string) (*CalculateAllResult, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	var cts, drop *CalculationResult
	err := s.lock.run(ctx, orgID, func() error {
		var err error
		if cts, err = s.costToServe(ctx, orgID); err != nil {
			return err
		}
		drop, err = s.dropSize(ctx, orgID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishCalculated(ctx, orgID, KindCostToServe, cts)
	s.publishCalculated(ctx, orgID, KindDropSize, drop)
	return &CalculateAllResult{
		CostToServe: *cts,
		DropSize:    *drop,
		Message:     "Cost-to-serve and drop-size calculations completed.",
	}, nil
}

func (s *CalculationService) costToServe(ctx context.Context, orgID string) (*CalculationResult, error) {
	orders, in, err := s.loadInputs(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if _, err := s.results.DeleteCostResults(ctx, orgID); err != nil {
		return nil, fmt.Errorf("failed to clear cost results: %w", err)
	}
	if len(orders) == 0 {
		return &CalculationResult{Calculated: 0, Message: noOrdersMessage}, nil
	}
	n, err := s.results.InsertCostResults(ctx, orgID, BuildCostResults(orders, in))
	if err != nil {
		return nil, fmt.Errorf("failed to save cost results: %w", err)
	}
	s.logger.Info("Calculated cost-to-serve",
		zap.String("organization_id", orgID),
		zap.Int("orders", n),
		zap.Bool("has_warehouse_rates", in.HasRates),
	)
	return &CalculationResult{Calculated: n, Message: fmt.Sprintf("Cost-to-serve calculated for %d orders.", n)}, nil
}

func (s *CalculationService) dropSize(ctx context.Context, orgID string) (*CalculationResult, error) {
	orders, in, err := s.loadInputs(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if _, err := s.results.DeleteDropSizeResults(ctx, orgID); err != nil {
		return nil, fmt.Errorf("failed to clear drop size results: %w", err)
	}
	if len(orders) == 0 {
		return &CalculationResult{Calculated: 0, Message: noOrdersMessage}, nil
	}
	n, err := s.results.InsertDropSizeResults(ctx, orgID, BuildDropSizeResults(orders, in))
	if err != nil {
		return nil, fmt.Errorf("failed to save drop size results: %w", err)
	}
	s.logger.Info("Calculated drop size",
		zap.String("organization_id", orgID),
		zap.Int("orders", n),
	)
	return &CalculationResult{Calculated: n, Message: fmt.Sprintf("Drop-size recommendations calculated for %d orders.", n)}, nil
}

// loadInputs 读取订单与费率，构建计算输入
func (s *CalculationService) loadInputs(ctx context.Context, orgID string) ([]domain.Order, *calculator.Inputs, error) {
	orders, err := s.facts.ListOrders(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load orders: %w", err)
	}
	warehouse, err := s.facts.ListWarehouseCosts(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load warehouse costs: %w", err)
	}
	transport, err := s.facts.ListTransportCosts(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transport costs: %w", err)
	}
	routes, err := s.dims.ListRoutes(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load routes: %w", err)
	}
	return orders, calculator.NewInputs(warehouse, transport, routes), nil
}

func (s *CalculationService) publishCalculated(ctx context.Context, orgID, kind string, res *CalculationResult) {
	publishEvent(ctx, s.events, s.logger, events.New(events.TypeCalculationCompleted, orgID, map[string]any{
		"kind":       kind,
		"calculated": res.Calculated,
	}))
}
