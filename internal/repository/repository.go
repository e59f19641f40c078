package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

var (
	// ErrNotFound 租户下不存在该记录
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists 主键已存在（手工新建订单时）
	ErrAlreadyExists = errors.New("already exists")
)

// DimensionRepository 维度数据（customers / routes）
// 维度只增不删（除非删除租户全部数据），导入时按需创建
type DimensionRepository interface {
	// EnsureCustomers 保证租户下存在这些客户，已存在的保持不变；返回新建数量
	// 可重复调用，不会产生主键冲突
	EnsureCustomers(ctx context.Context, orgID string, customerIDs []string) (int, error)
	// EnsureRoutes 同 EnsureCustomers，新建线路 distance_km 为 NULL
	EnsureRoutes(ctx context.Context, orgID string, routeIDs []string) (int, error)

	ListCustomers(ctx context.Context, orgID string) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, orgID, customerID string) (*domain.Customer, error)
	// UpdateCustomer 覆盖 segment / revenue_per_unit
	UpdateCustomer(ctx context.Context, c *domain.Customer) error

	ListRoutes(ctx context.Context, orgID string) ([]domain.Route, error)
	GetRoute(ctx context.Context, orgID, routeID string) (*domain.Route, error)
	// UpdateRoute 覆盖 distance_km
	UpdateRoute(ctx context.Context, r *domain.Route) error
}

// FactRepository 事实数据（warehouse_costs / transport_costs / orders）
type FactRepository interface {
	// DeleteFacts 在一个事务内按 orders、transport_costs、warehouse_costs 顺序删除租户数据
	DeleteFacts(ctx context.Context, orgID string) (domain.FactCounts, error)

	// InsertXxx 批量写入一个 sheet 的数据（单独事务，要么全部成功要么全部失败）
	InsertWarehouseCosts(ctx context.Context, orgID string, rows []domain.WarehouseCost) (int, error)
	InsertTransportCosts(ctx context.Context, orgID string, rows []domain.TransportCost) (int, error)
	InsertOrders(ctx context.Context, orgID string, rows []domain.Order) (int, error)

	// ListWarehouseCosts 按 effective_from DESC NULLS LAST、插入顺序排列；第一行为生效费率卡
	ListWarehouseCosts(ctx context.Context, orgID string) ([]domain.WarehouseCost, error)
	GetWarehouseCost(ctx context.Context, orgID, id string) (*domain.WarehouseCost, error)
	// ListTransportCosts 按插入顺序排列
	ListTransportCosts(ctx context.Context, orgID string) ([]domain.TransportCost, error)
	GetTransportCost(ctx context.Context, orgID, id string) (*domain.TransportCost, error)
	// ListOrders 按 order_date DESC（NULL 在后）、order_id 排列
	ListOrders(ctx context.Context, orgID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, orgID, orderID string) (*domain.Order, error)

	// CreateOrder 单条写入；order_id 已存在时返回 ErrAlreadyExists，客户/线路须已存在
	CreateOrder(ctx context.Context, o *domain.Order) error
	// UpdateOrder 覆盖除主键外的全部列
	UpdateOrder(ctx context.Context, o *domain.Order) error
	// DeleteOrder 删除订单，结果表随外键级联删除
	DeleteOrder(ctx context.Context, orgID, orderID string) error
}

// ResultRepository 派生结果（cost_results / drop_size_results）
// 每次计算先 Delete 再 Insert，两步不在同一事务
type ResultRepository interface {
	DeleteCostResults(ctx context.Context, orgID string) (int, error)
	InsertCostResults(ctx context.Context, orgID string, rows []domain.CostResult) (int, error)
	ListCostResults(ctx context.Context, orgID string) ([]domain.CostResult, error)
	GetCostResult(ctx context.Context, orgID, orderID string) (*domain.CostResult, error)

	DeleteDropSizeResults(ctx context.Context, orgID string) (int, error)
	InsertDropSizeResults(ctx context.Context, orgID string, rows []domain.DropSizeResult) (int, error)
	ListDropSizeResults(ctx context.Context, orgID string) ([]domain.DropSizeResult, error)
	GetDropSizeResult(ctx context.Context, orgID, orderID string) (*domain.DropSizeResult, error)
}

// TenantDataRepository 租户数据整体删除
type TenantDataRepository interface {
	// DeleteAll 一个事务内删除结果、事实、维度数据，返回每张表的删除行数
	DeleteAll(ctx context.Context, orgID string) (domain.DeletedCounts, error)
}

func nullDate(v sql.NullTime) any {
	if !v.Valid {
		return nil
	}
	return v.Time.Format(domain.DateLayout)
}
