package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/ingest"
	"github.com/vikas186/cts-optimizer-backend/internal/repository"
)

// Resolver 保证批次引用的客户、线路在租户下存在
type Resolver struct {
	dims   repository.DimensionRepository
	logger *zap.Logger
}

// NewResolver 创建 Resolver
func NewResolver(dims repository.DimensionRepository, logger *zap.Logger) *Resolver {
	return &Resolver{dims: dims, logger: logger}
}

// ResolveResult 新建的维度行数
type ResolveResult struct {
	CustomersCreated int `json:"customers_created"`
	RoutesCreated    int `json:"routes_created"`
}

// Resolve 对订单引用的 customer_id，以及订单和运输费率引用的 route_id 执行 find-or-create
// 已存在的行不做任何修改；重复调用结果一致
func (r *Resolver) Resolve(ctx context.Context, orgID string, b *ingest.Batch) (ResolveResult, error) {
	var res ResolveResult

	customerIDs := sorted(b.CustomerIDs())
	routeIDs := sorted(b.RouteIDs())

	n, err := r.dims.EnsureCustomers(ctx, orgID, customerIDs)
	if err != nil {
		return res, fmt.Errorf("failed to ensure customers: %w", err)
	}
	res.CustomersCreated = n

	n, err = r.dims.EnsureRoutes(ctx, orgID, routeIDs)
	if err != nil {
		return res, fmt.Errorf("failed to ensure routes: %w", err)
	}
	res.RoutesCreated = n

	r.logger.Debug("Resolved dimensions",
		zap.String("organization_id", orgID),
		zap.Int("customers_referenced", len(customerIDs)),
		zap.Int("customers_created", res.CustomersCreated),
		zap.Int("routes_referenced", len(routeIDs)),
		zap.Int("routes_created", res.RoutesCreated),
	)
	return res, nil
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
