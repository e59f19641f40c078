package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// PostgresTenantDataRepository 租户数据整体删除
type PostgresTenantDataRepository struct {
	db *sql.DB
}

func NewPostgresTenantDataRepository(db *sql.DB) *PostgresTenantDataRepository {
	return &PostgresTenantDataRepository{db: db}
}

var _ TenantDataRepository = (*PostgresTenantDataRepository)(nil)

// DeleteAll 删除顺序：结果 -> 事实 -> 维度（被引用的表最后删除）
func (r *PostgresTenantDataRepository) DeleteAll(ctx context.Context, orgID string) (domain.DeletedCounts, error) {
	var counts domain.DeletedCounts
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []struct {
		table string
		n     *int
	}{
		{"cost_results", &counts.CostResults},
		{"drop_size_results", &counts.DropSizeResults},
		{"orders", &counts.Orders},
		{"transport_costs", &counts.TransportCosts},
		{"warehouse_costs", &counts.WarehouseCosts},
		{"routes", &counts.Routes},
		{"customers", &counts.Customers},
	}
	for _, s := range steps {
		n, err := deleteByOrg(ctx, tx, s.table, orgID)
		if err != nil {
			return domain.DeletedCounts{}, err
		}
		*s.n = n
	}
	if err := tx.Commit(); err != nil {
		return domain.DeletedCounts{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return counts, nil
}
