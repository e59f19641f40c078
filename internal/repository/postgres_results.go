package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// PostgresResultRepository cost_results / drop_size_results 的 Postgres 实现
type PostgresResultRepository struct {
	db *sql.DB
}

// NewPostgresResultRepository 创建结果Repository
func NewPostgresResultRepository(db *sql.DB) *PostgresResultRepository {
	return &PostgresResultRepository{db: db}
}

// 确保实现了接口
var _ ResultRepository = (*PostgresResultRepository)(nil)

var (
	costResultColumns     = []string{"id", "organization_id", "order_id", "transport_cost", "warehouse_cost", "admin_cost", "return_cost", "cost_to_serve", "profit", "profitable", "calculated_at"}
	dropSizeResultColumns = []string{"id", "organization_id", "order_id", "fixed_cost", "unit_variable_cost", "unit_revenue", "min_profitable_quantity", "calculated_at"}
)

func (r *PostgresResultRepository) DeleteCostResults(ctx context.Context, orgID string) (int, error) {
	return r.deleteResults(ctx, "cost_results", orgID)
}

func (r *PostgresResultRepository) InsertCostResults(ctx context.Context, orgID string, rows []domain.CostResult) (int, error) {
	values := make([][]any, 0, len(rows))
	for i := range rows {
		c := &rows[i]
		stampResult(&c.ID, &c.CalculatedAt)
		c.OrganizationID = orgID
		values = append(values, []any{c.ID, orgID, c.OrderID, c.TransportCost, c.WarehouseCost, c.AdminCost, c.ReturnCost, c.CostToServe, c.Profit, c.Profitable, c.CalculatedAt})
	}
	return copyIn(ctx, r.db, "cost_results", costResultColumns, values)
}

const selectCostResult = `
		SELECT
			id::text,
			organization_id,
			order_id,
			transport_cost,
			warehouse_cost,
			admin_cost,
			return_cost,
			cost_to_serve,
			profit,
			profitable,
			calculated_at
		FROM cost_results
`

func scanCostResult(s interface{ Scan(...any) error }, c *domain.CostResult) error {
	return s.Scan(&c.ID, &c.OrganizationID, &c.OrderID, &c.TransportCost, &c.WarehouseCost, &c.AdminCost,
		&c.ReturnCost, &c.CostToServe, &c.Profit, &c.Profitable, &c.CalculatedAt)
}

func (r *PostgresResultRepository) ListCostResults(ctx context.Context, orgID string) ([]domain.CostResult, error) {
	rows, err := r.db.QueryContext(ctx, selectCostResult+`
		WHERE organization_id = $1
		ORDER BY order_id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost results: %w", err)
	}
	defer rows.Close()

	var out []domain.CostResult
	for rows.Next() {
		var c domain.CostResult
		if err := scanCostResult(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan cost result: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cost results: %w", err)
	}
	return out, nil
}

func (r *PostgresResultRepository) GetCostResult(ctx context.Context, orgID, orderID string) (*domain.CostResult, error) {
	var c domain.CostResult
	row := r.db.QueryRowContext(ctx, selectCostResult+`
		WHERE organization_id = $1 AND order_id = $2
	`, orgID, orderID)
	if err := scanCostResult(row, &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cost result for order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cost result: %w", err)
	}
	return &c, nil
}

func (r *PostgresResultRepository) DeleteDropSizeResults(ctx context.Context, orgID string) (int, error) {
	return r.deleteResults(ctx, "drop_size_results", orgID)
}

func (r *PostgresResultRepository) InsertDropSizeResults(ctx context.Context, orgID string, rows []domain.DropSizeResult) (int, error) {
	values := make([][]any, 0, len(rows))
	for i := range rows {
		d := &rows[i]
		stampResult(&d.ID, &d.CalculatedAt)
		d.OrganizationID = orgID
		values = append(values, []any{d.ID, orgID, d.OrderID, d.FixedCost, d.UnitVariableCost, d.UnitRevenue, d.MinProfitableQuantity, d.CalculatedAt})
	}
	return copyIn(ctx, r.db, "drop_size_results", dropSizeResultColumns, values)
}

const selectDropSizeResult = `
		SELECT
			id::text,
			organization_id,
			order_id,
			fixed_cost,
			unit_variable_cost,
			unit_revenue,
			min_profitable_quantity,
			calculated_at
		FROM drop_size_results
`

func scanDropSizeResult(s interface{ Scan(...any) error }, d *domain.DropSizeResult) error {
	return s.Scan(&d.ID, &d.OrganizationID, &d.OrderID, &d.FixedCost, &d.UnitVariableCost, &d.UnitRevenue,
		&d.MinProfitableQuantity, &d.CalculatedAt)
}

func (r *PostgresResultRepository) ListDropSizeResults(ctx context.Context, orgID string) ([]domain.DropSizeResult, error) {
	rows, err := r.db.QueryContext(ctx, selectDropSizeResult+`
		WHERE organization_id = $1
		ORDER BY order_id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drop size results: %w", err)
	}
	defer rows.Close()

	var out []domain.DropSizeResult
	for rows.Next() {
		var d domain.DropSizeResult
		if err := scanDropSizeResult(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan drop size result: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drop size results: %w", err)
	}
	return out, nil
}

func (r *PostgresResultRepository) GetDropSizeResult(ctx context.Context, orgID, orderID string) (*domain.DropSizeResult, error) {
	var d domain.DropSizeResult
	row := r.db.QueryRowContext(ctx, selectDropSizeResult+`
		WHERE organization_id = $1 AND order_id = $2
	`, orgID, orderID)
	if err := scanDropSizeResult(row, &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("drop size result for order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get drop size result: %w", err)
	}
	return &d, nil
}

func (r *PostgresResultRepository) deleteResults(ctx context.Context, table, orgID string) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE organization_id = $1", orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func stampResult(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if at.IsZero() {
		*at = time.Now().UTC()
	}
}
