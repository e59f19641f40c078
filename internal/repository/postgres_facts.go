package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// PostgresFactRepository warehouse_costs / transport_costs / orders 的 Postgres 实现
type PostgresFactRepository struct {
	db *sql.DB
}

// NewPostgresFactRepository 创建事实数据Repository
func NewPostgresFactRepository(db *sql.DB) *PostgresFactRepository {
	return &PostgresFactRepository{db: db}
}

// 确保实现了接口
var _ FactRepository = (*PostgresFactRepository)(nil)

var (
	warehouseCostColumns = []string{"id", "organization_id", "pick_cost_per_line", "pack_cost", "pallet_handling_cost", "storage_cost_per_day", "effective_from"}
	transportCostColumns = []string{"id", "organization_id", "route_id", "base_cost", "cost_per_kg", "cost_per_km"}
	orderColumns         = []string{"organization_id", "order_id", "customer_id", "route_id", "sku", "quantity", "revenue", "weight_kg", "volume_m3", "lines", "pallets", "order_date"}
)

// DeleteFacts 删除顺序：orders -> transport_costs -> warehouse_costs
func (r *PostgresFactRepository) DeleteFacts(ctx context.Context, orgID string) (domain.FactCounts, error) {
	var counts domain.FactCounts
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []struct {
		table string
		n     *int
	}{
		{"orders", &counts.Orders},
		{"transport_costs", &counts.TransportCosts},
		{"warehouse_costs", &counts.WarehouseCosts},
	}
	for _, s := range steps {
		n, err := deleteByOrg(ctx, tx, s.table, orgID)
		if err != nil {
			return domain.FactCounts{}, err
		}
		*s.n = n
	}
	if err := tx.Commit(); err != nil {
		return domain.FactCounts{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return counts, nil
}

func (r *PostgresFactRepository) InsertWarehouseCosts(ctx context.Context, orgID string, rows []domain.WarehouseCost) (int, error) {
	values := make([][]any, 0, len(rows))
	for i := range rows {
		w := &rows[i]
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		w.OrganizationID = orgID
		values = append(values, []any{w.ID, orgID, w.PickCostPerLine, w.PackCost, w.PalletHandlingCost, w.StorageCostPerDay, w.EffectiveFrom})
	}
	return copyIn(ctx, r.db, "warehouse_costs", warehouseCostColumns, values)
}

func (r *PostgresFactRepository) InsertTransportCosts(ctx context.Context, orgID string, rows []domain.TransportCost) (int, error) {
	values := make([][]any, 0, len(rows))
	for i := range rows {
		t := &rows[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.OrganizationID = orgID
		values = append(values, []any{t.ID, orgID, t.RouteID, t.BaseCost, t.CostPerKg, t.CostPerKm})
	}
	return copyIn(ctx, r.db, "transport_costs", transportCostColumns, values)
}

func (r *PostgresFactRepository) InsertOrders(ctx context.Context, orgID string, rows []domain.Order) (int, error) {
	values := make([][]any, 0, len(rows))
	for i := range rows {
		o := &rows[i]
		o.OrganizationID = orgID
		values = append(values, []any{
			orgID, o.OrderID, o.CustomerID, o.RouteID, o.SKU, o.Quantity, o.Revenue,
			o.WeightKg, o.VolumeM3, o.Lines, o.Pallets, nullDate(o.OrderDate),
		})
	}
	return copyIn(ctx, r.db, "orders", orderColumns, values)
}

func (r *PostgresFactRepository) ListWarehouseCosts(ctx context.Context, orgID string) ([]domain.WarehouseCost, error) {
	query := `
		SELECT
			id::text,
			organization_id,
			pick_cost_per_line,
			pack_cost,
			pallet_handling_cost,
			storage_cost_per_day,
			effective_from
		FROM warehouse_costs
		WHERE organization_id = $1
		ORDER BY effective_from DESC NULLS LAST, seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouse costs: %w", err)
	}
	defer rows.Close()

	var out []domain.WarehouseCost
	for rows.Next() {
		var w domain.WarehouseCost
		if err := rows.Scan(&w.ID, &w.OrganizationID, &w.PickCostPerLine, &w.PackCost, &w.PalletHandlingCost, &w.StorageCostPerDay, &w.EffectiveFrom); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse cost: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate warehouse costs: %w", err)
	}
	return out, nil
}

func (r *PostgresFactRepository) GetWarehouseCost(ctx context.Context, orgID, id string) (*domain.WarehouseCost, error) {
	// id::text 比较，非法 uuid 按不存在处理
	query := `
		SELECT
			id::text,
			organization_id,
			pick_cost_per_line,
			pack_cost,
			pallet_handling_cost,
			storage_cost_per_day,
			effective_from
		FROM warehouse_costs
		WHERE organization_id = $1 AND id::text = $2
	`
	var w domain.WarehouseCost
	err := r.db.QueryRowContext(ctx, query, orgID, id).
		Scan(&w.ID, &w.OrganizationID, &w.PickCostPerLine, &w.PackCost, &w.PalletHandlingCost, &w.StorageCostPerDay, &w.EffectiveFrom)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("warehouse cost %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get warehouse cost: %w", err)
	}
	return &w, nil
}

func (r *PostgresFactRepository) ListTransportCosts(ctx context.Context, orgID string) ([]domain.TransportCost, error) {
	query := `
		SELECT
			id::text,
			organization_id,
			route_id,
			base_cost,
			cost_per_kg,
			cost_per_km
		FROM transport_costs
		WHERE organization_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transport costs: %w", err)
	}
	defer rows.Close()

	var out []domain.TransportCost
	for rows.Next() {
		var t domain.TransportCost
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.RouteID, &t.BaseCost, &t.CostPerKg, &t.CostPerKm); err != nil {
			return nil, fmt.Errorf("failed to scan transport cost: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transport costs: %w", err)
	}
	return out, nil
}

func (r *PostgresFactRepository) GetTransportCost(ctx context.Context, orgID, id string) (*domain.TransportCost, error) {
	query := `
		SELECT
			id::text,
			organization_id,
			route_id,
			base_cost,
			cost_per_kg,
			cost_per_km
		FROM transport_costs
		WHERE organization_id = $1 AND id::text = $2
	`
	var t domain.TransportCost
	err := r.db.QueryRowContext(ctx, query, orgID, id).
		Scan(&t.ID, &t.OrganizationID, &t.RouteID, &t.BaseCost, &t.CostPerKg, &t.CostPerKm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transport cost %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transport cost: %w", err)
	}
	return &t, nil
}

const selectOrder = `
		SELECT
			organization_id,
			order_id,
			customer_id,
			route_id,
			sku,
			quantity,
			revenue,
			weight_kg,
			volume_m3,
			lines,
			pallets,
			order_date
		FROM orders
`

func scanOrder(s interface{ Scan(...any) error }, o *domain.Order) error {
	return s.Scan(&o.OrganizationID, &o.OrderID, &o.CustomerID, &o.RouteID, &o.SKU, &o.Quantity,
		&o.Revenue, &o.WeightKg, &o.VolumeM3, &o.Lines, &o.Pallets, &o.OrderDate)
}

func (r *PostgresFactRepository) ListOrders(ctx context.Context, orgID string) ([]domain.Order, error) {
	query := selectOrder + `
		WHERE organization_id = $1
		ORDER BY order_date DESC NULLS LAST, order_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return out, nil
}

func (r *PostgresFactRepository) GetOrder(ctx context.Context, orgID, orderID string) (*domain.Order, error) {
	query := selectOrder + `
		WHERE organization_id = $1 AND order_id = $2
	`
	var o domain.Order
	if err := scanOrder(r.db.QueryRowContext(ctx, query, orgID, orderID), &o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// CreateOrder ON CONFLICT DO NOTHING，影响 0 行即主键冲突
func (r *PostgresFactRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (
			organization_id, order_id, customer_id, route_id, sku, quantity, revenue,
			weight_kg, volume_m3, lines, pallets, order_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (organization_id, order_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		o.OrganizationID, o.OrderID, o.CustomerID, o.RouteID, o.SKU, o.Quantity, o.Revenue,
		o.WeightKg, o.VolumeM3, o.Lines, o.Pallets, nullDate(o.OrderDate))
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s: %w", o.OrderID, ErrAlreadyExists)
	}
	return nil
}

func (r *PostgresFactRepository) UpdateOrder(ctx context.Context, o *domain.Order) error {
	query := `
		UPDATE orders
		SET customer_id = $3, route_id = $4, sku = $5, quantity = $6, revenue = $7,
			weight_kg = $8, volume_m3 = $9, lines = $10, pallets = $11, order_date = $12
		WHERE organization_id = $1 AND order_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		o.OrganizationID, o.OrderID, o.CustomerID, o.RouteID, o.SKU, o.Quantity, o.Revenue,
		o.WeightKg, o.VolumeM3, o.Lines, o.Pallets, nullDate(o.OrderDate))
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s: %w", o.OrderID, ErrNotFound)
	}
	return nil
}

func (r *PostgresFactRepository) DeleteOrder(ctx context.Context, orgID, orderID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE organization_id = $1 AND order_id = $2`, orgID, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return nil
}

// deleteByOrg 删除租户在某张表的全部数据，返回删除行数
// table 只来自代码内常量
func deleteByOrg(ctx context.Context, tx *sql.Tx, table, orgID string) (int, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE organization_id = $1", orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted %s: %w", table, err)
	}
	return int(n), nil
}
