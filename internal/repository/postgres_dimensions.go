package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// PostgresDimensionRepository customers / routes 的 Postgres 实现
type PostgresDimensionRepository struct {
	db *sql.DB
}

// NewPostgresDimensionRepository 创建维度Repository
func NewPostgresDimensionRepository(db *sql.DB) *PostgresDimensionRepository {
	return &PostgresDimensionRepository{db: db}
}

// 确保实现了接口
var _ DimensionRepository = (*PostgresDimensionRepository)(nil)

// EnsureCustomers 批量 find-or-create（ON CONFLICT DO NOTHING）
func (r *PostgresDimensionRepository) EnsureCustomers(ctx context.Context, orgID string, customerIDs []string) (int, error) {
	if len(customerIDs) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO customers (organization_id, customer_id)
		SELECT $1, id FROM unnest($2::text[]) AS id
		ON CONFLICT (organization_id, customer_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, orgID, pq.Array(customerIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to ensure customers: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// EnsureRoutes 批量 find-or-create（ON CONFLICT DO NOTHING）
func (r *PostgresDimensionRepository) EnsureRoutes(ctx context.Context, orgID string, routeIDs []string) (int, error) {
	if len(routeIDs) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO routes (organization_id, route_id)
		SELECT $1, id FROM unnest($2::text[]) AS id
		ON CONFLICT (organization_id, route_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, orgID, pq.Array(routeIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to ensure routes: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *PostgresDimensionRepository) ListCustomers(ctx context.Context, orgID string) ([]domain.Customer, error) {
	query := `
		SELECT organization_id, customer_id, segment, revenue_per_unit
		FROM customers
		WHERE organization_id = $1
		ORDER BY customer_id
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.OrganizationID, &c.CustomerID, &c.Segment, &c.RevenuePerUnit); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return out, nil
}

func (r *PostgresDimensionRepository) GetCustomer(ctx context.Context, orgID, customerID string) (*domain.Customer, error) {
	query := `
		SELECT organization_id, customer_id, segment, revenue_per_unit
		FROM customers
		WHERE organization_id = $1 AND customer_id = $2
	`
	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, orgID, customerID).Scan(&c.OrganizationID, &c.CustomerID, &c.Segment, &c.RevenuePerUnit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (r *PostgresDimensionRepository) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	query := `
		UPDATE customers
		SET segment = $3, revenue_per_unit = $4, updated_at = NOW()
		WHERE organization_id = $1 AND customer_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, c.OrganizationID, c.CustomerID, c.Segment, c.RevenuePerUnit)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("customer %s: %w", c.CustomerID, ErrNotFound)
	}
	return nil
}

func (r *PostgresDimensionRepository) ListRoutes(ctx context.Context, orgID string) ([]domain.Route, error) {
	query := `
		SELECT organization_id, route_id, distance_km
		FROM routes
		WHERE organization_id = $1
		ORDER BY route_id
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	defer rows.Close()

	var out []domain.Route
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.OrganizationID, &rt.RouteID, &rt.DistanceKm); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate routes: %w", err)
	}
	return out, nil
}

func (r *PostgresDimensionRepository) GetRoute(ctx context.Context, orgID, routeID string) (*domain.Route, error) {
	query := `
		SELECT organization_id, route_id, distance_km
		FROM routes
		WHERE organization_id = $1 AND route_id = $2
	`
	var rt domain.Route
	err := r.db.QueryRowContext(ctx, query, orgID, routeID).Scan(&rt.OrganizationID, &rt.RouteID, &rt.DistanceKm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("route %s: %w", routeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &rt, nil
}

func (r *PostgresDimensionRepository) UpdateRoute(ctx context.Context, rt *domain.Route) error {
	query := `
		UPDATE routes
		SET distance_km = $3, updated_at = NOW()
		WHERE organization_id = $1 AND route_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, rt.OrganizationID, rt.RouteID, rt.DistanceKm)
	if err != nil {
		return fmt.Errorf("failed to update route: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("route %s: %w", rt.RouteID, ErrNotFound)
	}
	return nil
}
