package domain

import "database/sql"

// TransportCost 线路运输费率（对应 transport_costs 表）
// 同一线路存在多行时，按插入顺序最后一行生效
type TransportCost struct {
	ID             string          `db:"id"`
	OrganizationID string          `db:"organization_id"`
	RouteID        string          `db:"route_id"`
	BaseCost       sql.NullFloat64 `db:"base_cost"`
	CostPerKg      sql.NullFloat64 `db:"cost_per_kg"`
	CostPerKm      sql.NullFloat64 `db:"cost_per_km"`
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (t *TransportCost) ToJSON() map[string]any {
	return map[string]any{
		"id":              t.ID,
		"organization_id": t.OrganizationID,
		"route_id":        t.RouteID,
		"base_cost":       nullFloat(t.BaseCost),
		"cost_per_kg":     nullFloat(t.CostPerKg),
		"cost_per_km":     nullFloat(t.CostPerKm),
	}
}
