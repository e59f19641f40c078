package domain

import "database/sql"

// Route 线路维度（对应 routes 表，主键 organization_id + route_id）
type Route struct {
	OrganizationID string          `db:"organization_id"`
	RouteID        string          `db:"route_id"`
	DistanceKm     sql.NullFloat64 `db:"distance_km"` // nullable，自动创建时为 NULL
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (r *Route) ToJSON() map[string]any {
	m := map[string]any{
		"organization_id": r.OrganizationID,
		"route_id":        r.RouteID,
		"distance_km":     nil,
	}
	if r.DistanceKm.Valid {
		m["distance_km"] = r.DistanceKm.Float64
	}
	return m
}
