package domain

import (
	"database/sql"
	"time"
)

// CostResult 单订单服务成本结果（对应 cost_results 表）
// 派生数据：每次计算先清空租户全部结果再整体写入
type CostResult struct {
	ID             string    `db:"id"`
	OrganizationID string    `db:"organization_id"`
	OrderID        string    `db:"order_id"`
	TransportCost  float64   `db:"transport_cost"`
	WarehouseCost  float64   `db:"warehouse_cost"`
	AdminCost      float64   `db:"admin_cost"`
	ReturnCost     float64   `db:"return_cost"`
	CostToServe    float64   `db:"cost_to_serve"`
	Profit         float64   `db:"profit"`
	Profitable     bool      `db:"profitable"`
	CalculatedAt   time.Time `db:"calculated_at"`
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (c *CostResult) ToJSON() map[string]any {
	return map[string]any{
		"id":              c.ID,
		"organization_id": c.OrganizationID,
		"order_id":        c.OrderID,
		"transport_cost":  c.TransportCost,
		"warehouse_cost":  c.WarehouseCost,
		"admin_cost":      c.AdminCost,
		"return_cost":     c.ReturnCost,
		"cost_to_serve":   c.CostToServe,
		"profit":          c.Profit,
		"profitable":      c.Profitable,
		"calculated_at":   c.CalculatedAt.Format(time.RFC3339),
	}
}

// DropSizeResult 单订单最小盈利数量（对应 drop_size_results 表）
type DropSizeResult struct {
	ID               string  `db:"id"`
	OrganizationID   string  `db:"organization_id"`
	OrderID          string  `db:"order_id"`
	FixedCost        float64 `db:"fixed_cost"`
	UnitVariableCost float64 `db:"unit_variable_cost"`
	UnitRevenue      float64 `db:"unit_revenue"`
	// MinProfitableQuantity 单位毛利 <= 0 时无解，为 NULL
	MinProfitableQuantity sql.NullFloat64 `db:"min_profitable_quantity"`
	CalculatedAt          time.Time       `db:"calculated_at"`
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (d *DropSizeResult) ToJSON() map[string]any {
	return map[string]any{
		"id":                      d.ID,
		"organization_id":         d.OrganizationID,
		"order_id":                d.OrderID,
		"fixed_cost":              d.FixedCost,
		"unit_variable_cost":      d.UnitVariableCost,
		"unit_revenue":            d.UnitRevenue,
		"min_profitable_quantity": nullFloat(d.MinProfitableQuantity),
		"calculated_at":           d.CalculatedAt.Format(time.RFC3339),
	}
}
