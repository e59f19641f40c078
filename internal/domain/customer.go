package domain

import "database/sql"

// Customer 客户维度（对应 customers 表，主键 organization_id + customer_id）
// 导入订单时按需自动创建，自动创建的行描述字段为 NULL
type Customer struct {
	OrganizationID string          `db:"organization_id"`
	CustomerID     string          `db:"customer_id"`
	Segment        sql.NullString  `db:"segment"`          // nullable
	RevenuePerUnit sql.NullFloat64 `db:"revenue_per_unit"` // nullable
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (c *Customer) ToJSON() map[string]any {
	m := map[string]any{
		"organization_id":  c.OrganizationID,
		"customer_id":      c.CustomerID,
		"segment":          nil,
		"revenue_per_unit": nil,
	}
	if c.Segment.Valid {
		m["segment"] = c.Segment.String
	}
	if c.RevenuePerUnit.Valid {
		m["revenue_per_unit"] = c.RevenuePerUnit.Float64
	}
	return m
}
