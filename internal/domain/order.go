package domain

import "database/sql"

// Order 订单（对应 orders 表，主键 organization_id + order_id）
// customer_id / route_id 必须在持久化前已存在于对应维度表
type Order struct {
	OrganizationID string          `db:"organization_id"`
	OrderID        string          `db:"order_id"`
	CustomerID     string          `db:"customer_id"`
	RouteID        string          `db:"route_id"`
	SKU            sql.NullString  `db:"sku"`
	Quantity       sql.NullInt64   `db:"quantity"`
	Revenue        sql.NullFloat64 `db:"revenue"`
	WeightKg       sql.NullFloat64 `db:"weight_kg"`
	VolumeM3       sql.NullFloat64 `db:"volume_m3"`
	Lines          sql.NullInt64   `db:"lines"`
	Pallets        sql.NullInt64   `db:"pallets"`
	OrderDate      sql.NullTime    `db:"order_date"` // DATE
}

// DateLayout order_date 的输出格式
const DateLayout = "2006-01-02"

// ToJSON 转换为JSON格式（用于HTTP响应）
func (o *Order) ToJSON() map[string]any {
	m := map[string]any{
		"organization_id": o.OrganizationID,
		"order_id":        o.OrderID,
		"customer_id":     o.CustomerID,
		"route_id":        o.RouteID,
		"sku":             nullString(o.SKU),
		"quantity":        nullInt(o.Quantity),
		"revenue":         nullFloat(o.Revenue),
		"weight_kg":       nullFloat(o.WeightKg),
		"volume_m3":       nullFloat(o.VolumeM3),
		"lines":           nullInt(o.Lines),
		"pallets":         nullInt(o.Pallets),
		"order_date":      nil,
	}
	if o.OrderDate.Valid {
		m["order_date"] = o.OrderDate.Time.Format(DateLayout)
	}
	return m
}
