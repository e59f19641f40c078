package domain

import "database/sql"

// WarehouseCost 仓储费率卡（对应 warehouse_costs 表）
// 事实数据：每次导入整体替换
type WarehouseCost struct {
	ID                 string          `db:"id"`
	OrganizationID     string          `db:"organization_id"`
	PickCostPerLine    sql.NullFloat64 `db:"pick_cost_per_line"`
	PackCost           sql.NullFloat64 `db:"pack_cost"`
	PalletHandlingCost sql.NullFloat64 `db:"pallet_handling_cost"`
	StorageCostPerDay  sql.NullFloat64 `db:"storage_cost_per_day"`
	// EffectiveFrom 上传数据不填充，始终为 NULL
	EffectiveFrom sql.NullTime `db:"effective_from"`
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (w *WarehouseCost) ToJSON() map[string]any {
	m := map[string]any{
		"id":                   w.ID,
		"organization_id":      w.OrganizationID,
		"pick_cost_per_line":   nullFloat(w.PickCostPerLine),
		"pack_cost":            nullFloat(w.PackCost),
		"pallet_handling_cost": nullFloat(w.PalletHandlingCost),
		"storage_cost_per_day": nullFloat(w.StorageCostPerDay),
		"effective_from":       nil,
	}
	if w.EffectiveFrom.Valid {
		m["effective_from"] = w.EffectiveFrom.Time.Format("2006-01-02 15:04:05")
	}
	return m
}

func nullFloat(v sql.NullFloat64) any {
	if v.Valid {
		return v.Float64
	}
	return nil
}

func nullInt(v sql.NullInt64) any {
	if v.Valid {
		return v.Int64
	}
	return nil
}

func nullString(v sql.NullString) any {
	if v.Valid {
		return v.String
	}
	return nil
}
