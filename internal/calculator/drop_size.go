package calculator

import (
	"database/sql"
	"math"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// DropSizeBreakdown 单订单最小盈利数量
type DropSizeBreakdown struct {
	FixedCost        float64
	UnitVariableCost float64
	UnitRevenue      float64
	// MinProfitableQuantity 单位毛利 <= 0 或固定成本为负时为 NULL
	MinProfitableQuantity sql.NullFloat64
}

// DropSize 计算单个订单的最小盈利数量
//
//	fixed    = base + per_km * distance
//	variable = warehouse + per_kg * weight
//	margin   = revenue/qty - variable/qty
//
// qty 小于 1（含缺失）按 1 处理；固定成本为负（费率录入错误）时不给出最小数量
func DropSize(o *domain.Order, in *Inputs) DropSizeBreakdown {
	q := clamp(o)
	rate := in.Route(o.RouteID)
	qty := Quantity(o)

	fixed := rate.BaseCost + rate.CostPerKm*rate.DistanceKm
	variable := in.RateCard.warehouseCost(q) + rate.CostPerKg*q.weightKg
	unitVariable := variable / qty
	unitRevenue := o.Revenue.Float64 / qty

	out := DropSizeBreakdown{
		FixedCost:        fixed,
		UnitVariableCost: unitVariable,
		UnitRevenue:      unitRevenue,
	}
	if margin := unitRevenue - unitVariable; margin > 0 && fixed >= 0 {
		if minQty := fixed / margin; !math.IsInf(minQty, 0) && !math.IsNaN(minQty) {
			out.MinProfitableQuantity = sql.NullFloat64{Float64: minQty, Valid: true}
		}
	}
	return out
}

// Quantity 参与单位计算的数量，最小为 1
func Quantity(o *domain.Order) float64 {
	if !o.Quantity.Valid || o.Quantity.Int64 < 1 {
		return 1
	}
	return float64(o.Quantity.Int64)
}
