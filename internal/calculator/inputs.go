// Package calculator 服务成本与最小盈利数量的纯计算（不访问存储）
package calculator

import "github.com/vikas186/cts-optimizer-backend/internal/domain"

// RateCard 本次计算使用的仓储费率（NULL 按 0 处理）
type RateCard struct {
	PickCostPerLine    float64
	PackCost           float64
	PalletHandlingCost float64
}

// RouteRate 某条线路的运输费率与距离（缺失按 0 处理）
type RouteRate struct {
	BaseCost   float64
	CostPerKg  float64
	CostPerKm  float64
	DistanceKm float64
}

// Inputs 一次计算的共享输入
type Inputs struct {
	RateCard   RateCard
	HasRates   bool
	transport  map[string]domain.TransportCost
	distanceKm map[string]float64
}

// NewInputs 构建计算输入
//   - warehouse 需已按 effective_from DESC NULLS LAST 排好序，第一行为生效费率卡；为空时仓储成本全部为 0
//   - transport 按插入顺序给出，同一线路多行时最后一行生效
func NewInputs(warehouse []domain.WarehouseCost, transport []domain.TransportCost, routes []domain.Route) *Inputs {
	in := &Inputs{
		transport:  make(map[string]domain.TransportCost, len(transport)),
		distanceKm: make(map[string]float64, len(routes)),
	}
	if len(warehouse) > 0 {
		w := warehouse[0]
		in.HasRates = true
		in.RateCard = RateCard{
			PickCostPerLine:    w.PickCostPerLine.Float64,
			PackCost:           w.PackCost.Float64,
			PalletHandlingCost: w.PalletHandlingCost.Float64,
		}
	}
	for _, t := range transport {
		in.transport[t.RouteID] = t
	}
	for _, r := range routes {
		if r.DistanceKm.Valid {
			in.distanceKm[r.RouteID] = r.DistanceKm.Float64
		}
	}
	return in
}

// Route 查询线路费率，不存在的部分为 0
func (in *Inputs) Route(routeID string) RouteRate {
	rate := RouteRate{DistanceKm: in.distanceKm[routeID]}
	if t, ok := in.transport[routeID]; ok {
		rate.BaseCost = t.BaseCost.Float64
		rate.CostPerKg = t.CostPerKg.Float64
		rate.CostPerKm = t.CostPerKm.Float64
	}
	return rate
}

// clampedQuantities 订单计量：lines、pallets、weight_kg 不小于 0
type clampedQuantities struct {
	lines    float64
	pallets  float64
	weightKg float64
}

func clamp(o *domain.Order) clampedQuantities {
	return clampedQuantities{
		lines:    nonNegative(float64(o.Lines.Int64)),
		pallets:  nonNegative(float64(o.Pallets.Int64)),
		weightKg: nonNegative(o.WeightKg.Float64),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// warehouseCost = pick*lines + pack*lines + pallet*pallets
func (rc RateCard) warehouseCost(q clampedQuantities) float64 {
	return rc.PickCostPerLine*q.lines + rc.PackCost*q.lines + rc.PalletHandlingCost*q.pallets
}
