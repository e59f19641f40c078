package calculator

import "github.com/vikas186/cts-optimizer-backend/internal/domain"

// CostBreakdown 单订单服务成本
type CostBreakdown struct {
	TransportCost float64
	WarehouseCost float64
	AdminCost     float64
	ReturnCost    float64
	CostToServe   float64
	Profit        float64
	Profitable    bool
}

// CostToServe 计算单个订单的服务成本
// admin / return 目前固定为 0；利润为 0 不算盈利
func CostToServe(o *domain.Order, in *Inputs) CostBreakdown {
	q := clamp(o)
	rate := in.Route(o.RouteID)

	warehouse := in.RateCard.warehouseCost(q)
	transport := rate.BaseCost + rate.CostPerKg*q.weightKg + rate.CostPerKm*rate.DistanceKm
	var admin, ret float64
	cts := warehouse + transport + admin + ret
	profit := o.Revenue.Float64 - cts

	return CostBreakdown{
		TransportCost: transport,
		WarehouseCost: warehouse,
		AdminCost:     admin,
		ReturnCost:    ret,
		CostToServe:   cts,
		Profit:        profit,
		Profitable:    profit > 0,
	}
}
