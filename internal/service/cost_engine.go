package service

import (
	"github.com/vikas186/cts-optimizer-backend/internal/calculator"
	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// BuildCostResults 为每个订单生成一行服务成本结果（id / calculated_at 由写入时填充）
func BuildCostResults(orders []domain.Order, in *calculator.Inputs) []domain.CostResult {
	out := make([]domain.CostResult, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		b := calculator.CostToServe(o, in)
		out = append(out, domain.CostResult{
			OrganizationID: o.OrganizationID,
			OrderID:        o.OrderID,
			TransportCost:  b.TransportCost,
			WarehouseCost:  b.WarehouseCost,
			AdminCost:      b.AdminCost,
			ReturnCost:     b.ReturnCost,
			CostToServe:    b.CostToServe,
			Profit:         b.Profit,
			Profitable:     b.Profitable,
		})
	}
	return out
}
