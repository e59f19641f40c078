package service

import (
	"github.com/vikas186/cts-optimizer-backend/internal/calculator"
	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// BuildDropSizeResults 为每个订单生成一行最小盈利数量结果
func BuildDropSizeResults(orders []domain.Order, in *calculator.Inputs) []domain.DropSizeResult {
	out := make([]domain.DropSizeResult, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		b := calculator.DropSize(o, in)
		out = append(out, domain.DropSizeResult{
			OrganizationID:        o.OrganizationID,
			OrderID:               o.OrderID,
			FixedCost:             b.FixedCost,
			UnitVariableCost:      b.UnitVariableCost,
			UnitRevenue:           b.UnitRevenue,
			MinProfitableQuantity: b.MinProfitableQuantity,
		})
	}
	return out
}
