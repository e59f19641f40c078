package ingest

import (
	"database/sql"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// 每个字段接受的表头别名（按优先级排列）
// 截断形式来自导出工具对长表头的截断
var (
	AliasPickCost       = []string{"pick_cost", "pick_cost_per_line"}
	AliasPackCost       = []string{"pack_cost"}
	AliasPalletHandling = []string{"pallet_han", "pallet_handling_cost"}
	AliasStorageCost    = []string{"storage_co", "storage_cost_per_day", "storage_cost"}

	AliasTransportRoute = []string{"route_id", "route_id_2"}
	AliasBaseCost       = []string{"base_cost", "min_charg"}
	AliasCostPerKg      = []string{"cost_per_kg", "cost_per_l"}
	AliasCostPerKm      = []string{"cost_per_km"}

	AliasOrderID    = []string{"order_id"}
	AliasCustomerID = []string{"customer_id", "customer"}
	AliasRouteID    = []string{"route_id"}
	AliasSKU        = []string{"sku"}
	AliasQuantity   = []string{"quantity"}
	AliasRevenue    = []string{"revenue"}
	AliasWeightKg   = []string{"weight_kg"}
	AliasVolumeM3   = []string{"volume_m3", "volume_m"}
	AliasLines      = []string{"lines"}
	AliasPallets    = []string{"pallets"}
	AliasOrderDate  = []string{"order_date", "ship_date"}
)

// 拒绝原因
const (
	ReasonNoRates      = "no rate field present"
	ReasonNoRouteID    = "missing route_id"
	ReasonNoOrderID    = "missing order_id"
	ReasonNoCustomerID = "missing customer_id"
)

// Outcome 行映射结果：Record 非空表示映射成功，否则 Reason 说明拒绝原因
// 拒绝不是错误，调用方直接丢弃该行
type Outcome[T any] struct {
	Record *T
	Reason string
}

// Mapped 是否映射成功
func (o Outcome[T]) Mapped() bool {
	return o.Record != nil
}

func mapped[T any](rec *T) Outcome[T] {
	return Outcome[T]{Record: rec}
}

func rejected[T any](reason string) Outcome[T] {
	return Outcome[T]{Reason: reason}
}

// MapWarehouseCost 四个费率字段至少有一个，否则拒绝
// effective_from 不从表格读取，始终为 NULL
func MapWarehouseCost(row Row, orgID string) Outcome[domain.WarehouseCost] {
	pick := row.Float(AliasPickCost...)
	pack := row.Float(AliasPackCost...)
	pallet := row.Float(AliasPalletHandling...)
	storage := row.Float(AliasStorageCost...)
	if !pick.Valid && !pack.Valid && !pallet.Valid && !storage.Valid {
		return rejected[domain.WarehouseCost](ReasonNoRates)
	}
	return mapped(&domain.WarehouseCost{
		OrganizationID:     orgID,
		PickCostPerLine:    pick,
		PackCost:           pack,
		PalletHandlingCost: pallet,
		StorageCostPerDay:  storage,
		EffectiveFrom:      sql.NullTime{},
	})
}

// MapTransportCost route_id 必填
func MapTransportCost(row Row, orgID string) Outcome[domain.TransportCost] {
	routeID := row.String(AliasTransportRoute...)
	if routeID == "" {
		return rejected[domain.TransportCost](ReasonNoRouteID)
	}
	return mapped(&domain.TransportCost{
		OrganizationID: orgID,
		RouteID:        routeID,
		BaseCost:       row.Float(AliasBaseCost...),
		CostPerKg:      row.Float(AliasCostPerKg...),
		CostPerKm:      row.Float(AliasCostPerKm...),
	})
}

// MapOrder order_id、customer_id、route_id 必填
func MapOrder(row Row, orgID string) Outcome[domain.Order] {
	orderID := row.String(AliasOrderID...)
	if orderID == "" {
		return rejected[domain.Order](ReasonNoOrderID)
	}
	customerID := row.String(AliasCustomerID...)
	if customerID == "" {
		return rejected[domain.Order](ReasonNoCustomerID)
	}
	routeID := row.String(AliasRouteID...)
	if routeID == "" {
		return rejected[domain.Order](ReasonNoRouteID)
	}
	return mapped(&domain.Order{
		OrganizationID: orgID,
		OrderID:        orderID,
		CustomerID:     customerID,
		RouteID:        routeID,
		SKU:            row.NullString(AliasSKU...),
		Quantity:       row.Int(AliasQuantity...),
		Revenue:        row.Float(AliasRevenue...),
		WeightKg:       row.Float(AliasWeightKg...),
		VolumeM3:       row.Float(AliasVolumeM3...),
		Lines:          row.Int(AliasLines...),
		Pallets:        row.Int(AliasPallets...),
		OrderDate:      row.Date(AliasOrderDate...),
	})
}
