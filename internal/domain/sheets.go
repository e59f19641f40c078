package domain

// 工作簿中固定的三个逻辑 sheet（按规范化后的名称匹配）
const (
	SheetWarehouseCosts = "warehouse_costs"
	SheetTransportCosts = "transport_costs"
	SheetOrders         = "orders"
)

// SheetCounts 每个 sheet 的行数
type SheetCounts struct {
	WarehouseCosts int `json:"warehouse_costs"`
	TransportCosts int `json:"transport_costs"`
	Orders         int `json:"orders"`
}

// FactCounts 删除的事实数据行数
type FactCounts struct {
	Orders         int `json:"orders"`
	TransportCosts int `json:"transport_costs"`
	WarehouseCosts int `json:"warehouse_costs"`
}

// DeletedCounts 删除租户全部数据时每个实体的删除行数
type DeletedCounts struct {
	CostResults     int `json:"cost_results"`
	DropSizeResults int `json:"drop_size_results"`
	Orders          int `json:"orders"`
	TransportCosts  int `json:"transport_costs"`
	WarehouseCosts  int `json:"warehouse_costs"`
	Routes          int `json:"routes"`
	Customers       int `json:"customers"`
}
