package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
	"github.com/vikas186/cts-optimizer-backend/internal/repository"
)

// CSV 列（顺序即输出顺序）
var (
	costResultColumns = []string{
		"order_id", "transport_cost", "warehouse_cost", "admin_cost", "return_cost",
		"cost_to_serve", "profit", "profitable",
	}
	costResultOrderColumns = []string{
		"customer_id", "route_id", "sku", "quantity", "revenue", "weight_kg", "lines", "pallets", "order_date",
	}
	dropSizeColumns = []string{
		"order_id", "fixed_cost", "unit_variable_cost", "unit_revenue", "min_profitable_quantity",
	}
	ordersAnalyticsColumns = []string{
		"order_id", "customer_id", "route_id", "sku", "quantity", "revenue", "weight_kg", "volume_m3",
		"lines", "pallets", "order_date",
		"transport_cost", "warehouse_cost", "cost_to_serve", "profit", "profitable",
		"fixed_cost", "unit_variable_cost", "unit_revenue", "min_profitable_quantity",
	}
)

// ExportFile 导出的文件内容
type ExportFile struct {
	FileName string
	Data     []byte
}

// ExportService CSV 导出
type ExportService struct {
	facts   repository.FactRepository
	results repository.ResultRepository
	logger  *zap.Logger
}

// NewExportService 创建导出服务
func NewExportService(d Deps) *ExportService {
	d = d.withDefaults()
	return &ExportService{facts: d.Facts, results: d.Results, logger: d.Logger}
}

// ExportCostResults 导出服务成本结果；includeOrderFields 时追加订单字段
func (s *ExportService) ExportCostResults(ctx context.Context, orgID string, includeOrderFields bool) (*ExportFile, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	results, err := s.results.ListCostResults(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost results: %w", err)
	}
	header := costResultColumns
	var orders map[string]*domain.Order
	if includeOrderFields {
		header = append(append([]string{}, costResultColumns...), costResultOrderColumns...)
		if orders, err = s.orderIndex(ctx, orgID); err != nil {
			return nil, err
		}
	}

	rows := make([][]string, 0, len(results))
	for i := range results {
		r := &results[i]
		row := []string{
			r.OrderID,
			formatFloat(r.TransportCost),
			formatFloat(r.WarehouseCost),
			formatFloat(r.AdminCost),
			formatFloat(r.ReturnCost),
			formatFloat(r.CostToServe),
			formatFloat(r.Profit),
			strconv.FormatBool(r.Profitable),
		}
		if includeOrderFields {
			o := orders[r.OrderID]
			if o == nil {
				o = &domain.Order{}
			}
			row = append(row,
				o.CustomerID,
				o.RouteID,
				formatNullString(o.SKU),
				formatNullInt(o.Quantity),
				formatNullFloat(o.Revenue),
				formatNullFloat(o.WeightKg),
				formatNullInt(o.Lines),
				formatNullInt(o.Pallets),
				formatNullDate(o.OrderDate),
			)
		}
		rows = append(rows, row)
	}
	return s.file("cost-to-serve-results.csv", header, rows)
}

// ExportDropSizeResults 导出最小盈利数量结果
func (s *ExportService) ExportDropSizeResults(ctx context.Context, orgID string) (*ExportFile, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	results, err := s.results.ListDropSizeResults(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drop size results: %w", err)
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.OrderID,
			formatFloat(r.FixedCost),
			formatFloat(r.UnitVariableCost),
			formatFloat(r.UnitRevenue),
			formatNullFloat(r.MinProfitableQuantity),
		})
	}
	return s.file("drop-size-results.csv", dropSizeColumns, rows)
}

// ExportOrdersAnalytics 订单与两种计算结果合并导出；没有结果的列留空
func (s *ExportService) ExportOrdersAnalytics(ctx context.Context, orgID string) (*ExportFile, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	orders, err := s.facts.ListOrders(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	costs, err := s.results.ListCostResults(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost results: %w", err)
	}
	drops, err := s.results.ListDropSizeResults(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drop size results: %w", err)
	}
	costByOrder := make(map[string]domain.CostResult, len(costs))
	for _, c := range costs {
		costByOrder[c.OrderID] = c
	}
	dropByOrder := make(map[string]domain.DropSizeResult, len(drops))
	for _, d := range drops {
		dropByOrder[d.OrderID] = d
	}

	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		row := []string{
			o.OrderID,
			o.CustomerID,
			o.RouteID,
			formatNullString(o.SKU),
			formatNullInt(o.Quantity),
			formatNullFloat(o.Revenue),
			formatNullFloat(o.WeightKg),
			formatNullFloat(o.VolumeM3),
			formatNullInt(o.Lines),
			formatNullInt(o.Pallets),
			formatNullDate(o.OrderDate),
		}
		if c, ok := costByOrder[o.OrderID]; ok {
			row = append(row,
				formatFloat(c.TransportCost),
				formatFloat(c.WarehouseCost),
				formatFloat(c.CostToServe),
				formatFloat(c.Profit),
				strconv.FormatBool(c.Profitable),
			)
		} else {
			row = append(row, "", "", "", "", "")
		}
		if d, ok := dropByOrder[o.OrderID]; ok {
			row = append(row,
				formatFloat(d.FixedCost),
				formatFloat(d.UnitVariableCost),
				formatFloat(d.UnitRevenue),
				formatNullFloat(d.MinProfitableQuantity),
			)
		} else {
			row = append(row, "", "", "", "")
		}
		rows = append(rows, row)
	}
	return s.file("orders-analytics.csv", ordersAnalyticsColumns, rows)
}

func (s *ExportService) orderIndex(ctx context.Context, orgID string) (map[string]*domain.Order, error) {
	orders, err := s.facts.ListOrders(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	idx := make(map[string]*domain.Order, len(orders))
	for i := range orders {
		idx[orders[i].OrderID] = &orders[i]
	}
	return idx, nil
}

func (s *ExportService) file(name string, header []string, rows [][]string) (*ExportFile, error) {
	data, err := writeCSV(header, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return &ExportFile{FileName: name, Data: data}, nil
}

// writeCSV 以 CRLF 分行；含逗号、引号、换行的字段加引号，引号翻倍
func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatFloat 最短的精确十进制表示，不使用科学计数法
func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func formatNullFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64)
}

func formatNullInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func formatNullString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func formatNullDate(v sql.NullTime) string {
	if !v.Valid {
		return ""
	}
	return v.Time.Format(domain.DateLayout)
}
