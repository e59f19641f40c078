package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// Batch 一次上传解析出的全部记录（尚未持久化）
type Batch struct {
	OrganizationID string
	WarehouseCosts []domain.WarehouseCost
	TransportCosts []domain.TransportCost
	Orders         []domain.Order
	// Rejected 每个 sheet 被丢弃的行数（只用于日志）
	Rejected domain.SheetCounts
}

// Counts 每个 sheet 映射成功的行数
func (b *Batch) Counts() domain.SheetCounts {
	return domain.SheetCounts{
		WarehouseCosts: len(b.WarehouseCosts),
		TransportCosts: len(b.TransportCosts),
		Orders:         len(b.Orders),
	}
}

// CustomerIDs 订单引用的客户 ID（去重，保持首次出现顺序）
func (b *Batch) CustomerIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, o := range b.Orders {
		if o.CustomerID != "" && !seen[o.CustomerID] {
			seen[o.CustomerID] = true
			ids = append(ids, o.CustomerID)
		}
	}
	return ids
}

// RouteIDs 订单和运输费率引用的线路 ID（去重，保持首次出现顺序）
func (b *Batch) RouteIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, o := range b.Orders {
		add(o.RouteID)
	}
	for _, t := range b.TransportCosts {
		add(t.RouteID)
	}
	return ids
}

// ParseWorkbook 解析上传的工作簿
// 只有内容不是合法工作簿（或读取 sheet 失败）时返回 error；缺少 sheet 按 0 行处理
func ParseWorkbook(r io.Reader, orgID string) (*Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	b := &Batch{OrganizationID: orgID}
	if b.WarehouseCosts, b.Rejected.WarehouseCosts, err = extractSheet(f, domain.SheetWarehouseCosts, orgID, MapWarehouseCost); err != nil {
		return nil, err
	}
	if b.TransportCosts, b.Rejected.TransportCosts, err = extractSheet(f, domain.SheetTransportCosts, orgID, MapTransportCost); err != nil {
		return nil, err
	}
	if b.Orders, b.Rejected.Orders, err = extractSheet(f, domain.SheetOrders, orgID, MapOrder); err != nil {
		return nil, err
	}
	return b, nil
}

// FindSheet 按规范化后的名称查找 sheet，返回实际名称
func FindSheet(f *excelize.File, logical string) (string, bool) {
	for _, name := range f.GetSheetList() {
		if NormalizeHeader(name) == logical {
			return name, true
		}
	}
	return "", false
}

func extractSheet[T any](f *excelize.File, logical, orgID string, mapRow func(Row, string) Outcome[T]) ([]T, int, error) {
	name, ok := FindSheet(f, logical)
	if !ok {
		return nil, 0, nil
	}
	ex, err := NewSheetExtractor(f, name)
	if err != nil {
		return nil, 0, err
	}
	defer ex.Close()

	var (
		records  []T
		rejected int
	)
	for ex.Next() {
		out := mapRow(ex.Row(), orgID)
		if !out.Mapped() {
			rejected++
			continue
		}
		records = append(records, *out.Record)
	}
	if err := ex.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	return records, rejected, nil
}
