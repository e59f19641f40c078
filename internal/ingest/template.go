package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// SheetData 生成工作簿时一个 sheet 的内容
type SheetData struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// 导入模板表头（规范化后即为各字段的首选别名）
var (
	WarehouseCostHeader = []string{
		"Pick Cost Per Line",
		"Pack Cost",
		"Pallet Handling Cost",
		"Storage Cost Per Day",
	}
	TransportCostHeader = []string{
		"Route ID",
		"Base Cost",
		"Cost Per Kg",
		"Cost Per Km",
	}
	OrderHeader = []string{
		"Order ID",
		"Customer ID",
		"Route ID",
		"SKU",
		"Quantity",
		"Revenue",
		"Weight Kg",
		"Volume M3",
		"Lines",
		"Pallets",
		"Order Date",
	}
)

// GenerateImportTemplate 生成导入模板（三个 sheet，只有表头）
func GenerateImportTemplate() ([]byte, error) {
	return BuildWorkbook([]SheetData{
		{Name: domain.SheetWarehouseCosts, Headers: WarehouseCostHeader},
		{Name: domain.SheetTransportCosts, Headers: TransportCostHeader},
		{Name: domain.SheetOrders, Headers: OrderHeader},
	})
}

// BuildWorkbook 按顺序生成多个 sheet 的 xlsx 文件
// 表头加粗并冻结首行
func BuildWorkbook(sheets []SheetData) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheet to write")
	}
	f := excelize.NewFile()
	// Note: WriteTo 之前不能 Close

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	// 删除默认的 Sheet1（除非调用方自己用了这个名字）
	if !hasSheet(sheets, "Sheet1") {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}
	// 设置默认活动工作表
	if index, err := f.GetSheetIndex(sheets[0].Name); err == nil && index >= 0 {
		f.SetActiveSheet(index)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet SheetData, headerStyle int) error {
	for col, header := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet.Name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet.Name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet.Name, colName, colName, 20); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, values := range sheet.Rows {
		row := rowIdx + 2 // 第1行是表头
		for colIdx, value := range values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, row)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
				return fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, colIdx+1, err)
			}
		}
	}

	if len(sheet.Headers) > 0 {
		if err := f.SetPanes(sheet.Name, &excelize.Panes{
			Freeze:      true,
			Split:       false,
			XSplit:      0,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze panes: %w", err)
		}
	}
	return nil
}

func hasSheet(sheets []SheetData, name string) bool {
	for _, s := range sheets {
		if s.Name == name {
			return true
		}
	}
	return false
}
