package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row 一行数据：规范化表头 -> 原始单元格值
// 工作簿中读出的值均为 string；测试或其它来源可以放入 float64 / time.Time
type Row map[string]any

// SheetExtractor 按行流式读取一个 sheet
// 第一行为表头，之后每次 Next 产生一行；只能遍历一次，重新读取需要新建 extractor
type SheetExtractor struct {
	rows   *excelize.Rows
	keys   []string
	cur    Row
	err    error
	closed bool
}

// NewSheetExtractor 打开 sheet 的行迭代器并读取表头
// 表头取第一条非空行（表格的已用区域可以不从第 1 行开始）
// 空 sheet 返回一个不产生任何行的 extractor
func NewSheetExtractor(f *excelize.File, sheet string) (*SheetExtractor, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet %q: %w", sheet, err)
	}
	e := &SheetExtractor{rows: rows}
	for rows.Next() {
		header, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to read header of sheet %q: %w", sheet, err)
		}
		if blankRow(header) {
			continue
		}
		e.keys = headerKeys(header)
		return e, nil
	}
	e.err = rows.Error()
	e.close()
	return e, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Headers 返回规范化后的表头（按列顺序）
func (e *SheetExtractor) Headers() []string {
	return append([]string(nil), e.keys...)
}

// Next 读取下一行，没有更多数据或出错时返回 false
func (e *SheetExtractor) Next() bool {
	if e.closed || e.err != nil {
		return false
	}
	if !e.rows.Next() {
		e.err = e.rows.Error()
		e.close()
		return false
	}
	cells, err := e.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		e.err = err
		e.close()
		return false
	}
	width := len(e.keys)
	if len(cells) > width {
		width = len(cells)
	}
	row := make(Row, width)
	for i := 0; i < width; i++ {
		key := placeholderKey(i)
		if i < len(e.keys) {
			key = e.keys[i]
		}
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		row[key] = value
	}
	e.cur = row
	return true
}

// Row 返回当前行
func (e *SheetExtractor) Row() Row {
	return e.cur
}

// Err 返回遍历过程中的错误
func (e *SheetExtractor) Err() error {
	return e.err
}

// Close 释放底层迭代器，可重复调用
func (e *SheetExtractor) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.rows.Close()
}

func (e *SheetExtractor) close() {
	_ = e.Close()
}
