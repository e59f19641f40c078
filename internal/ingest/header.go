package ingest

import (
	"fmt"
	"strings"
)

// NormalizeHeader 规范化表头：去除首尾空白、转小写、连续空白替换为单个下划线
// 对已规范化的值再次调用结果不变
func NormalizeHeader(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "_")
}

// headerKeys 根据表头行生成每列的查找键
// 空表头使用列位置占位（col_<index>，从 0 开始），重复表头追加 _2、_3 后缀
func headerKeys(cells []string) []string {
	keys := make([]string, len(cells))
	used := make(map[string]bool, len(cells))
	for i, cell := range cells {
		base := NormalizeHeader(cell)
		if base == "" {
			base = placeholderKey(i)
		}
		key := base
		for n := 2; used[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func placeholderKey(index int) string {
	return fmt.Sprintf("col_%d", index)
}
