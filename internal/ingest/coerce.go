package ingest

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// serialEpoch 表格日期序列号的第 0 天
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// 数值大于 serialMin 才按日期序列号解释；超过 serialMax（9999-12-31）视为无法解析
const (
	serialMin = 1000
	serialMax = 2958465
)

// Lookup 按别名顺序返回第一个非空值
// nil、空串、纯空白串视为空
func (r Row) Lookup(aliases ...string) (any, bool) {
	for _, name := range aliases {
		v, ok := r[name]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String 第一个非空别名的值（去除首尾空白），都为空时返回 ""
func (r Row) String(aliases ...string) string {
	v, ok := r.Lookup(aliases...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.UTC().Format(domain.DateLayout)
	default:
		return ""
	}
}

// NullString 同 String，空值返回 NULL
func (r Row) NullString(aliases ...string) sql.NullString {
	s := r.String(aliases...)
	return sql.NullString{String: s, Valid: s != ""}
}

// Float 第一个非空别名解析为浮点数；无法解析时返回 NULL（不再尝试后续别名）
func (r Row) Float(aliases ...string) sql.NullFloat64 {
	v, ok := r.Lookup(aliases...)
	if !ok {
		return sql.NullFloat64{}
	}
	f, ok := toFloat(v)
	if !ok {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// Int 数值解析后向下取整
func (r Row) Int(aliases ...string) sql.NullInt64 {
	f := r.Float(aliases...)
	if !f.Valid {
		return sql.NullInt64{}
	}
	floor := math.Floor(f.Float64)
	if floor > math.MaxInt64 || floor < math.MinInt64 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(floor), Valid: true}
}

// Date 支持三种输入：
//   - time.Time：取 UTC 日期
//   - 数值（或数值字符串）且在 (1000, 2958465] 内：按表格日期序列号解释
//   - 字符串：取前 10 个字符按 YYYY-MM-DD 解析
//
// 其它情况返回 NULL
func (r Row) Date(aliases ...string) sql.NullTime {
	v, ok := r.Lookup(aliases...)
	if !ok {
		return sql.NullTime{}
	}
	if t, isTime := v.(time.Time); isTime {
		u := t.UTC()
		return sql.NullTime{Time: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
	}
	if n, isNum := toFloat(v); isNum {
		if n > serialMin && math.Floor(n) <= serialMax {
			return sql.NullTime{Time: FromSerial(n), Valid: true}
		}
		return sql.NullTime{}
	}
	s, isStr := v.(string)
	if !isStr {
		return sql.NullTime{}
	}
	s = strings.TrimSpace(s)
	if len(s) < len(domain.DateLayout) {
		return sql.NullTime{}
	}
	t, err := time.Parse(domain.DateLayout, s[:len(domain.DateLayout)])
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// FromSerial 表格日期序列号转日期（小数部分为当天时间，直接舍去）
func FromSerial(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(math.Floor(serial)))
}

// ToSerial 日期转表格日期序列号
func ToSerial(t time.Time) float64 {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return math.Round(day.Sub(serialEpoch).Hours() / 24)
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
