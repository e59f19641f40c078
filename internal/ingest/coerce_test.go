package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFloat_FirstNonEmptyAliasWins(t *testing.T) {
	row := Row{"pick_cost": "", "pick_cost_per_line": "2.5"}
	got := row.Float(AliasPickCost...)
	assert.True(t, got.Valid)
	assert.Equal(t, 2.5, got.Float64)

	row = Row{"pick_cost": "1", "pick_cost_per_line": "2.5"}
	assert.Equal(t, 1.0, row.Float(AliasPickCost...).Float64)
}

func TestRowFloat_UnparseableIsNull(t *testing.T) {
	// 第一个非空别名无法解析时不再尝试后续别名
	row := Row{"pick_cost": "n/a", "pick_cost_per_line": "2.5"}
	assert.False(t, row.Float(AliasPickCost...).Valid)

	assert.False(t, Row{"revenue": "NaN"}.Float("revenue").Valid)
	assert.False(t, Row{}.Float("revenue").Valid)
	assert.False(t, Row{"revenue": nil}.Float("revenue").Valid)
}

func TestRowFloat_NativeNumbers(t *testing.T) {
	assert.Equal(t, 3.0, Row{"v": 3}.Float("v").Float64)
	assert.Equal(t, 4.25, Row{"v": 4.25}.Float("v").Float64)
	assert.Equal(t, -7.0, Row{"v": " -7 "}.Float("v").Float64)
}

func TestRowInt_Floor(t *testing.T) {
	assert.Equal(t, int64(3), Row{"lines": "3.9"}.Int("lines").Int64)
	assert.Equal(t, int64(-2), Row{"lines": "-1.5"}.Int("lines").Int64)
	assert.False(t, Row{"lines": "three"}.Int("lines").Valid)
}

func TestRowString_Trim(t *testing.T) {
	assert.Equal(t, "C-1", Row{"customer_id": "  C-1 "}.String(AliasCustomerID...))
	assert.Equal(t, "C-2", Row{"customer_id": "   ", "customer": "C-2"}.String(AliasCustomerID...))
	assert.Equal(t, "1001", Row{"order_id": 1001.0}.String("order_id"))
	assert.Equal(t, "", Row{}.String("order_id"))
	assert.False(t, Row{"sku": ""}.NullString("sku").Valid)
}

func TestRowDate(t *testing.T) {
	want := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	t.Run("native time", func(t *testing.T) {
		got := Row{"order_date": time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC)}.Date(AliasOrderDate...)
		assert.True(t, got.Valid)
		assert.True(t, want.Equal(got.Time))
	})

	t.Run("serial number", func(t *testing.T) {
		got := Row{"order_date": 45306.0}.Date(AliasOrderDate...)
		assert.True(t, got.Valid)
		assert.True(t, want.Equal(got.Time))
	})

	t.Run("serial string with time fraction", func(t *testing.T) {
		got := Row{"order_date": "45306.75"}.Date(AliasOrderDate...)
		assert.True(t, got.Valid)
		assert.True(t, want.Equal(got.Time))
	})

	t.Run("iso string prefix", func(t *testing.T) {
		got := Row{"ship_date": "2024-01-15T08:00:00Z"}.Date(AliasOrderDate...)
		assert.True(t, got.Valid)
		assert.True(t, want.Equal(got.Time))
	})

	t.Run("small number is null", func(t *testing.T) {
		assert.False(t, Row{"order_date": "500"}.Date(AliasOrderDate...).Valid)
	})

	t.Run("garbage is null", func(t *testing.T) {
		assert.False(t, Row{"order_date": "15/01/2024"}.Date(AliasOrderDate...).Valid)
		assert.False(t, Row{"order_date": "soon"}.Date(AliasOrderDate...).Valid)
	})
}

func TestSerialRoundTrip(t *testing.T) {
	day := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, day.Equal(FromSerial(ToSerial(day))))
	assert.Equal(t, 45306.0, ToSerial(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestRowDate_SerialOutOfRangeIsNull(t *testing.T) {
	for _, v := range []any{1e15, "1e15", 2958466.0, math.Inf(1)} {
		got := Row{"order_date": v}.Date(AliasOrderDate...)
		assert.False(t, got.Valid, "value=%v", v)
	}
	last := Row{"order_date": 2958465.0}.Date(AliasOrderDate...)
	require.True(t, last.Valid)
	assert.Equal(t, time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC), last.Time)
}
