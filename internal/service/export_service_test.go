package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calculatedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv()
	importStandard(t, env)
	_, err := NewCalculationService(env.deps).CalculateAll(context.Background(), orgA)
	require.NoError(t, err)
	return env
}

func TestExportCostResults(t *testing.T) {
	env := calculatedEnv(t)
	svc := NewExportService(env.deps)

	f, err := svc.ExportCostResults(context.Background(), orgA, false)
	require.NoError(t, err)
	assert.Equal(t, "cost-to-serve-results.csv", f.FileName)
	assert.Equal(t,
		"order_id,transport_cost,warehouse_cost,admin_cost,return_cost,cost_to_serve,profit,profitable\r\n"+
			"O1,40,6,0,0,46,4,true\r\n"+
			"O2,0,1.5,0,0,1.5,18.5,true\r\n"+
			"O3,30,0,0,0,30,-30,false\r\n",
		string(f.Data))
}

func TestExportCostResults_WithOrderFields(t *testing.T) {
	env := calculatedEnv(t)
	f, err := NewExportService(env.deps).ExportCostResults(context.Background(), orgA, true)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(f.Data), "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "order_id,transport_cost,warehouse_cost,admin_cost,return_cost,cost_to_serve,profit,profitable,"+
		"customer_id,route_id,sku,quantity,revenue,weight_kg,lines,pallets,order_date", lines[0])
	assert.Equal(t, "O1,40,6,0,0,46,4,true,C1,R1,SKU-1,10,50,20,4,1,2024-01-15", lines[1])
	assert.Equal(t, "O3,30,0,0,0,30,-30,false,C1,R1,,,,,,,", lines[3])
}

func TestExportDropSizeResults(t *testing.T) {
	env := calculatedEnv(t)
	f, err := NewExportService(env.deps).ExportDropSizeResults(context.Background(), orgA)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(f.Data), "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "order_id,fixed_cost,unit_variable_cost,unit_revenue,min_profitable_quantity", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "O1,30,1.6,5,8.82"), lines[1])
	assert.Equal(t, "O2,0,0.3,4,0", lines[2])
	// 无解时留空
	assert.Equal(t, "O3,30,0,0,", lines[3])
}

func TestExportOrdersAnalytics(t *testing.T) {
	env := newTestEnv()
	importStandard(t, env)
	ctx := context.Background()
	_, err := NewCalculationService(env.deps).CalculateCostToServe(ctx, orgA)
	require.NoError(t, err)

	f, err := NewExportService(env.deps).ExportOrdersAnalytics(ctx, orgA)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(f.Data), "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(ordersAnalyticsColumns, ","), lines[0])
	// 按 order_date DESC 排列；没有 drop-size 结果的列留空
	assert.Equal(t, "O2,C2,R3,SKU-2,5,20,10,,2,0,2024-01-16,0,1.5,1.5,18.5,true,,,,", lines[1])
	assert.Equal(t, "O1,C1,R1,SKU-1,10,50,20,1.5,4,1,2024-01-15,40,6,46,4,true,,,,", lines[2])
	assert.Equal(t, "O3,C1,R1,,,,,,,,,30,0,30,-30,false,,,,", lines[3])
}

func TestWriteCSV_Quoting(t *testing.T) {
	data, err := writeCSV([]string{"a", "b"}, [][]string{{`x,y`, `say "hi"`}, {"line\nbreak", ""}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\r\n\"x,y\",\"say \"\"hi\"\"\"\r\n\"line\r\nbreak\",\r\n", string(data))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.30000000000000004", formatFloat(0.1+0.2))
	assert.Equal(t, "-30", formatFloat(-30))
	assert.Equal(t, "1500000", formatFloat(1.5e6))
}
