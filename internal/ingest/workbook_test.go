package ingest

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildFixture(t *testing.T, sheets ...SheetData) []byte {
	t.Helper()
	data, err := BuildWorkbook(sheets)
	require.NoError(t, err)
	return data
}

func TestParseWorkbook(t *testing.T) {
	data := buildFixture(t,
		SheetData{
			Name:    "Warehouse Costs",
			Headers: []string{"Pick Cost", "Pack Cost", "Pallet Han", "Storage Co"},
			Rows: [][]any{
				{2, 1, 5, 0.1},
				{nil, nil, nil, nil, "stray"},
			},
		},
		SheetData{
			Name:    "transport_costs",
			Headers: []string{"Route ID", "Route ID", "Min Charg", "Cost Per L", "Cost Per Km"},
			Rows: [][]any{
				{"R1", nil, 10, 0.5, 0.2},
				{nil, "R2", 8, 0.3, 0.1},
				{nil, nil, 1, 1, 1},
			},
		},
		SheetData{
			Name:    "ORDERS",
			Headers: []string{"Order ID", "Customer", "Route ID", "SKU", "Quantity", "Revenue", "Weight Kg", "Volume M", "Lines", "Pallets", "Ship Date"},
			Rows: [][]any{
				{"O1", "C1", "R1", "S1", 10, 100, 20, 0.5, 3, 1, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
				{"O2", "C2", "R3", nil, 0, 50, nil, nil, nil, nil, "2024-01-16"},
				{"O3", nil, "R1"},
			},
		},
	)

	batch, err := ParseWorkbook(bytes.NewReader(data), testOrg)
	require.NoError(t, err)
	assert.Equal(t, testOrg, batch.OrganizationID)

	require.Len(t, batch.WarehouseCosts, 1)
	assert.Equal(t, 2.0, batch.WarehouseCosts[0].PickCostPerLine.Float64)
	assert.Equal(t, 0.1, batch.WarehouseCosts[0].StorageCostPerDay.Float64)

	require.Len(t, batch.TransportCosts, 2)
	assert.Equal(t, "R1", batch.TransportCosts[0].RouteID)
	assert.Equal(t, "R2", batch.TransportCosts[1].RouteID)
	assert.Equal(t, 8.0, batch.TransportCosts[1].BaseCost.Float64)

	require.Len(t, batch.Orders, 2)
	o1 := batch.Orders[0]
	assert.Equal(t, "O1", o1.OrderID)
	assert.Equal(t, "C1", o1.CustomerID)
	assert.Equal(t, int64(10), o1.Quantity.Int64)
	assert.Equal(t, 0.5, o1.VolumeM3.Float64)
	assert.Equal(t, "2024-01-15", o1.OrderDate.Time.Format("2006-01-02"))
	assert.Equal(t, int64(0), batch.Orders[1].Quantity.Int64)
	assert.False(t, batch.Orders[1].SKU.Valid)
	assert.Equal(t, "2024-01-16", batch.Orders[1].OrderDate.Time.Format("2006-01-02"))

	assert.Equal(t, 1, batch.Rejected.WarehouseCosts)
	assert.Equal(t, 1, batch.Rejected.TransportCosts)
	assert.Equal(t, 1, batch.Rejected.Orders)

	counts := batch.Counts()
	assert.Equal(t, 1, counts.WarehouseCosts)
	assert.Equal(t, 2, counts.TransportCosts)
	assert.Equal(t, 2, counts.Orders)

	assert.Equal(t, []string{"C1", "C2"}, batch.CustomerIDs())
	assert.Equal(t, []string{"R1", "R3", "R2"}, batch.RouteIDs())
}

func TestParseWorkbook_MissingSheetsYieldNoRows(t *testing.T) {
	data := buildFixture(t, SheetData{
		Name:    "orders",
		Headers: []string{"order_id", "customer_id", "route_id"},
		Rows:    [][]any{{"O1", "C1", "R1"}},
	})
	batch, err := ParseWorkbook(bytes.NewReader(data), testOrg)
	require.NoError(t, err)
	assert.Empty(t, batch.WarehouseCosts)
	assert.Empty(t, batch.TransportCosts)
	assert.Len(t, batch.Orders, 1)
}

func TestParseWorkbook_NotAWorkbook(t *testing.T) {
	_, err := ParseWorkbook(bytes.NewReader([]byte("order_id,customer_id\n1,2\n")), testOrg)
	assert.Error(t, err)
}

func TestGenerateImportTemplate(t *testing.T) {
	data, err := GenerateImportTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"warehouse_costs", "transport_costs", "orders"}, f.GetSheetList())

	ex, err := NewSheetExtractor(f, "orders")
	require.NoError(t, err)
	defer ex.Close()
	assert.Equal(t, []string{
		"order_id", "customer_id", "route_id", "sku", "quantity", "revenue",
		"weight_kg", "volume_m3", "lines", "pallets", "order_date",
	}, ex.Headers())
	assert.False(t, ex.Next())
	assert.NoError(t, ex.Err())

	batch, err := ParseWorkbook(bytes.NewReader(data), testOrg)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Counts().Orders)
}

func TestSheetExtractor_ExtraColumnsAndOnePass(t *testing.T) {
	data := buildFixture(t, SheetData{
		Name:    "orders",
		Headers: []string{"Order ID", ""},
		Rows:    [][]any{{"O1", "x", "extra"}},
	})
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	ex, err := NewSheetExtractor(f, "orders")
	require.NoError(t, err)
	require.True(t, ex.Next())
	row := ex.Row()
	assert.Equal(t, "O1", row["order_id"])
	assert.Equal(t, "x", row["col_1"])
	assert.Equal(t, "extra", row["col_2"])
	assert.False(t, ex.Next())
	assert.False(t, ex.Next())
	assert.NoError(t, ex.Close())
	assert.NoError(t, ex.Close())
}

func TestParseWorkbook_HeaderBelowBlankRows(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "orders"))
	require.NoError(t, f.SetCellValue("orders", "B1", " "))
	require.NoError(t, f.SetSheetRow("orders", "A2", &[]any{"Order ID", "Customer ID", "Route ID", "Quantity"}))
	require.NoError(t, f.SetSheetRow("orders", "A3", &[]any{"O1", "C1", "R1", 4}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	batch, err := ParseWorkbook(bytes.NewReader(buf.Bytes()), testOrg)
	require.NoError(t, err)
	require.Len(t, batch.Orders, 1)
	assert.Equal(t, "O1", batch.Orders[0].OrderID)
	assert.Equal(t, int64(4), batch.Orders[0].Quantity.Int64)
	assert.Zero(t, batch.Rejected.Orders)
}

func TestSheetExtractor_OnlyBlankRows(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", ""))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "  "))

	e, err := NewSheetExtractor(f, "Sheet1")
	require.NoError(t, err)
	assert.Empty(t, e.Headers())
	assert.False(t, e.Next())
	assert.NoError(t, e.Err())
}
