package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Order ID":                 "order_id",
		"  Pick Cost Per Line ":    "pick_cost_per_line",
		"Weight\tKg":               "weight_kg",
		"STORAGE   COST\n PER DAY": "storage_cost_per_day",
		"route_id":                 "route_id",
		"   ":                      "",
		"":                         "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeHeader(raw), "raw=%q", raw)
	}
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	for _, raw := range []string{"Order ID", " Pallet  Handling Cost", "sku", "Volume M3 ", "a  b\tc"} {
		once := NormalizeHeader(raw)
		assert.Equal(t, once, NormalizeHeader(once))
	}
}

func TestHeaderKeys(t *testing.T) {
	keys := headerKeys([]string{"Route ID", "", "Route ID", "Base Cost", "  ", "route id"})
	assert.Equal(t, []string{"route_id", "col_1", "route_id_2", "base_cost", "col_4", "route_id_3"}, keys)
}

func TestHeaderKeys_SuffixDoesNotCollide(t *testing.T) {
	keys := headerKeys([]string{"a", "a_2", "a"})
	assert.Equal(t, []string{"a", "a_2", "a_3"}, keys)
}
