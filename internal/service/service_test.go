package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/events"
	"github.com/vikas186/cts-optimizer-backend/internal/ingest"
	"github.com/vikas186/cts-optimizer-backend/internal/repository"
	"github.com/vikas186/cts-optimizer-backend/internal/store"
)

const (
	orgA = "org-a"
	orgB = "org-b"
)

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store  *repository.MemoryStore
	kv     *store.MemoryKV
	events *recordingPublisher
	deps   Deps
}

func newTestEnv() *testEnv {
	mem := repository.NewMemoryStore()
	kv := store.NewMemoryKV()
	pub := &recordingPublisher{}
	return &testEnv{
		store:  mem,
		kv:     kv,
		events: pub,
		deps: Deps{
			Dimensions: mem,
			Facts:      mem,
			Results:    mem,
			TenantData: mem,
			KV:         kv,
			Locker:     store.NopLocker{},
			Events:     pub,
			Logger:     zap.NewNop(),
		},
	}
}

// standardWorkbook 一行仓储费率、两条线路费率、三笔订单（引用 C1/C2 与 R1/R3）
func standardWorkbook(t *testing.T) []byte {
	t.Helper()
	return workbook(t, [][]any{
		{"O1", "C1", "R1", "SKU-1", 10, 50, 20, 1.5, 4, 1, "2024-01-15"},
		{"O2", "C2", "R3", "SKU-2", 5, 20, 10, nil, 2, 0, "2024-01-16"},
		{"O3", "C1", "R1", nil, nil, nil, nil, nil, nil, nil, nil},
	})
}

func workbook(t *testing.T, orders [][]any) []byte {
	t.Helper()
	data, err := ingest.BuildWorkbook([]ingest.SheetData{
		{
			Name:    "Warehouse Costs",
			Headers: ingest.WarehouseCostHeader,
			Rows:    [][]any{{0.5, 0.25, 3, 1}},
		},
		{
			Name:    "Transport Costs",
			Headers: ingest.TransportCostHeader,
			Rows: [][]any{
				{"R1", 10, 0.5, 0.5},
				{"R2", 7, 0, 0},
			},
		},
		{
			Name:    "Orders",
			Headers: ingest.OrderHeader,
			Rows:    orders,
		},
	})
	require.NoError(t, err)
	return data
}

func upload(t *testing.T, svc *ImportService, orgID string, data []byte) *ImportResult {
	t.Helper()
	res, err := svc.UploadWorkbook(context.Background(), UploadWorkbookRequest{
		OrganizationID: orgID,
		FileName:       "data.xlsx",
		Body:           bytes.NewReader(data),
	})
	require.NoError(t, err)
	return res
}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
