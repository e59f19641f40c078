package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikas186/cts-optimizer-backend/internal/events"
	"github.com/vikas186/cts-optimizer-backend/internal/store"
)

// importStandard 导入标准工作簿并把 R1 距离设为 40km
func importStandard(t *testing.T, env *testEnv) {
	t.Helper()
	upload(t, NewImportService(env.deps), orgA, standardWorkbook(t))
	dist := 40.0
	_, err := NewQueryService(env.deps).UpdateRoute(context.Background(), UpdateRouteRequest{
		OrganizationID: orgA, RouteID: "R1", DistanceKm: &dist,
	})
	require.NoError(t, err)
}

func TestCalculateCostToServe(t *testing.T) {
	env := newTestEnv()
	importStandard(t, env)
	ctx := context.Background()

	res, err := NewCalculationService(env.deps).CalculateCostToServe(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Calculated)
	assert.Equal(t, "Cost-to-serve calculated for 3 orders.", res.Message)

	o1, err := env.store.GetCostResult(ctx, orgA, "O1")
	require.NoError(t, err)
	assert.InDelta(t, 6, o1.WarehouseCost, 1e-9)
	assert.InDelta(t, 40, o1.TransportCost, 1e-9)
	assert.InDelta(t, 46, o1.CostToServe, 1e-9)
	assert.InDelta(t, 4, o1.Profit, 1e-9)
	assert.True(t, o1.Profitable)
	assert.NotEmpty(t, o1.ID)
	assert.False(t, o1.CalculatedAt.IsZero())

	// R3 没有运输费率
	o2, err := env.store.GetCostResult(ctx, orgA, "O2")
	require.NoError(t, err)
	assert.Zero(t, o2.TransportCost)
	assert.InDelta(t, 1.5, o2.WarehouseCost, 1e-9)

	o3, err := env.store.GetCostResult(ctx, orgA, "O3")
	require.NoError(t, err)
	assert.InDelta(t, 30, o3.CostToServe, 1e-9)
	assert.False(t, o3.Profitable)

	assert.Contains(t, env.events.types(), events.TypeCalculationCompleted)
}

func TestCalculateDropSize(t *testing.T) {
	env := newTestEnv()
	importStandard(t, env)
	ctx := context.Background()

	res, err := NewCalculationService(env.deps).CalculateDropSize(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Calculated)
	assert.Equal(t, "Drop-size recommendations calculated for 3 orders.", res.Message)

	o1, err := env.store.GetDropSizeResult(ctx, orgA, "O1")
	require.NoError(t, err)
	assert.InDelta(t, 30, o1.FixedCost, 1e-9)
	assert.InDelta(t, 1.6, o1.UnitVariableCost, 1e-9)
	assert.InDelta(t, 5, o1.UnitRevenue, 1e-9)
	require.True(t, o1.MinProfitableQuantity.Valid)
	assert.InDelta(t, 30/3.4, o1.MinProfitableQuantity.Float64, 1e-9)

	// 没有收入，单位毛利为 0
	o3, err := env.store.GetDropSizeResult(ctx, orgA, "O3")
	require.NoError(t, err)
	assert.False(t, o3.MinProfitableQuantity.Valid)
}

func TestCalculateAll(t *testing.T) {
	env := newTestEnv()
	importStandard(t, env)

	res, err := NewCalculationService(env.deps).CalculateAll(context.Background(), orgA)
	require.NoError(t, err)
	assert.Equal(t, 3, res.CostToServe.Calculated)
	assert.Equal(t, 3, res.DropSize.Calculated)
	assert.Equal(t, "Cost-to-serve and drop-size calculations completed.", res.Message)
}

func TestCalculate_RerunReplacesResults(t *testing.T) {
	env := newTestEnv()
	importStandard(t, env)
	ctx := context.Background()
	svc := NewCalculationService(env.deps)

	_, err := svc.CalculateAll(ctx, orgA)
	require.NoError(t, err)
	_, err = svc.CalculateAll(ctx, orgA)
	require.NoError(t, err)

	costs, err := env.store.ListCostResults(ctx, orgA)
	require.NoError(t, err)
	assert.Len(t, costs, 3)
	drops, err := env.store.ListDropSizeResults(ctx, orgA)
	require.NoError(t, err)
	assert.Len(t, drops, 3)
}

func TestCalculate_NoOrdersClearsResults(t *testing.T) {
	env := newTestEnv()
	importStandard(t, env)
	ctx := context.Background()
	svc := NewCalculationService(env.deps)

	_, err := svc.CalculateAll(ctx, orgA)
	require.NoError(t, err)

	// 重新导入一个没有订单的工作簿
	upload(t, NewImportService(env.deps), orgA, workbook(t, nil))

	res, err := svc.CalculateCostToServe(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Calculated)
	assert.Equal(t, "No orders to calculate", res.Message)

	costs, err := env.store.ListCostResults(ctx, orgA)
	require.NoError(t, err)
	assert.Empty(t, costs)
}

func TestCalculate_TenantRequired(t *testing.T) {
	svc := NewCalculationService(newTestEnv().deps)
	_, err := svc.CalculateCostToServe(context.Background(), "")
	assert.ErrorIs(t, err, ErrTenantRequired)
}

func TestCalculate_LockHeldByAnotherRun(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newTestEnv()
	locker := store.NewRedisLocker(client)
	env.deps.Locker = locker
	env.deps.LockTTL = time.Minute
	importStandard(t, env)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, lockKey(orgA), time.Minute)
	require.NoError(t, err)

	svc := NewCalculationService(env.deps)
	_, err = svc.CalculateCostToServe(ctx, orgA)
	assert.ErrorIs(t, err, ErrRunInProgress)
	_, err = NewImportService(env.deps).UploadWorkbook(ctx, UploadWorkbookRequest{
		OrganizationID: orgA,
		Body:           bytesReader(standardWorkbook(t)),
	})
	assert.ErrorIs(t, err, ErrRunInProgress)

	// 其它租户不受影响
	_, err = svc.CalculateCostToServe(ctx, orgB)
	require.NoError(t, err)

	require.NoError(t, lease.Release(ctx))
	res, err := svc.CalculateCostToServe(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Calculated)
	assert.False(t, mr.Exists(lockKey(orgA)))
}
