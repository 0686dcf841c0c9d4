package reports

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-erp/lattice/internal/shared"
)

type mockRepository struct {
	salesRows   []ProductSalesRow
	orderCount  int64
	plRows      []PLRow
	plTotals    PLTotals
	revenueRows []RevenueRow
	revTotals   RevenueTotals
	teamRows    []TeamRow

	calls int
}

func (m *mockRepository) SalesByProduct(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]ProductSalesRow, error) {
	m.calls++
	return m.salesRows, nil
}

func (m *mockRepository) CountOrders(ctx context.Context, orgAdminID int64, start, end time.Time) (int64, error) {
	return m.orderCount, nil
}

func (m *mockRepository) ProfitLossBuckets(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]PLRow, error) {
	m.calls++
	return m.plRows, nil
}

func (m *mockRepository) ProfitLossTotals(ctx context.Context, orgAdminID int64, start, end time.Time) (*PLTotals, error) {
	totals := m.plTotals
	return &totals, nil
}

func (m *mockRepository) RevenueBuckets(ctx context.Context, g Granularity, start, end time.Time) ([]RevenueRow, error) {
	m.calls++
	return m.revenueRows, nil
}

func (m *mockRepository) RevenueTotals(ctx context.Context, start, end time.Time) (*RevenueTotals, error) {
	totals := m.revTotals
	return &totals, nil
}

func (m *mockRepository) ManagerTeamBuckets(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]TeamRow, error) {
	m.calls++
	return m.teamRows, nil
}

func (m *mockRepository) EmployeeTeamBuckets(ctx context.Context, managerID int64, g Granularity, start, end time.Time) ([]TeamRow, error) {
	m.calls++
	return m.teamRows, nil
}

func newService(t *testing.T, repo Repository) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewService(slog.Default(), repo, NewCache(client, time.Minute))
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc, client
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, GranularityMonthly, g)

	for _, raw := range []string{"daily", "weekly", "monthly", "quarterly", "yearly"} {
		_, err := ParseGranularity(raw)
		assert.NoError(t, err)
	}

	_, err = ParseGranularity("hourly")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	w, err := ResolveWindow("", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC), w.Start)
	assert.True(t, w.End.After(now))

	w, err = ResolveWindow("2025-01-01", "2025-01-31", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), w.queryEnd())

	_, err = ResolveWindow("not-a-date", "2025-01-31", now)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestBucketKeysAndLabels(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	key := bucketKey(GranularityDaily, day)
	assert.Equal(t, BucketKey{Year: 2025, Month: 6, Day: 2}, key)
	assert.Equal(t, "2/6/2025", bucketLabel(GranularityDaily, key))

	key = bucketKey(GranularityWeekly, day)
	assert.Equal(t, BucketKey{Year: 2025, Week: 23}, key)
	assert.Equal(t, "Week 23, 2025", bucketLabel(GranularityWeekly, key))

	key = bucketKey(GranularityQuarterly, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, BucketKey{Year: 2025, Quarter: 2}, key)
	assert.Equal(t, "Q2, 2025", bucketLabel(GranularityQuarterly, key))

	key = bucketKey(GranularityYearly, day)
	assert.Equal(t, "2025", bucketLabel(GranularityYearly, key))

	key = bucketKey(GranularityMonthly, day)
	assert.Equal(t, "6/2025", bucketLabel(GranularityMonthly, key))
}

func TestSalesReportSummary(t *testing.T) {
	bucket := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockRepository{
		salesRows: []ProductSalesRow{
			{Bucket: bucket, ProductID: 1, ProductName: "Widget", QuantitySold: 4, TotalRevenue: 400.555, TotalDiscount: 20, TotalTax: 40, OrderCount: 2},
			{Bucket: bucket, ProductID: 2, ProductName: "Gadget", QuantitySold: 1, TotalRevenue: 99.99, TotalDiscount: 0, TotalTax: 10, OrderCount: 1},
		},
		orderCount: 3,
	}
	svc, _ := newService(t, repo)

	report, err := svc.SalesReport(context.Background(), 1, "monthly", "2025-06-01", "2025-06-30")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.TotalProductsSold)
	assert.Equal(t, int64(3), report.Summary.TotalOrders)
	assert.InDelta(t, 500.55, report.Summary.TotalRevenue, 0.001)
	assert.Equal(t, BucketKey{Year: 2025, Month: 6}, report.Data[0].Key)
	assert.InDelta(t, 400.56, report.Data[0].TotalRevenue, 0.001)
}

func TestProfitLossFigures(t *testing.T) {
	// Selling below floor price shows up as loss, never negative profit
	// only.
	f := plFigures(110, 120, 100, 10)
	assert.Equal(t, -20.0, f.Profit)
	assert.Equal(t, 20.0, f.Loss)
	assert.Equal(t, 100.0, f.NonGSTRevenue)

	f = plFigures(220, 150, 200, 20)
	assert.Equal(t, 50.0, f.Profit)
	assert.Equal(t, 0.0, f.Loss)
}

func TestProfitLossReportIncludesToday(t *testing.T) {
	repo := &mockRepository{
		plRows: []PLRow{
			{Bucket: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), TotalRevenue: 220, TotalCost: 150, SellingPrice: 200, TotalTax: 20},
		},
		plTotals: PLTotals{TotalRevenue: 55, TotalCost: 30, SellingPrice: 50, TotalTax: 5},
	}
	svc, _ := newService(t, repo)

	report, err := svc.ProfitLoss(context.Background(), 1, "monthly", "2025-06-01", "2025-06-30")
	require.NoError(t, err)

	require.Len(t, report.Data, 1)
	assert.Equal(t, "6/2025", report.Data[0].Label)
	assert.Equal(t, 50.0, report.Summary.Profit)
	assert.Equal(t, 20.0, report.Today.Profit)
}

func TestSystemRevenueSummary(t *testing.T) {
	repo := &mockRepository{
		revenueRows: []RevenueRow{
			{Bucket: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), OrgAdminID: 1, OrgAdminEmail: "org@acme.test", TotalRevenue: 500, TotalTax: 50, TotalOrders: 5},
		},
		revTotals: RevenueTotals{TotalRevenue: 500, TotalOrders: 5, TotalTax: 50, TotalOrganizations: 1},
	}
	svc, _ := newService(t, repo)

	report, err := svc.SystemRevenue(context.Background(), "", "", "")
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.Summary.TotalOrganizations)
	assert.Equal(t, "org@acme.test", report.Data[0].OrganizationAdmin)
}

func TestTeamReportWithoutRangeIsFriendly(t *testing.T) {
	repo := &mockRepository{}
	svc, _ := newService(t, repo)

	report, err := svc.ManagerPerformance(context.Background(), 1, "monthly", "", "")
	require.NoError(t, err)

	assert.Empty(t, report.Data)
	assert.Equal(t, selectRangeMessage, report.Message)
	assert.Zero(t, repo.calls)
}

func TestTeamReportSumsSummary(t *testing.T) {
	bucket := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockRepository{
		teamRows: []TeamRow{
			{Bucket: bucket, PersonID: 2, PersonName: "Mia Manager", TotalRevenue: 300, TotalOrders: 3, TotalDiscount: 15, TotalTax: 30},
			{Bucket: bucket, PersonID: 4, PersonName: "Max Manager", TotalRevenue: 100, TotalOrders: 1, TotalDiscount: 5, TotalTax: 10},
		},
	}
	svc, _ := newService(t, repo)

	report, err := svc.EmployeePerformance(context.Background(), 2, "monthly", "2025-06-01", "2025-06-30")
	require.NoError(t, err)

	assert.Equal(t, 400.0, report.Summary.TotalRevenue)
	assert.Equal(t, int64(4), report.Summary.TotalOrders)
	assert.Equal(t, 20.0, report.Summary.TotalDiscount)
}

func TestReportsAreCached(t *testing.T) {
	repo := &mockRepository{orderCount: 1}
	svc, _ := newService(t, repo)
	ctx := context.Background()

	_, err := svc.SalesReport(ctx, 1, "monthly", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	_, err = svc.SalesReport(ctx, 1, "monthly", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	// A different window misses the cache.
	_, err = svc.SalesReport(ctx, 1, "monthly", "2025-05-01", "2025-05-31")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestInvalidateBumpsPastCachedEntries(t *testing.T) {
	repo := &mockRepository{orderCount: 1}
	svc, _ := newService(t, repo)
	ctx := context.Background()

	_, err := svc.SalesReport(ctx, 1, "monthly", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	svc.Invalidate(ctx)

	_, err = svc.SalesReport(ctx, 1, "monthly", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
