package reports

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

const selectRangeMessage = "Please select a start and end date to view the report."

// Service builds the report payloads, running the window and summary
// aggregations concurrently and caching the assembled result.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *Cache
	now    func() time.Time
}

// NewService wires the repository with the cache helper.
func NewService(logger *slog.Logger, repo Repository, cache *Cache) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, now: time.Now}
}

// SalesReport aggregates per-product sales for the organization.
func (s *Service) SalesReport(ctx context.Context, orgAdminID int64, rangeParam, startDate, endDate string) (*SalesReport, error) {
	g, err := ParseGranularity(rangeParam)
	if err != nil {
		return nil, err
	}
	window, err := ResolveWindow(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}

	loader := func(ctx context.Context) (interface{}, error) {
		var (
			rows        []ProductSalesRow
			totalOrders int64
		)
		grp, grpCtx := errgroup.WithContext(ctx)
		grp.Go(func() error {
			var err error
			rows, err = s.repo.SalesByProduct(grpCtx, orgAdminID, g, window.Start, window.queryEnd())
			return err
		})
		grp.Go(func() error {
			var err error
			totalOrders, err = s.repo.CountOrders(grpCtx, orgAdminID, window.Start, window.queryEnd())
			return err
		})
		if err := grp.Wait(); err != nil {
			return nil, err
		}

		entries := make([]ProductSalesEntry, 0, len(rows))
		var totalRevenue float64
		for _, row := range rows {
			totalRevenue += row.TotalRevenue
			entries = append(entries, ProductSalesEntry{
				Key:           bucketKey(g, row.Bucket),
				ProductID:     row.ProductID,
				ProductName:   row.ProductName,
				QuantitySold:  row.QuantitySold,
				TotalRevenue:  round2(row.TotalRevenue),
				TotalDiscount: round2(row.TotalDiscount),
				TotalTax:      round2(row.TotalTax),
				OrderCount:    row.OrderCount,
			})
		}
		return &SalesReport{
			FilterRange: window,
			GroupType:   g,
			Summary: SalesSummary{
				TotalProductsSold: len(entries),
				TotalOrders:       totalOrders,
				TotalRevenue:      round2(totalRevenue),
			},
			Data: entries,
		}, nil
	}

	var report SalesReport
	if err := s.fetch(ctx, keySales(orgAdminID, g, window), &report, loader); err != nil {
		return nil, err
	}
	return &report, nil
}

// ProfitLoss aggregates the organization's completed orders into
// profit and loss buckets plus a today summary.
func (s *Service) ProfitLoss(ctx context.Context, orgAdminID int64, rangeParam, startDate, endDate string) (*ProfitLossReport, error) {
	g, err := ParseGranularity(rangeParam)
	if err != nil {
		return nil, err
	}
	window, err := ResolveWindow(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}

	loader := func(ctx context.Context) (interface{}, error) {
		var (
			rows  []PLRow
			today *PLTotals
		)
		todayStart := startOfDay(s.now())
		grp, grpCtx := errgroup.WithContext(ctx)
		grp.Go(func() error {
			var err error
			rows, err = s.repo.ProfitLossBuckets(grpCtx, orgAdminID, g, window.Start, window.queryEnd())
			return err
		})
		grp.Go(func() error {
			var err error
			today, err = s.repo.ProfitLossTotals(grpCtx, orgAdminID, todayStart, todayStart.AddDate(0, 0, 1))
			return err
		})
		if err := grp.Wait(); err != nil {
			return nil, err
		}

		entries := make([]PLEntry, 0, len(rows))
		var summary PLFigures
		for _, row := range rows {
			key := bucketKey(g, row.Bucket)
			figures := plFigures(row.TotalRevenue, row.TotalCost, row.SellingPrice, row.TotalTax)
			entries = append(entries, PLEntry{
				Label:     bucketLabel(g, key),
				Key:       key,
				PLFigures: figures,
			})
			summary.TotalRevenue += figures.TotalRevenue
			summary.TotalCost += figures.TotalCost
			summary.Profit += figures.Profit
			summary.Loss += figures.Loss
			summary.TotalGST += figures.TotalGST
			summary.NonGSTRevenue += figures.NonGSTRevenue
		}
		return &ProfitLossReport{
			FilterRange: window,
			GroupType:   g,
			Summary:     summary,
			Today:       plFigures(today.TotalRevenue, today.TotalCost, today.SellingPrice, today.TotalTax),
			Data:        entries,
		}, nil
	}

	var report ProfitLossReport
	if err := s.fetch(ctx, keyProfitLoss(orgAdminID, g, window), &report, loader); err != nil {
		return nil, err
	}
	return &report, nil
}

// SystemRevenue aggregates all organizations' orders for the host admin.
func (s *Service) SystemRevenue(ctx context.Context, rangeParam, startDate, endDate string) (*RevenueReport, error) {
	g, err := ParseGranularity(rangeParam)
	if err != nil {
		return nil, err
	}
	window, err := ResolveWindow(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}

	loader := func(ctx context.Context) (interface{}, error) {
		var (
			rows   []RevenueRow
			totals *RevenueTotals
		)
		grp, grpCtx := errgroup.WithContext(ctx)
		grp.Go(func() error {
			var err error
			rows, err = s.repo.RevenueBuckets(grpCtx, g, window.Start, window.queryEnd())
			return err
		})
		grp.Go(func() error {
			var err error
			totals, err = s.repo.RevenueTotals(grpCtx, window.Start, window.queryEnd())
			return err
		})
		if err := grp.Wait(); err != nil {
			return nil, err
		}

		entries := make([]RevenueEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, RevenueEntry{
				Key:               bucketKey(g, row.Bucket),
				OrganizationAdmin: row.OrgAdminEmail,
				TotalRevenue:      round2(row.TotalRevenue),
				TotalTax:          round2(row.TotalTax),
				TotalOrders:       row.TotalOrders,
			})
		}
		return &RevenueReport{
			FilterRange: window,
			GroupType:   g,
			Summary: RevenueSummary{
				TotalRevenue:       round2(totals.TotalRevenue),
				TotalOrders:        totals.TotalOrders,
				TotalTax:           round2(totals.TotalTax),
				TotalOrganizations: totals.TotalOrganizations,
			},
			Data: entries,
		}, nil
	}

	var report RevenueReport
	if err := s.fetch(ctx, keyRevenue(g, window), &report, loader); err != nil {
		return nil, err
	}
	return &report, nil
}

// ManagerPerformance groups the organization's completed orders by the
// manager responsible for the employee who raised them. Without an
// explicit date range the report answers with an empty payload and a
// prompt instead of an error.
func (s *Service) ManagerPerformance(ctx context.Context, orgAdminID int64, rangeParam, startDate, endDate string) (*TeamReport, error) {
	return s.teamReport(ctx, "team_managers", orgAdminID, rangeParam, startDate, endDate, s.repo.ManagerTeamBuckets)
}

// EmployeePerformance groups a manager's completed orders by employee.
func (s *Service) EmployeePerformance(ctx context.Context, managerID int64, rangeParam, startDate, endDate string) (*TeamReport, error) {
	return s.teamReport(ctx, "team_employees", managerID, rangeParam, startDate, endDate, s.repo.EmployeeTeamBuckets)
}

func (s *Service) teamReport(ctx context.Context, cachePrefix string, ownerID int64, rangeParam, startDate, endDate string,
	query func(context.Context, int64, Granularity, time.Time, time.Time) ([]TeamRow, error)) (*TeamReport, error) {
	g, err := ParseGranularity(rangeParam)
	if err != nil {
		return nil, err
	}
	if startDate == "" || endDate == "" {
		return &TeamReport{Data: []TeamEntry{}, Message: selectRangeMessage}, nil
	}
	window, err := ResolveWindow(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}

	loader := func(ctx context.Context) (interface{}, error) {
		rows, err := query(ctx, ownerID, g, window.Start, window.queryEnd())
		if err != nil {
			return nil, err
		}
		entries := make([]TeamEntry, 0, len(rows))
		var summary TeamSummary
		for _, row := range rows {
			entry := TeamEntry{
				Key:           bucketKey(g, row.Bucket),
				Name:          row.PersonName,
				TotalRevenue:  round2(row.TotalRevenue),
				TotalOrders:   row.TotalOrders,
				TotalDiscount: round2(row.TotalDiscount),
				TotalTax:      round2(row.TotalTax),
			}
			entries = append(entries, entry)
			summary.TotalRevenue += entry.TotalRevenue
			summary.TotalOrders += entry.TotalOrders
			summary.TotalDiscount += entry.TotalDiscount
			summary.TotalTax += entry.TotalTax
		}
		return &TeamReport{
			FilterRange: &window,
			GroupType:   g,
			Summary:     summary,
			Data:        entries,
		}, nil
	}

	var report TeamReport
	if err := s.fetch(ctx, keyTeam(cachePrefix, ownerID, g, window), &report, loader); err != nil {
		return nil, err
	}
	return &report, nil
}

// Invalidate bumps the cache version after order mutations.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

func (s *Service) fetch(ctx context.Context, keyBase string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func plFigures(revenue, cost, sellingPrice, tax float64) PLFigures {
	profit := sellingPrice - cost
	loss := 0.0
	if cost > sellingPrice {
		loss = cost - sellingPrice
	}
	return PLFigures{
		TotalRevenue:  round2(revenue),
		TotalCost:     round2(cost),
		Profit:        round2(profit),
		Loss:          round2(loss),
		TotalGST:      round2(tax),
		NonGSTRevenue: round2(revenue - tax),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
