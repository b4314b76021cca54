package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
)

const (
	dashboardParallelism = 4
	dashboardMonths      = 12
	recentOrdersLimit    = 10
	recentUsersLimit     = 5
	dashboardTopLimit    = 5
)

type DashboardService interface {
	// Stats aggregates the admin dashboard. start and end are optional
	// dates; end must not precede start.
	Stats(ctx context.Context, start, end *time.Time) (*models.DashboardStats, error)
	PendingCounts(ctx context.Context) (models.PendingCounts, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
	loc  *time.Location
	now  func() time.Time
}

func NewDashboardService(repo repository.DashboardRepository, loc *time.Location) DashboardService {
	return &dashboardService{repo: repo, loc: loc, now: time.Now}
}

func (s *dashboardService) PendingCounts(ctx context.Context) (models.PendingCounts, error) {
	return s.repo.PendingCounts(ctx)
}

// windows are the fixed comparison periods shared by users, orders and sales.
type windows struct {
	today, yesterday, week, month, lastMonth, tomorrow time.Time
}

func (s *dashboardService) windows(now time.Time) windows {
	today := startOfDay(now)
	weekday := (int(today.Weekday()) + 6) % 7 // Monday = 0
	month := startOfMonth(today)
	return windows{
		today:     today,
		yesterday: today.AddDate(0, 0, -1),
		week:      today.AddDate(0, 0, -weekday),
		month:     month,
		lastMonth: month.AddDate(0, -1, 0),
		tomorrow:  today.AddDate(0, 0, 1),
	}
}

func (s *dashboardService) Stats(ctx context.Context, start, end *time.Time) (*models.DashboardStats, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, pkg.ValidationErrors{"end_date": "must be after or equal to start_date"}
	}
	now := s.now().In(s.loc)
	dr := ResolveDateRange(start, end, now, s.loc)
	w := s.windows(now)

	periodBuckets := BuildBuckets(dr)
	monthBuckets := MonthBuckets(now, s.loc, dashboardMonths)

	// One scan per table covers both the detailed and the monthly series.
	scanFrom := dr.StartDate
	if monthBuckets[0].Start.Before(scanFrom) {
		scanFrom = monthBuckets[0].Start
	}
	scanTo := rangeEnd(dr)
	if last := monthBuckets[len(monthBuckets)-1].End; last.After(scanTo) {
		scanTo = last
	}

	st := &models.DashboardStats{DateRange: dr}
	periodEnd := rangeEnd(dr)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardParallelism)

	g.Go(func() (err error) {
		st.UserCounts, err = s.repo.UserCountsByRole(gctx)
		st.UserCounts = nonNil(st.UserCounts)
		return err
	})

	g.Go(func() error {
		count := func(from, to time.Time) (int, error) { return s.repo.CountUsers(gctx, from, to) }
		c, err := countWindows(w, dr, periodEnd, count)
		if err != nil {
			return err
		}
		st.NewUserCounts = c
		st.UserGrowth = countGrowth(c)
		return nil
	})

	g.Go(func() error {
		var (
			orders models.PeriodCounts
			sales  models.PeriodSums
		)
		windowsList := []struct {
			from, to time.Time
			n        *int
			sum      *float64
		}{
			{w.today, w.tomorrow, &orders.Today, &sales.Today},
			{w.yesterday, w.today, &orders.Yesterday, &sales.Yesterday},
			{w.week, w.tomorrow, &orders.Week, &sales.Week},
			{w.month, w.tomorrow, &orders.Month, &sales.Month},
			{w.lastMonth, w.month, &orders.LastMonth, &sales.LastMonth},
			{dr.StartDate, periodEnd, &orders.SelectedPeriod, &sales.SelectedPeriod},
			{dr.PrevStart, dr.StartDate, &orders.PreviousPeriod, &sales.PreviousPeriod},
		}
		for _, win := range windowsList {
			n, sum, err := s.repo.OrderTotals(gctx, win.from, win.to)
			if err != nil {
				return err
			}
			*win.n, *win.sum = n, roundCents(sum)
		}
		st.OrderCountsByPeriod = orders
		st.OrderGrowth = countGrowth(orders)
		st.SalesByPeriod = sales
		st.SalesGrowth = models.Growth{
			Daily:   growth(sales.Today, sales.Yesterday),
			Monthly: growth(sales.Month, sales.LastMonth),
			Period:  growth(sales.SelectedPeriod, sales.PreviousPeriod),
		}
		return nil
	})

	g.Go(func() (err error) {
		if st.ProductCounts, err = s.repo.ProductCounts(gctx); err != nil {
			return err
		}
		st.ProductStats, err = s.repo.ProductStats(gctx)
		return err
	})

	g.Go(func() error {
		byStatus, err := s.repo.OrderCountsByStatus(gctx)
		if err != nil {
			return err
		}
		byPayment, err := s.repo.OrderCountsByPaymentStatus(gctx)
		if err != nil {
			return err
		}
		paid, total, err := s.repo.SalesTotals(gctx)
		if err != nil {
			return err
		}
		last30, last30Sales, err := s.repo.OrderTotals(gctx, now.AddDate(0, 0, -30), w.tomorrow)
		if err != nil {
			return err
		}

		avg := 0.0
		if paid > 0 {
			avg = roundCents(total / float64(paid))
		}
		st.OrderCounts = nonNil(byStatus)
		st.TotalSales = roundCents(total)
		st.AverageOrderValue = avg
		st.OrderStats = models.OrderStats{
			ByStatus:          nonNil(byStatus),
			ByPaymentStatus:   nonNil(byPayment),
			TotalRevenue:      roundCents(total),
			AverageOrderValue: avg,
			Last30DaysOrders:  last30,
			Last30DaysRevenue: roundCents(last30Sales),
		}
		return nil
	})

	g.Go(func() error {
		points, err := s.repo.UserPoints(gctx, scanFrom, scanTo)
		if err != nil {
			return err
		}
		st.UserRegistrationsByPeriod = FoldPoints(periodBuckets, points, false)
		st.UserRegistrationsByMonth = newestFirst(FoldPoints(monthBuckets, points, false))
		return nil
	})

	g.Go(func() error {
		points, err := s.repo.OrderPoints(gctx, scanFrom, scanTo)
		if err != nil {
			return err
		}
		st.OrdersByMonth = newestFirst(FoldPoints(monthBuckets, countOnly(points), false))
		st.SalesByPeriodDetailed = FoldPoints(periodBuckets, points, true)
		st.SalesByMonth = newestFirst(FoldPoints(monthBuckets, points, true))
		st.OrdersByPeriod = FoldPoints(periodBuckets, countOnly(points), false)
		return nil
	})

	g.Go(func() error {
		pending, err := s.repo.PendingCounts(gctx)
		if err != nil {
			return err
		}
		st.PendingProducersCount = pending.Producers
		rows, err := s.repo.PendingProducers(gctx, dashboardTopLimit)
		st.PendingProducers = nonNil(rows)
		return err
	})

	g.Go(func() (err error) {
		if st.RecentOrders, err = s.repo.RecentOrders(gctx, recentOrdersLimit); err != nil {
			return err
		}
		st.RecentOrders = nonNil(st.RecentOrders)
		st.RecentUsers, err = s.repo.RecentUsers(gctx, recentUsersLimit)
		st.RecentUsers = nonNil(st.RecentUsers)
		return err
	})

	g.Go(func() (err error) {
		if st.TopProducts, err = s.repo.TopProducts(gctx, dr.StartDate, periodEnd, dashboardTopLimit); err != nil {
			return err
		}
		st.TopProducts = nonNil(st.TopProducts)
		st.TopProducers, err = s.repo.TopProducers(gctx, dr.StartDate, periodEnd, dashboardTopLimit)
		st.TopProducers = nonNil(st.TopProducers)
		return err
	})

	g.Go(func() (err error) {
		if st.CategoryCount, err = s.repo.CategoryCount(gctx); err != nil {
			return err
		}
		if st.TopCategories, err = s.repo.TopCategories(gctx, dashboardTopLimit); err != nil {
			return err
		}
		st.TopCategories = nonNil(st.TopCategories)
		st.AdoptableItemsCount, err = s.repo.AdoptableItemsCount(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return st, nil
}

func countWindows(w windows, dr models.DateRange, periodEnd time.Time, count func(from, to time.Time) (int, error)) (models.NewUserCounts, error) {
	var c models.NewUserCounts
	targets := []struct {
		from, to time.Time
		dst      *int
	}{
		{w.today, w.tomorrow, &c.Today},
		{w.yesterday, w.today, &c.Yesterday},
		{w.week, w.tomorrow, &c.Week},
		{w.month, w.tomorrow, &c.Month},
		{w.lastMonth, w.month, &c.LastMonth},
		{dr.StartDate, periodEnd, &c.SelectedPeriod},
		{dr.PrevStart, dr.StartDate, &c.PreviousPeriod},
	}
	for _, t := range targets {
		n, err := count(t.from, t.to)
		if err != nil {
			return c, err
		}
		*t.dst = n
	}
	return c, nil
}

func countGrowth(c models.NewUserCounts) models.Growth {
	return models.Growth{
		Daily:   growth(float64(c.Today), float64(c.Yesterday)),
		Monthly: growth(float64(c.Month), float64(c.LastMonth)),
		Period:  growth(float64(c.SelectedPeriod), float64(c.PreviousPeriod)),
	}
}

// countOnly turns order points into unit points so folding counts them.
func countOnly(points []models.TimePoint) []models.TimePoint {
	out := make([]models.TimePoint, len(points))
	for i, p := range points {
		out[i] = models.TimePoint{At: p.At, Value: 1}
	}
	return out
}
