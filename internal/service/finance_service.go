package service

import (
	"context"
	"sort"
	"time"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/shopspring/decimal"
)

type ProfitLossReport struct {
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	GroupBy     string             `json:"group_by"`
	Revenue     decimal.Decimal    `json:"revenue"`
	Expenses    decimal.Decimal    `json:"expenses"`
	PayrollCost decimal.Decimal    `json:"payroll_cost"`
	NetProfit   decimal.Decimal    `json:"net_profit"`
	Series      []ProfitLossBucket `json:"series"`
}

type ProfitLossBucket struct {
	Period      string          `json:"period"`
	Revenue     decimal.Decimal `json:"revenue"`
	Expenses    decimal.Decimal `json:"expenses"`
	PayrollCost decimal.Decimal `json:"payroll_cost"`
	NetProfit   decimal.Decimal `json:"net_profit"`
}

type FinanceService interface {
	ProfitLoss(ctx context.Context, startDate, endDate, groupBy string) (*ProfitLossReport, error)
}

type financeService struct {
	repo repository.FinanceRepository
}

func NewFinanceService(repo repository.FinanceRepository) FinanceService {
	return &financeService{repo: repo}
}

// ProfitLoss reports paid revenue minus expenses and paid payroll over an inclusive date range.
func (s *financeService) ProfitLoss(ctx context.Context, startDate, endDate, groupBy string) (*ProfitLossReport, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	switch groupBy {
	case "":
		groupBy = "day"
	case "day", "week", "month":
	default:
		return nil, invalid("group_by must be day, week or month")
	}
	endOfDay := end.Add(24*time.Hour - time.Nanosecond)

	revenue, err := s.repo.RevenueByPeriod(ctx, groupBy, start, endOfDay)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repo.ExpensesByPeriod(ctx, groupBy, start, endOfDay)
	if err != nil {
		return nil, err
	}
	payroll, err := s.repo.PayrollByPeriod(ctx, groupBy, start, endOfDay)
	if err != nil {
		return nil, err
	}

	report := &ProfitLossReport{
		StartDate: startDate,
		EndDate:   endDate,
		GroupBy:   groupBy,
		Series:    mergeBuckets(revenue, expenses, payroll),
	}
	for _, b := range report.Series {
		report.Revenue = report.Revenue.Add(b.Revenue)
		report.Expenses = report.Expenses.Add(b.Expenses)
		report.PayrollCost = report.PayrollCost.Add(b.PayrollCost)
	}
	report.NetProfit = report.Revenue.Sub(report.Expenses).Sub(report.PayrollCost)
	return report, nil
}

// mergeBuckets joins the three series on period, keeping period order.
func mergeBuckets(revenue, expenses, payroll []model.PeriodAmount) []ProfitLossBucket {
	index := map[string]int{}
	var buckets []ProfitLossBucket
	bucket := func(period string) *ProfitLossBucket {
		if i, ok := index[period]; ok {
			return &buckets[i]
		}
		index[period] = len(buckets)
		buckets = append(buckets, ProfitLossBucket{Period: period})
		return &buckets[len(buckets)-1]
	}

	for _, r := range revenue {
		b := bucket(r.Period)
		b.Revenue = b.Revenue.Add(r.Amount)
	}
	for _, e := range expenses {
		b := bucket(e.Period)
		b.Expenses = b.Expenses.Add(e.Amount)
	}
	for _, p := range payroll {
		b := bucket(p.Period)
		b.PayrollCost = b.PayrollCost.Add(p.Amount)
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Period < buckets[j].Period })
	for i := range buckets {
		buckets[i].NetProfit = buckets[i].Revenue.Sub(buckets[i].Expenses).Sub(buckets[i].PayrollCost)
	}
	if buckets == nil {
		buckets = []ProfitLossBucket{}
	}
	return buckets
}
