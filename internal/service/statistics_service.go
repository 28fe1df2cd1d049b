package service

import (
	"context"
	"time"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardResponse struct {
	Date              string                 `json:"date"`
	RevenueToday      decimal.Decimal        `json:"revenue_today"`
	TransactionsToday int64                  `json:"transactions_today"`
	ActiveEmployees   int64                  `json:"active_employees"`
	LowStockItems     int64                  `json:"low_stock_items"`
	TopServices       []model.ServiceRanking `json:"top_services"`
}

type StatisticsResponse struct {
	StartDate     string                 `json:"start_date"`
	EndDate       string                 `json:"end_date"`
	Revenue       decimal.Decimal        `json:"revenue"`
	Transactions  int64                  `json:"transactions"`
	AverageTicket decimal.Decimal        `json:"average_ticket"`
	TopServices   []model.ServiceRanking `json:"top_services"`
}

type StatisticsService interface {
	Dashboard(ctx context.Context) (*DashboardResponse, error)
	GetStatistics(ctx context.Context, startDate, endDate string) (*StatisticsResponse, error)
}

type statisticsService struct {
	repo          repository.StatisticsRepository
	employeeRepo  repository.EmployeeRepository
	inventoryRepo repository.InventoryRepository
	now           func() time.Time
}

func NewStatisticsService(repo repository.StatisticsRepository, employeeRepo repository.EmployeeRepository, inventoryRepo repository.InventoryRepository) StatisticsService {
	return &statisticsService{repo: repo, employeeRepo: employeeRepo, inventoryRepo: inventoryRepo, now: time.Now}
}

const topServicesLimit = 5

// Dashboard covers today for sales and the last 30 days for the service ranking.
func (s *statisticsService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	today := truncateDay(s.now())
	tomorrow := today.AddDate(0, 0, 1)

	revenue, count, err := s.repo.SalesBetween(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}
	active, err := s.employeeRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.inventoryRepo.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopServices(ctx, today.AddDate(0, 0, -29), tomorrow, topServicesLimit)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		Date:              today.Format(dateLayout),
		RevenueToday:      revenue,
		TransactionsToday: count,
		ActiveEmployees:   active,
		LowStockItems:     lowStock,
		TopServices:       nonNilRankings(top),
	}, nil
}

func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate string) (*StatisticsResponse, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	until := end.AddDate(0, 0, 1)

	revenue, count, err := s.repo.SalesBetween(ctx, start, until)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopServices(ctx, start, until, topServicesLimit)
	if err != nil {
		return nil, err
	}

	res := &StatisticsResponse{
		StartDate:    startDate,
		EndDate:      endDate,
		Revenue:      revenue,
		Transactions: count,
		TopServices:  nonNilRankings(top),
	}
	if count > 0 {
		res.AverageTicket = revenue.Div(decimal.NewFromInt(count)).Round(2)
	}
	return res, nil
}

func nonNilRankings(r []model.ServiceRanking) []model.ServiceRanking {
	if r == nil {
		return []model.ServiceRanking{}
	}
	return r
}
