package service

import (
	"context"
	"encoding/json"
	"fmt"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PositionSalaryRequest struct {
	Position      string                     `json:"position" binding:"required"`
	MonthlySalary decimal.Decimal            `json:"monthly_salary"`
	DailyRate     decimal.Decimal            `json:"daily_rate"`
	Allowances    map[string]decimal.Decimal `json:"allowances"`
}

type PositionSalaryService interface {
	List(ctx context.Context) ([]model.PositionSalary, error)
	Get(ctx context.Context, id string) (*model.PositionSalary, error)
	Create(ctx context.Context, req PositionSalaryRequest) (*model.PositionSalary, error)
	Update(ctx context.Context, id string, req PositionSalaryRequest) (*model.PositionSalary, error)
	Delete(ctx context.Context, id string) error
}

type positionSalaryService struct {
	repo repository.PositionSalaryRepository
}

func NewPositionSalaryService(repo repository.PositionSalaryRepository) PositionSalaryService {
	return &positionSalaryService{repo: repo}
}

func (s *positionSalaryService) List(ctx context.Context) ([]model.PositionSalary, error) {
	return s.repo.ListAll(ctx)
}

func (s *positionSalaryService) Get(ctx context.Context, id string) (*model.PositionSalary, error) {
	psID, err := parseID(id, "position salary")
	if err != nil {
		return nil, err
	}
	ps, err := s.repo.FindByID(ctx, psID)
	if err != nil {
		return nil, lookupErr(err, "position salary")
	}
	return ps, nil
}

func (s *positionSalaryService) Create(ctx context.Context, req PositionSalaryRequest) (*model.PositionSalary, error) {
	ps := &model.PositionSalary{}
	if err := applyPositionSalary(ps, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, ps); err != nil {
		if isDuplicate(err) {
			return nil, invalid("salary for position %q already exists", req.Position)
		}
		return nil, fmt.Errorf("failed to create position salary: %w", err)
	}
	return ps, nil
}

func (s *positionSalaryService) Update(ctx context.Context, id string, req PositionSalaryRequest) (*model.PositionSalary, error) {
	ps, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPositionSalary(ps, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, ps); err != nil {
		if isDuplicate(err) {
			return nil, invalid("salary for position %q already exists", req.Position)
		}
		return nil, fmt.Errorf("failed to update position salary: %w", err)
	}
	return ps, nil
}

func (s *positionSalaryService) Delete(ctx context.Context, id string) error {
	ps, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, ps.ID)
}

func applyPositionSalary(ps *model.PositionSalary, req PositionSalaryRequest) error {
	if req.MonthlySalary.IsNegative() || req.DailyRate.IsNegative() {
		return invalid("salary rates cannot be negative")
	}
	ps.Position = req.Position
	ps.MonthlySalary = req.MonthlySalary
	ps.DailyRate = req.DailyRate
	ps.Allowances = nil
	if len(req.Allowances) > 0 {
		// stored as JSON numbers, not decimal strings
		numbers := make(map[string]json.Number, len(req.Allowances))
		for k, v := range req.Allowances {
			numbers[k] = json.Number(v.String())
		}
		raw, err := json.Marshal(numbers)
		if err != nil {
			return err
		}
		ps.Allowances = datatypes.JSON(raw)
	}
	return nil
}
