package service

import (
	"context"
	"fmt"

	"carwash/internal/model"
	"carwash/internal/repository"
)

type EmployeeRequest struct {
	Name        string `json:"name" binding:"required"`
	Position    string `json:"position" binding:"required"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	IsActive    *bool  `json:"is_active"`
	JoiningDate string `json:"joining_date" binding:"required"`
}

type EmployeeListQuery struct {
	Search     string
	Position   string
	ActiveOnly bool
	Page       int
	Limit      int
}

type EmployeeService interface {
	ListEmployees(ctx context.Context, q EmployeeListQuery) ([]model.Employee, int64, error)
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	CreateEmployee(ctx context.Context, req EmployeeRequest) (*model.Employee, error)
	UpdateEmployee(ctx context.Context, id string, req EmployeeRequest) (*model.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type employeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) ListEmployees(ctx context.Context, q EmployeeListQuery) ([]model.Employee, int64, error) {
	return s.repo.List(ctx, repository.EmployeeFilter{
		Search:     q.Search,
		Position:   q.Position,
		ActiveOnly: q.ActiveOnly,
	}, q.Page, q.Limit)
}

func (s *employeeService) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	employeeID, err := parseID(id, "employee")
	if err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	return e, nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, req EmployeeRequest) (*model.Employee, error) {
	e := &model.Employee{IsActive: true}
	if err := applyEmployee(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, id string, req EmployeeRequest) (*model.Employee, error) {
	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyEmployee(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return e, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id string) error {
	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, e.ID)
}

func applyEmployee(e *model.Employee, req EmployeeRequest) error {
	joined, err := parseDate(req.JoiningDate, "joining_date")
	if err != nil {
		return err
	}
	e.Name = req.Name
	e.Position = req.Position
	e.Phone = req.Phone
	e.Address = req.Address
	e.JoiningDate = joined
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}
	return nil
}
