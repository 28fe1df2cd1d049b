package service

import (
	"context"
	"fmt"
	"strings"

	"carwash/internal/model"
	"carwash/internal/repository"
)

type VehicleRequest struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	Type        string `json:"type" binding:"required,oneof=car motorcycle truck"`
	Brand       string `json:"brand"`
	Color       string `json:"color"`
}

type CustomerRequest struct {
	Name     string           `json:"name" binding:"required"`
	Phone    string           `json:"phone"`
	Email    string           `json:"email" binding:"omitempty,email"`
	Address  string           `json:"address"`
	Notes    string           `json:"notes"`
	Vehicles []VehicleRequest `json:"vehicles" binding:"dive"`
}

type CustomerService interface {
	ListCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	CreateCustomer(ctx context.Context, req CustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type customerService struct {
	repo      repository.CustomerRepository
	txManager repository.TransactionManager
}

func NewCustomerService(repo repository.CustomerRepository, txManager repository.TransactionManager) CustomerService {
	return &customerService{repo: repo, txManager: txManager}
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	return s.repo.List(ctx, strings.TrimSpace(search), page, limit)
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	customerID, err := parseID(id, "customer")
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		return nil, lookupErr(err, "customer")
	}
	return c, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CustomerRequest) (*model.Customer, error) {
	c := &model.Customer{}
	applyCustomer(c, req)
	c.Vehicles = toVehicles(req.Vehicles)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

// UpdateCustomer replaces the vehicle list as a whole.
func (s *customerService) UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (*model.Customer, error) {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCustomer(c, req)

	vehicles := toVehicles(req.Vehicles)
	for i := range vehicles {
		vehicles[i].CustomerID = c.ID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, c); err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		if err := s.repo.DeleteVehiclesByCustomerID(txCtx, c.ID); err != nil {
			return fmt.Errorf("failed to clear vehicles: %w", err)
		}
		if len(vehicles) > 0 {
			if err := s.repo.CreateVehicles(txCtx, vehicles); err != nil {
				return fmt.Errorf("failed to save vehicles: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.Vehicles = vehicles
	return c, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, c.ID)
}

func applyCustomer(c *model.Customer, req CustomerRequest) {
	c.Name = req.Name
	c.Phone = req.Phone
	c.Email = req.Email
	c.Address = req.Address
	c.Notes = req.Notes
}

func toVehicles(reqs []VehicleRequest) []model.Vehicle {
	vehicles := make([]model.Vehicle, 0, len(reqs))
	for _, v := range reqs {
		vehicles = append(vehicles, model.Vehicle{
			PlateNumber: strings.ToUpper(strings.ReplaceAll(v.PlateNumber, " ", "")),
			Type:        v.Type,
			Brand:       v.Brand,
			Color:       v.Color,
		})
	}
	return vehicles
}
