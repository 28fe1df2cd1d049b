package service

import (
	"context"
	"fmt"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/shopspring/decimal"
)

type WashServiceRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	VehicleType     string          `json:"vehicle_type" binding:"required,oneof=car motorcycle truck"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes" binding:"min=0"`
	IsActive        *bool           `json:"is_active"`
}

type CatalogService interface {
	ListServices(ctx context.Context, vehicleType string, activeOnly bool) ([]model.WashService, error)
	GetService(ctx context.Context, id string) (*model.WashService, error)
	CreateService(ctx context.Context, req WashServiceRequest) (*model.WashService, error)
	UpdateService(ctx context.Context, id string, req WashServiceRequest) (*model.WashService, error)
	DeleteService(ctx context.Context, id string) error
}

type catalogService struct {
	repo repository.WashServiceRepository
}

func NewCatalogService(repo repository.WashServiceRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListServices(ctx context.Context, vehicleType string, activeOnly bool) ([]model.WashService, error) {
	return s.repo.List(ctx, vehicleType, activeOnly)
}

func (s *catalogService) GetService(ctx context.Context, id string) (*model.WashService, error) {
	serviceID, err := parseID(id, "service")
	if err != nil {
		return nil, err
	}
	ws, err := s.repo.FindByID(ctx, serviceID)
	if err != nil {
		return nil, lookupErr(err, "service")
	}
	return ws, nil
}

func (s *catalogService) CreateService(ctx context.Context, req WashServiceRequest) (*model.WashService, error) {
	ws := &model.WashService{IsActive: true}
	if err := applyWashService(ws, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return ws, nil
}

func (s *catalogService) UpdateService(ctx context.Context, id string, req WashServiceRequest) (*model.WashService, error) {
	ws, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyWashService(ws, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return ws, nil
}

func (s *catalogService) DeleteService(ctx context.Context, id string) error {
	ws, err := s.GetService(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, ws.ID)
}

func applyWashService(ws *model.WashService, req WashServiceRequest) error {
	if !req.Price.IsPositive() {
		return invalid("price must be greater than zero")
	}
	ws.Name = req.Name
	ws.Description = req.Description
	ws.VehicleType = req.VehicleType
	ws.Price = req.Price
	ws.DurationMinutes = req.DurationMinutes
	if req.IsActive != nil {
		ws.IsActive = *req.IsActive
	}
	return nil
}
