package repository

import (
	"context"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
	DeleteVehiclesByCustomerID(ctx context.Context, customerID uuid.UUID) error
	CreateVehicles(ctx context.Context, vehicles []model.Vehicle) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Omit("Vehicles").Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Customer{}).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).Preload("Vehicles").First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// List matches search against name, phone, email and any vehicle plate number.
func (r *customerRepository) List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		like := "%" + search + "%"
		return db.Where(
			"name ILIKE ? OR phone ILIKE ? OR email ILIKE ? OR id IN (SELECT customer_id FROM vehicles WHERE plate_number ILIKE ?)",
			like, like, like, like,
		)
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Customer{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Model(&model.Customer{}).Scopes(scope).Preload("Vehicles").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (r *customerRepository) DeleteVehiclesByCustomerID(ctx context.Context, customerID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("customer_id = ?", customerID).Delete(&model.Vehicle{}).Error
}

func (r *customerRepository) CreateVehicles(ctx context.Context, vehicles []model.Vehicle) error {
	if len(vehicles) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&vehicles).Error
}
