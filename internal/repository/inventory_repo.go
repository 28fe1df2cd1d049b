package repository

import (
	"context"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	Update(ctx context.Context, item *model.InventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	List(ctx context.Context, search string, page, limit int) ([]model.InventoryItem, int64, error)
	ListLowStock(ctx context.Context) ([]model.InventoryItem, error)
	CountLowStock(ctx context.Context) (int64, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	CreateMovement(ctx context.Context, m *model.StockMovement) error
	ListMovements(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.InventoryItem{}).Error
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context, search string, page, limit int) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			db = db.Where("name ILIKE ? OR sku ILIKE ?", "%"+search+"%", "%"+search+"%")
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.InventoryItem{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Scopes(scope).Order("name asc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := GetDB(ctx, r.db).Where("current_stock <= min_stock").
		Order("current_stock asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inventoryRepository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("current_stock <= min_stock").Count(&n).Error
	return n, err
}

func (r *inventoryRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("id = ?", id).Update("current_stock", stock).Error
}

func (r *inventoryRepository) CreateMovement(ctx context.Context, m *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *inventoryRepository) ListMovements(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var rows []model.StockMovement
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.StockMovement{}).Where("item_id = ?", itemID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("item_id = ?", itemID).Order("created_at desc").
		Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
