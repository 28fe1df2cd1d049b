package service

import (
	"context"
	"fmt"
	"strings"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DTOs
type InventoryItemRequest struct {
	SKU       string          `json:"sku" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Unit      string          `json:"unit"`
	MinStock  int             `json:"min_stock" binding:"min=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// AdjustStockRequest: IN and OUT move by Quantity, ADJUST sets the level to Quantity.
type AdjustStockRequest struct {
	Type     string `json:"type" binding:"required,oneof=IN OUT ADJUST"`
	Quantity int    `json:"quantity" binding:"min=0"`
	Note     string `json:"note"`
}

type InventoryService interface {
	ListItems(ctx context.Context, search string, page, limit int) ([]model.InventoryItem, int64, error)
	GetItem(ctx context.Context, id string) (*model.InventoryItem, error)
	CreateItem(ctx context.Context, req InventoryItemRequest) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, id string, req InventoryItemRequest) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, req AdjustStockRequest) (*model.InventoryItem, error)
	ListMovements(ctx context.Context, id string, page, limit int) ([]model.StockMovement, int64, error)
	ListLowStock(ctx context.Context) ([]model.InventoryItem, error)
	NotifyLowStock(ctx context.Context) (int, error)
}

type inventoryService struct {
	repo      repository.InventoryRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	events    EventPublisher
	log       *zap.Logger
}

func NewInventoryService(
	repo repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	log *zap.Logger,
) InventoryService {
	return &inventoryService{
		repo:      repo,
		auditRepo: auditRepo,
		txManager: txManager,
		events:    publisherOrNoop(events),
		log:       log,
	}
}

func (s *inventoryService) ListItems(ctx context.Context, search string, page, limit int) ([]model.InventoryItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, strings.TrimSpace(search), page, limit)
}

func (s *inventoryService) GetItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	itemID, err := parseID(id, "inventory item")
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, lookupErr(err, "inventory item")
	}
	return item, nil
}

func (s *inventoryService) CreateItem(ctx context.Context, req InventoryItemRequest) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	applyInventoryItem(item, req)
	if err := s.repo.Create(ctx, item); err != nil {
		if isDuplicate(err) {
			return nil, invalid("sku %q already exists", req.SKU)
		}
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return item, nil
}

// UpdateItem edits the catalog fields. Stock only changes through AdjustStock and sales.
func (s *inventoryService) UpdateItem(ctx context.Context, id string, req InventoryItemRequest) (*model.InventoryItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInventoryItem(item, req)
	if err := s.repo.Update(ctx, item); err != nil {
		if isDuplicate(err) {
			return nil, invalid("sku %q already exists", req.SKU)
		}
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, item.ID)
}

func (s *inventoryService) AdjustStock(ctx context.Context, id string, req AdjustStockRequest) (*model.InventoryItem, error) {
	itemID, err := parseID(id, "inventory item")
	if err != nil {
		return nil, err
	}

	var item *model.InventoryItem
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		item, findErr = s.repo.FindByIDForUpdate(txCtx, itemID)
		if findErr != nil {
			return lookupErr(findErr, "inventory item")
		}

		var delta int
		switch req.Type {
		case model.MovementIn:
			delta = req.Quantity
		case model.MovementOut:
			delta = -req.Quantity
		case model.MovementAdjust:
			delta = req.Quantity - item.CurrentStock
		default:
			return invalid("unknown movement type %q", req.Type)
		}
		if req.Type != model.MovementAdjust && req.Quantity == 0 {
			return invalid("quantity must be greater than zero")
		}

		if err := changeStock(txCtx, s.repo, item, req.Type, delta, req.Note, nil); err != nil {
			return err
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditAdjustStock, item.ID.String(), item.Name, map[string]interface{}{
			"type":        req.Type,
			"quantity":    req.Quantity,
			"stock_after": item.CurrentStock,
			"note":        req.Note,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishStock(item)
	return item, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, id string, page, limit int) ([]model.StockMovement, int64, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListMovements(ctx, item.ID, page, limit)
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	return s.repo.ListLowStock(ctx)
}

// NotifyLowStock broadcasts the current low-stock list and returns its size.
func (s *inventoryService) NotifyLowStock(ctx context.Context) (int, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list low stock items: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	payload := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		payload = append(payload, map[string]interface{}{
			"id":            it.ID.String(),
			"sku":           it.SKU,
			"name":          it.Name,
			"current_stock": it.CurrentStock,
			"min_stock":     it.MinStock,
		})
	}
	s.events.Publish(EventLowStock, map[string]interface{}{"items": payload})
	s.log.Info("low stock notification sent", zap.Int("items", len(items)))
	return len(items), nil
}

func (s *inventoryService) publishStock(item *model.InventoryItem) {
	s.events.Publish(EventStockChanged, map[string]interface{}{
		"id":            item.ID.String(),
		"sku":           item.SKU,
		"current_stock": item.CurrentStock,
		"low_stock":     item.LowStock(),
	})
}

func applyInventoryItem(item *model.InventoryItem, req InventoryItemRequest) {
	item.SKU = req.SKU
	item.Name = req.Name
	item.Unit = req.Unit
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	item.MinStock = req.MinStock
	item.UnitCost = req.UnitCost
	item.SalePrice = req.SalePrice
}

// changeStock applies delta to a row-locked item and records the movement.
// It must run inside a transaction that locked item.
func changeStock(ctx context.Context, repo repository.InventoryRepository, item *model.InventoryItem, movementType string, delta int, note string, transactionID *uuid.UUID) error {
	next := item.CurrentStock + delta
	if next < 0 {
		return fmt.Errorf("%w: %s has %d %s left", ErrInsufficientStock, item.Name, item.CurrentStock, item.Unit)
	}
	if err := repo.UpdateStock(ctx, item.ID, next); err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if err := repo.CreateMovement(ctx, &model.StockMovement{
		ItemID:          item.ID,
		TransactionID:   transactionID,
		Type:            movementType,
		QuantityChanged: delta,
		StockAfter:      next,
		Note:            note,
		CreatedBy:       actorID(ctx),
	}); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	item.CurrentStock = next
	return nil
}
