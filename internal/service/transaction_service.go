package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionItemRequest struct {
	ServiceID       string `json:"service_id"`
	InventoryItemID string `json:"inventory_item_id"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
}

type CreateTransactionRequest struct {
	CustomerID    string                   `json:"customer_id"`
	PlateNumber   string                   `json:"plate_number"`
	Items         []TransactionItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount      decimal.Decimal          `json:"discount"`
	PaymentMethod string                   `json:"payment_method" binding:"required,oneof=cash transfer qris card"`
	Notes         string                   `json:"notes"`
}

type VoidTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type TransactionListQuery struct {
	Status     string
	CustomerID string
	From       string
	To         string
	Search     string
	Page       int
	Limit      int
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, q TransactionListQuery) ([]model.Transaction, int64, error)
	RefundTransaction(ctx context.Context, id string, req VoidTransactionRequest) (*model.Transaction, error)
	CancelTransaction(ctx context.Context, id string, req VoidTransactionRequest) (*model.Transaction, error)
}

type transactionService struct {
	repo          repository.TransactionRepository
	serviceRepo   repository.WashServiceRepository
	inventoryRepo repository.InventoryRepository
	customerRepo  repository.CustomerRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	events        EventPublisher
	log           *zap.Logger
	now           func() time.Time
}

func NewTransactionService(
	repo repository.TransactionRepository,
	serviceRepo repository.WashServiceRepository,
	inventoryRepo repository.InventoryRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	log *zap.Logger,
) TransactionService {
	return &transactionService{
		repo:          repo,
		serviceRepo:   serviceRepo,
		inventoryRepo: inventoryRepo,
		customerRepo:  customerRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		events:        publisherOrNoop(events),
		log:           log,
		now:           time.Now,
	}
}

// CreateTransaction prices every line from the catalog, takes sold inventory out of
// stock and stores the paid receipt, all in one transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*model.Transaction, error) {
	if req.Discount.IsNegative() {
		return nil, invalid("discount cannot be negative")
	}

	now := s.now()
	t := &model.Transaction{
		ID:            uuid.New(),
		PlateNumber:   strings.ToUpper(strings.ReplaceAll(req.PlateNumber, " ", "")),
		CashierID:     actorID(ctx),
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		Status:        model.TransactionPaid,
		Notes:         req.Notes,
		PaidAt:        now,
	}
	t.Code = transactionCode(now, t.ID)
	if req.CustomerID != "" {
		id, err := parseID(req.CustomerID, "customer")
		if err != nil {
			return nil, err
		}
		t.CustomerID = &id
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if t.CustomerID != nil {
			if _, err := s.customerRepo.FindByID(txCtx, *t.CustomerID); err != nil {
				return lookupErr(err, "customer")
			}
		}

		// One locked row per item so repeated lines check against the running stock.
		type stockLine struct {
			item *model.InventoryItem
			qty  int
		}
		var stock []*stockLine
		locked := map[uuid.UUID]*stockLine{}

		subtotal := decimal.Zero
		for i, line := range req.Items {
			item := model.TransactionItem{TransactionID: t.ID, Quantity: line.Quantity}
			switch {
			case line.ServiceID != "" && line.InventoryItemID != "":
				return invalid("item %d must reference either a service or an inventory item", i+1)
			case line.ServiceID != "":
				id, err := parseID(line.ServiceID, "service")
				if err != nil {
					return err
				}
				svc, err := s.serviceRepo.FindByID(txCtx, id)
				if err != nil {
					return lookupErr(err, "service")
				}
				if !svc.IsActive {
					return invalid("service %q is not active", svc.Name)
				}
				item.ServiceID = &svc.ID
				item.Name = svc.Name
				item.UnitPrice = svc.Price
			case line.InventoryItemID != "":
				id, err := parseID(line.InventoryItemID, "inventory item")
				if err != nil {
					return err
				}
				sl, ok := locked[id]
				if !ok {
					inv, err := s.inventoryRepo.FindByIDForUpdate(txCtx, id)
					if err != nil {
						return lookupErr(err, "inventory item")
					}
					sl = &stockLine{item: inv}
					locked[id] = sl
					stock = append(stock, sl)
				}
				sl.qty += line.Quantity
				item.InventoryItemID = &sl.item.ID
				item.Name = sl.item.Name
				item.UnitPrice = sl.item.SalePrice
			default:
				return invalid("item %d must reference a service or an inventory item", i+1)
			}
			item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(item.LineTotal)
			t.Items = append(t.Items, item)
		}

		if req.Discount.GreaterThan(subtotal) {
			return invalid("discount exceeds subtotal")
		}
		t.Subtotal = subtotal
		t.Total = subtotal.Sub(req.Discount)

		if err := s.repo.Create(txCtx, t); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		for _, sl := range stock {
			if err := changeStock(txCtx, s.inventoryRepo, sl.item, model.MovementOut, -sl.qty, "sold in "+t.Code, &t.ID); err != nil {
				return err
			}
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditCreateTransaction, t.ID.String(), t.Code, map[string]interface{}{
			"total":          t.Total.String(),
			"items":          len(t.Items),
			"payment_method": t.PaymentMethod,
		})
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EventTransactionCreated, map[string]interface{}{
		"id":           t.ID.String(),
		"code":         t.Code,
		"total":        t.Total.String(),
		"plate_number": t.PlateNumber,
	})
	return t, nil
}

func transactionCode(now time.Time, id uuid.UUID) string {
	return "TRX-" + now.Format("20060102") + "-" + strings.ToUpper(id.String()[:6])
}

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	txID, err := parseID(id, "transaction")
	if err != nil {
		return nil, err
	}
	t, err := s.repo.FindByIDWithItems(ctx, txID)
	if err != nil {
		return nil, lookupErr(err, "transaction")
	}
	return t, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, q TransactionListQuery) ([]model.Transaction, int64, error) {
	filter := repository.TransactionFilter{Status: q.Status, Search: strings.TrimSpace(q.Search)}
	if q.CustomerID != "" {
		id, err := parseID(q.CustomerID, "customer")
		if err != nil {
			return nil, 0, err
		}
		filter.CustomerID = &id
	}
	var err error
	if filter.From, err = parseOptionalDate(q.From, "from"); err != nil {
		return nil, 0, err
	}
	if filter.To, err = parseOptionalDate(q.To, "to"); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter, q.Page, q.Limit)
}

func (s *transactionService) RefundTransaction(ctx context.Context, id string, req VoidTransactionRequest) (*model.Transaction, error) {
	return s.void(ctx, id, model.TransactionRefunded, req.Reason)
}

func (s *transactionService) CancelTransaction(ctx context.Context, id string, req VoidTransactionRequest) (*model.Transaction, error) {
	return s.void(ctx, id, model.TransactionCancelled, req.Reason)
}

// void moves a paid transaction to refunded or cancelled and puts sold stock back.
func (s *transactionService) void(ctx context.Context, id, status, reason string) (*model.Transaction, error) {
	txID, err := parseID(id, "transaction")
	if err != nil {
		return nil, err
	}

	var t *model.Transaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		t, findErr = s.repo.FindByIDForUpdate(txCtx, txID)
		if findErr != nil {
			return lookupErr(findErr, "transaction")
		}
		if t.Status != model.TransactionPaid {
			return fmt.Errorf("%w: transaction is already %s", ErrInvalidTransition, t.Status)
		}

		returned := map[uuid.UUID]int{}
		var order []uuid.UUID
		for _, line := range t.Items {
			if line.InventoryItemID == nil {
				continue
			}
			if _, seen := returned[*line.InventoryItemID]; !seen {
				order = append(order, *line.InventoryItemID)
			}
			returned[*line.InventoryItemID] += line.Quantity
		}
		for _, itemID := range order {
			inv, err := s.inventoryRepo.FindByIDForUpdate(txCtx, itemID)
			if err != nil {
				if isNotFound(err) {
					s.log.Warn("inventory item of voided line no longer exists",
						zap.String("transaction", t.Code), zap.String("item_id", itemID.String()))
					continue
				}
				return err
			}
			if err := changeStock(txCtx, s.inventoryRepo, inv, model.MovementIn, returned[itemID], status+" "+t.Code, &t.ID); err != nil {
				return err
			}
		}

		now := s.now()
		t.Status = status
		t.RefundedAt = &now
		if reason != "" {
			t.Notes = strings.TrimSpace(t.Notes + "\n" + status + ": " + reason)
		}
		if err := s.repo.Update(txCtx, t); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditRefundTransaction, t.ID.String(), t.Code,
			map[string]string{"status": status, "reason": reason})
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EventTransactionRefunded, map[string]interface{}{
		"id":     t.ID.String(),
		"code":   t.Code,
		"status": t.Status,
		"total":  t.Total.String(),
	})
	return t, nil
}
