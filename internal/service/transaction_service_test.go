package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- point of sale fakes ---

type fakeInventoryRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*model.InventoryItem
	movements []model.StockMovement
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: map[uuid.UUID]*model.InventoryItem{}}
}

func (r *fakeInventoryRepo) Create(_ context.Context, item *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.SKU == item.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, item *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeInventoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeInventoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *fakeInventoryRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeInventoryRepo) List(_ context.Context, _ string, _, _ int) ([]model.InventoryItem, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.InventoryItem
	for _, it := range r.items {
		out = append(out, *it)
	}
	return out, int64(len(out)), nil
}

func (r *fakeInventoryRepo) ListLowStock(_ context.Context) ([]model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.InventoryItem
	for _, it := range r.items {
		if it.LowStock() {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) CountLowStock(ctx context.Context) (int64, error) {
	items, err := r.ListLowStock(ctx)
	return int64(len(items)), err
}

func (r *fakeInventoryRepo) UpdateStock(_ context.Context, id uuid.UUID, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.CurrentStock = stock
	return nil
}

func (r *fakeInventoryRepo) CreateMovement(_ context.Context, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeInventoryRepo) ListMovements(_ context.Context, itemID uuid.UUID, _, _ int) ([]model.StockMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ItemID == itemID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeInventoryRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].CurrentStock
}

type fakeWashServiceRepo struct {
	services map[uuid.UUID]*model.WashService
}

func (r fakeWashServiceRepo) Create(_ context.Context, s *model.WashService) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.services[s.ID] = s
	return nil
}

func (r fakeWashServiceRepo) Update(_ context.Context, s *model.WashService) error {
	r.services[s.ID] = s
	return nil
}

func (r fakeWashServiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.services, id)
	return nil
}

func (r fakeWashServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.WashService, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r fakeWashServiceRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.WashService, error) {
	var out []model.WashService
	for _, id := range ids {
		if s, ok := r.services[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r fakeWashServiceRepo) List(_ context.Context, _ string, _ bool) ([]model.WashService, error) {
	var out []model.WashService
	for _, s := range r.services {
		out = append(out, *s)
	}
	return out, nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func (r fakeCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r fakeCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r fakeCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r fakeCustomerRepo) List(_ context.Context, _ string, _, _ int) ([]model.Customer, int64, error) {
	return nil, 0, nil
}

func (r fakeCustomerRepo) DeleteVehiclesByCustomerID(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (r fakeCustomerRepo) CreateVehicles(_ context.Context, _ []model.Vehicle) error {
	return nil
}

type fakeTransactionRepo struct {
	rows map[uuid.UUID]*model.Transaction
}

func (r fakeTransactionRepo) Create(_ context.Context, t *model.Transaction) error {
	cp := *t
	r.rows[t.ID] = &cp
	return nil
}

func (r fakeTransactionRepo) Update(_ context.Context, t *model.Transaction) error {
	cp := *t
	r.rows[t.ID] = &cp
	return nil
}

func (r fakeTransactionRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTransactionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return r.FindByIDWithItems(ctx, id)
}

func (r fakeTransactionRepo) List(_ context.Context, _ repository.TransactionFilter, _, _ int) ([]model.Transaction, int64, error) {
	var out []model.Transaction
	for _, t := range r.rows {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

// --- fixture ---

type posFixture struct {
	svc       *transactionService
	inventory InventoryService
	inv       *fakeInventoryRepo
	store     *fakeStore
	events    *recordingPublisher
	wash      *model.WashService
	wax       *model.InventoryItem
	customer  *model.Customer
}

func newPOSFixture(t *testing.T) *posFixture {
	t.Helper()
	store := newFakeStore()
	inv := newFakeInventoryRepo()
	events := &recordingPublisher{}

	wash := &model.WashService{ID: uuid.New(), Name: "Cuci Mobil", VehicleType: model.VehicleCar, Price: decimal.NewFromInt(50000), IsActive: true}
	wax := &model.InventoryItem{ID: uuid.New(), SKU: "WAX-01", Name: "Car Wax", Unit: "pcs", CurrentStock: 5, MinStock: 2, SalePrice: decimal.NewFromInt(25000)}
	require.NoError(t, inv.Create(context.Background(), wax))
	customer := &model.Customer{ID: uuid.New(), Name: "Budi"}

	svc := NewTransactionService(
		fakeTransactionRepo{rows: map[uuid.UUID]*model.Transaction{}},
		fakeWashServiceRepo{services: map[uuid.UUID]*model.WashService{wash.ID: wash}},
		inv,
		fakeCustomerRepo{customers: map[uuid.UUID]*model.Customer{customer.ID: customer}},
		fakeAuditRepo{s: store},
		passthroughTx{},
		events,
		zap.NewNop(),
	).(*transactionService)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }

	return &posFixture{
		svc:       svc,
		inventory: NewInventoryService(inv, fakeAuditRepo{s: store}, passthroughTx{}, events, zap.NewNop()),
		inv:       inv,
		store:     store,
		events:    events,
		wash:      wash,
		wax:       wax,
		customer:  customer,
	}
}

func (f *posFixture) sale(qtyWax int, discount int64) CreateTransactionRequest {
	items := []TransactionItemRequest{{ServiceID: f.wash.ID.String(), Quantity: 1}}
	if qtyWax > 0 {
		items = append(items, TransactionItemRequest{InventoryItemID: f.wax.ID.String(), Quantity: qtyWax})
	}
	return CreateTransactionRequest{
		CustomerID:    f.customer.ID.String(),
		PlateNumber:   "b 1234 xyz",
		Items:         items,
		Discount:      decimal.NewFromInt(discount),
		PaymentMethod: model.PaymentCash,
	}
}

func TestCreateTransaction_PricesLinesAndTakesStock(t *testing.T) {
	f := newPOSFixture(t)

	trx, err := f.svc.CreateTransaction(context.Background(), f.sale(2, 10000))
	require.NoError(t, err)

	assert.Equal(t, "B1234XYZ", trx.PlateNumber)
	assert.Equal(t, model.TransactionPaid, trx.Status)
	assert.Regexp(t, `^TRX-20240601-[0-9A-F]{6}$`, trx.Code)
	require.Len(t, trx.Items, 2)
	assertDecimal(t, 50000, trx.Items[0].LineTotal)
	assertDecimal(t, 50000, trx.Items[1].LineTotal)
	assertDecimal(t, 100000, trx.Subtotal)
	assertDecimal(t, 90000, trx.Total)

	assert.Equal(t, 3, f.inv.stock(f.wax.ID))
	require.Len(t, f.inv.movements, 1)
	assert.Equal(t, model.MovementOut, f.inv.movements[0].Type)
	assert.Equal(t, -2, f.inv.movements[0].QuantityChanged)
	assert.Equal(t, &trx.ID, f.inv.movements[0].TransactionID)

	assert.Equal(t, []string{EventTransactionCreated}, f.events.events)
	require.Len(t, f.store.audits, 1)
	assert.Equal(t, model.AuditCreateTransaction, f.store.audits[0].Action)
}

func TestCreateTransaction_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *posFixture, req *CreateTransactionRequest)
		want   error
	}{
		{
			name:   "insufficient stock",
			mutate: func(f *posFixture, req *CreateTransactionRequest) { req.Items[1].Quantity = 6 },
			want:   ErrInsufficientStock,
		},
		{
			name:   "discount above subtotal",
			mutate: func(f *posFixture, req *CreateTransactionRequest) { req.Discount = decimal.NewFromInt(200000) },
			want:   ErrInvalidInput,
		},
		{
			name:   "negative discount",
			mutate: func(f *posFixture, req *CreateTransactionRequest) { req.Discount = decimal.NewFromInt(-1) },
			want:   ErrInvalidInput,
		},
		{
			name:   "unknown customer",
			mutate: func(f *posFixture, req *CreateTransactionRequest) { req.CustomerID = uuid.NewString() },
			want:   ErrNotFound,
		},
		{
			name: "line with both references",
			mutate: func(f *posFixture, req *CreateTransactionRequest) {
				req.Items[0].InventoryItemID = f.wax.ID.String()
			},
			want: ErrInvalidInput,
		},
		{
			name:   "line with no reference",
			mutate: func(f *posFixture, req *CreateTransactionRequest) { req.Items[0].ServiceID = "" },
			want:   ErrInvalidInput,
		},
		{
			name:   "inactive service",
			mutate: func(f *posFixture, req *CreateTransactionRequest) { f.wash.IsActive = false },
			want:   ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPOSFixture(t)
			req := f.sale(1, 0)
			tt.mutate(f, &req)

			_, err := f.svc.CreateTransaction(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.events.events)
		})
	}
}

func TestRefundTransaction_RestoresStockOnce(t *testing.T) {
	f := newPOSFixture(t)
	ctx := context.Background()

	trx, err := f.svc.CreateTransaction(ctx, f.sale(2, 0))
	require.NoError(t, err)
	require.Equal(t, 3, f.inv.stock(f.wax.ID))

	refunded, err := f.svc.RefundTransaction(ctx, trx.ID.String(), VoidTransactionRequest{Reason: "wrong plate"})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundedAt)
	assert.Contains(t, refunded.Notes, "refunded: wrong plate")
	assert.Equal(t, 5, f.inv.stock(f.wax.ID))

	_, err = f.svc.CancelTransaction(ctx, trx.ID.String(), VoidTransactionRequest{Reason: "again"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 5, f.inv.stock(f.wax.ID))
	assert.Equal(t, []string{EventTransactionCreated, EventTransactionRefunded}, f.events.events)
}

func TestGetTransaction_NotFound(t *testing.T) {
	f := newPOSFixture(t)

	_, err := f.svc.GetTransaction(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetTransaction(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdjustStock(t *testing.T) {
	tests := []struct {
		name      string
		req       AdjustStockRequest
		wantStock int
		wantDelta int
		wantErr   error
	}{
		{name: "in", req: AdjustStockRequest{Type: model.MovementIn, Quantity: 4}, wantStock: 9, wantDelta: 4},
		{name: "out", req: AdjustStockRequest{Type: model.MovementOut, Quantity: 5}, wantStock: 0, wantDelta: -5},
		{name: "adjust sets level", req: AdjustStockRequest{Type: model.MovementAdjust, Quantity: 1}, wantStock: 1, wantDelta: -4},
		{name: "out below zero", req: AdjustStockRequest{Type: model.MovementOut, Quantity: 6}, wantErr: ErrInsufficientStock},
		{name: "zero quantity", req: AdjustStockRequest{Type: model.MovementIn}, wantErr: ErrInvalidInput},
		{name: "unknown type", req: AdjustStockRequest{Type: "LOST", Quantity: 1}, wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPOSFixture(t)

			item, err := f.inventory.AdjustStock(context.Background(), f.wax.ID.String(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 5, f.inv.stock(f.wax.ID))
				assert.Empty(t, f.inv.movements)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, item.CurrentStock)
			require.Len(t, f.inv.movements, 1)
			assert.Equal(t, tt.wantDelta, f.inv.movements[0].QuantityChanged)
			assert.Equal(t, tt.wantStock, f.inv.movements[0].StockAfter)
			assert.Equal(t, []string{EventStockChanged}, f.events.events)
		})
	}
}

func TestNotifyLowStock(t *testing.T) {
	f := newPOSFixture(t)
	ctx := context.Background()

	n, err := f.inventory.NotifyLowStock(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.events.events)

	_, err = f.inventory.AdjustStock(ctx, f.wax.ID.String(), AdjustStockRequest{Type: model.MovementAdjust, Quantity: 2})
	require.NoError(t, err)

	n, err = f.inventory.NotifyLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{EventStockChanged, EventLowStock}, f.events.events)
}

func TestCreateItem_DuplicateSKU(t *testing.T) {
	f := newPOSFixture(t)

	_, err := f.inventory.CreateItem(context.Background(), InventoryItemRequest{SKU: "WAX-01", Name: "Other wax"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	item, err := f.inventory.CreateItem(context.Background(), InventoryItemRequest{SKU: "SHAMPOO-01", Name: "Shampoo"})
	require.NoError(t, err)
	assert.Equal(t, "pcs", item.Unit)
}

func TestCreateTransaction_RepeatedItemLinesShareStock(t *testing.T) {
	f := newPOSFixture(t)
	ctx := context.Background()
	wax := f.wax.ID.String()

	_, err := f.svc.CreateTransaction(ctx, CreateTransactionRequest{
		Items: []TransactionItemRequest{
			{InventoryItemID: wax, Quantity: 3},
			{InventoryItemID: wax, Quantity: 4},
		},
		PaymentMethod: model.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, f.inv.stock(f.wax.ID))
	assert.Empty(t, f.inv.movements)

	trx, err := f.svc.CreateTransaction(ctx, CreateTransactionRequest{
		Items: []TransactionItemRequest{
			{InventoryItemID: wax, Quantity: 2},
			{InventoryItemID: wax, Quantity: 1},
		},
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	require.Len(t, trx.Items, 2)
	assertDecimal(t, 75000, trx.Total)
	assert.Equal(t, 2, f.inv.stock(f.wax.ID))
	require.Len(t, f.inv.movements, 1)
	assert.Equal(t, -3, f.inv.movements[0].QuantityChanged)

	_, err = f.svc.RefundTransaction(ctx, trx.ID.String(), VoidTransactionRequest{Reason: "customer left"})
	require.NoError(t, err)
	assert.Equal(t, 5, f.inv.stock(f.wax.ID))
	require.Len(t, f.inv.movements, 2)
	assert.Equal(t, 3, f.inv.movements[1].QuantityChanged)
	assert.Equal(t, 5, f.inv.movements[1].StockAfter)
}
