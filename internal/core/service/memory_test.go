package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// memoryState backs in-memory implementations of every port interface so the
// state machine can be exercised without Postgres. WithinTx snapshots the
// whole state and restores it when the callback fails, mirroring a database
// rollback. The per-interface wrappers below exist because the store
// interfaces reuse method names with different signatures.
type memoryState struct {
	mu sync.Mutex

	denominations map[uuid.UUID]domain.Denomination
	cash          map[uuid.UUID]int
	products      map[uuid.UUID]domain.Product
	productStock  map[uuid.UUID]int
	orders        map[uuid.UUID]domain.Order
	events        []any

	// failChangePayout makes negative cash adjustments fail, simulating a
	// float drained by a concurrent sale mid-purchase.
	failChangePayout bool

	seq int
}

type memTx struct{}

func newMemoryState() *memoryState {
	return &memoryState{
		denominations: make(map[uuid.UUID]domain.Denomination),
		cash:          make(map[uuid.UUID]int),
		products:      make(map[uuid.UUID]domain.Product),
		productStock:  make(map[uuid.UUID]int),
		orders:        make(map[uuid.UUID]domain.Order),
	}
}

func (m *memoryState) WithinTx(ctx context.Context, fn func(tx port.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(memTx{}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// lock acquires the state mutex for calls made outside a transaction.
func (m *memoryState) lock(tx port.Tx) func() {
	if tx != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

type memSnapshot struct {
	cash         map[uuid.UUID]int
	products     map[uuid.UUID]domain.Product
	productStock map[uuid.UUID]int
	orders       map[uuid.UUID]domain.Order
	events       []any
}

func (m *memoryState) snapshot() memSnapshot {
	snap := memSnapshot{
		cash:         make(map[uuid.UUID]int, len(m.cash)),
		products:     make(map[uuid.UUID]domain.Product, len(m.products)),
		productStock: make(map[uuid.UUID]int, len(m.productStock)),
		orders:       make(map[uuid.UUID]domain.Order, len(m.orders)),
		events:       append([]any(nil), m.events...),
	}
	for k, v := range m.cash {
		snap.cash[k] = v
	}
	for k, v := range m.products {
		snap.products[k] = v
	}
	for k, v := range m.productStock {
		snap.productStock[k] = v
	}
	for k, v := range m.orders {
		snap.orders[k] = copyOrder(v)
	}
	return snap
}

func (m *memoryState) restore(snap memSnapshot) {
	m.cash = snap.cash
	m.products = snap.products
	m.productStock = snap.productStock
	m.orders = snap.orders
	m.events = snap.events
}

func copyOrder(o domain.Order) domain.Order {
	o.Deposits = append([]domain.Deposit(nil), o.Deposits...)
	o.ChangeLines = append([]domain.ChangeLine(nil), o.ChangeLines...)
	o.Product = nil
	return o
}

// --- test setup helpers ---

func (m *memoryState) addDenomination(amount int64, kind domain.DenominationKind, active bool, qty int) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.denominations[id] = domain.Denomination{
		ID:        id,
		Amount:    amount,
		Kind:      kind,
		Active:    active,
		CreatedAt: time.Now(),
	}
	m.cash[id] = qty
	return id
}

func (m *memoryState) cashQty(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash[id]
}

func (m *memoryState) productQty(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.productStock[id]
}

func (m *memoryState) getProduct(id uuid.UUID) (domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.NotFound("Product with ID: %s not found", id)
	}
	qty := m.productStock[id]
	p.Stock = &domain.ProductStock{ProductID: id, Quantity: qty}
	return p, nil
}

func (m *memoryState) getOrder(id uuid.UUID) (domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.NotFound("Order with ID: %s not found", id)
	}
	o = copyOrder(o)
	if o.ProductID != nil {
		p, err := m.getProduct(*o.ProductID)
		if err != nil {
			return domain.Order{}, err
		}
		o.Product = &p
	}
	return o, nil
}

// --- port.CashStore ---

type memCashStore struct{ s *memoryState }

func (c memCashStore) ListActiveDenominations(ctx context.Context) ([]domain.Denomination, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var out []domain.Denomination
	for _, d := range c.s.denominations {
		if d.Active {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out, nil
}

func (c memCashStore) GetDenomination(ctx context.Context, tx port.Tx, id uuid.UUID) (domain.Denomination, error) {
	defer c.s.lock(tx)()
	d, ok := c.s.denominations[id]
	if !ok {
		return domain.Denomination{}, domain.NotFound("Denomination with ID: %s not found", id)
	}
	return d, nil
}

func (c memCashStore) GetStock(ctx context.Context, tx port.Tx) ([]domain.CashStock, error) {
	defer c.s.lock(tx)()

	var out []domain.CashStock
	for id, qty := range c.s.cash {
		d := c.s.denominations[id]
		if !d.Active {
			continue
		}
		out = append(out, domain.CashStock{
			DenominationID: id,
			Amount:         d.Amount,
			Kind:           d.Kind,
			Quantity:       qty,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out, nil
}

func (c memCashStore) Adjust(ctx context.Context, tx port.Tx, denominationID uuid.UUID, deltaQty int) (domain.CashStock, error) {
	defer c.s.lock(tx)()

	d, ok := c.s.denominations[denominationID]
	if !ok {
		return domain.CashStock{}, domain.NotFound("Denomination with ID: %s not found", denominationID)
	}
	if c.s.failChangePayout && deltaQty < 0 {
		return domain.CashStock{}, domain.Conflict("Insufficient cash stock. Current: %d, Requested: %d", c.s.cash[denominationID], deltaQty)
	}

	current := c.s.cash[denominationID]
	newQty := current + deltaQty
	if newQty < 0 {
		return domain.CashStock{}, domain.Conflict("Insufficient cash stock. Current: %d, Requested: %d", current, deltaQty)
	}
	c.s.cash[denominationID] = newQty

	return domain.CashStock{
		DenominationID: denominationID,
		Amount:         d.Amount,
		Kind:           d.Kind,
		Quantity:       newQty,
	}, nil
}

// --- port.ProductStore ---

type memProductStore struct{ s *memoryState }

func (p memProductStore) Create(ctx context.Context, tx port.Tx, prod domain.Product) (domain.Product, error) {
	defer p.s.lock(tx)()

	for _, existing := range p.s.products {
		if existing.SKU == prod.SKU {
			return domain.Product{}, domain.Conflict("Product with SKU: %s already exists", prod.SKU)
		}
	}

	prod.ID = uuid.New()
	prod.CreatedAt = time.Now()
	prod.Stock = nil
	p.s.products[prod.ID] = prod
	p.s.productStock[prod.ID] = 0

	prod.Stock = &domain.ProductStock{ProductID: prod.ID}
	return prod, nil
}

func (p memProductStore) ListActive(ctx context.Context) ([]domain.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	var out []domain.Product
	for id, prod := range p.s.products {
		if !prod.Active {
			continue
		}
		qty := p.s.productStock[id]
		prod.Stock = &domain.ProductStock{ProductID: id, Quantity: qty}
		out = append(out, prod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (p memProductStore) Count(ctx context.Context) (int, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return len(p.s.products), nil
}

func (p memProductStore) Get(ctx context.Context, tx port.Tx, id uuid.UUID) (domain.Product, error) {
	defer p.s.lock(tx)()
	return p.s.getProduct(id)
}

func (p memProductStore) Save(ctx context.Context, tx port.Tx, prod domain.Product) error {
	defer p.s.lock(tx)()
	if _, ok := p.s.products[prod.ID]; !ok {
		return domain.NotFound("Product with ID: %s not found", prod.ID)
	}
	prod.Stock = nil
	p.s.products[prod.ID] = prod
	return nil
}

func (p memProductStore) Adjust(ctx context.Context, tx port.Tx, productID uuid.UUID, deltaQty int) (domain.ProductStock, error) {
	defer p.s.lock(tx)()

	if _, ok := p.s.products[productID]; !ok {
		return domain.ProductStock{}, domain.NotFound("Product with ID: %s not found", productID)
	}

	current := p.s.productStock[productID]
	newQty := current + deltaQty
	if newQty < 0 {
		return domain.ProductStock{}, domain.Conflict("Insufficient stock. Current: %d, Requested: %d", current, deltaQty)
	}
	p.s.productStock[productID] = newQty
	return domain.ProductStock{ProductID: productID, Quantity: newQty}, nil
}

// --- port.OrderStore ---

type memOrderStore struct{ s *memoryState }

func (o memOrderStore) Create(ctx context.Context, tx port.Tx) (domain.Order, error) {
	defer o.s.lock(tx)()

	o.s.seq++
	order := domain.Order{
		ID:          uuid.New(),
		Status:      domain.OrderInProgress,
		Deposits:    []domain.Deposit{},
		ChangeLines: []domain.ChangeLine{},
		CreatedAt:   time.Now().Add(time.Duration(o.s.seq) * time.Millisecond),
	}
	o.s.orders[order.ID] = copyOrder(order)
	return order, nil
}

func (o memOrderStore) Get(ctx context.Context, tx port.Tx, id uuid.UUID) (domain.Order, error) {
	defer o.s.lock(tx)()
	return o.s.getOrder(id)
}

func (o memOrderStore) List(ctx context.Context) ([]domain.Order, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	var out []domain.Order
	for id := range o.s.orders {
		order, err := o.s.getOrder(id)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (o memOrderStore) AddDeposit(ctx context.Context, tx port.Tx, d domain.Deposit) error {
	defer o.s.lock(tx)()

	order, ok := o.s.orders[d.OrderID]
	if !ok {
		return domain.NotFound("Order with ID: %s not found", d.OrderID)
	}
	d.Amount = o.s.denominations[d.DenominationID].Amount
	d.CreatedAt = time.Now()
	order.Deposits = append(order.Deposits, d)
	o.s.orders[d.OrderID] = order
	return nil
}

func (o memOrderStore) AddChangeLine(ctx context.Context, tx port.Tx, cl domain.ChangeLine) error {
	defer o.s.lock(tx)()

	order, ok := o.s.orders[cl.OrderID]
	if !ok {
		return domain.NotFound("Order with ID: %s not found", cl.OrderID)
	}
	cl.Amount = o.s.denominations[cl.DenominationID].Amount
	cl.CreatedAt = time.Now()
	order.ChangeLines = append(order.ChangeLines, cl)
	o.s.orders[cl.OrderID] = order
	return nil
}

func (o memOrderStore) Save(ctx context.Context, tx port.Tx, in domain.Order) error {
	defer o.s.lock(tx)()

	stored, ok := o.s.orders[in.ID]
	if !ok {
		return domain.NotFound("Order with ID: %s not found", in.ID)
	}
	stored.Status = in.Status
	stored.ProductID = in.ProductID
	stored.PaidAmount = in.PaidAmount
	stored.CreditAmount = in.CreditAmount
	stored.ChangeAmount = in.ChangeAmount
	stored.Remark = in.Remark
	o.s.orders[in.ID] = stored
	return nil
}

// --- port.EventOutbox ---

type memOutbox struct{ s *memoryState }

func (o memOutbox) Enqueue(ctx context.Context, tx port.Tx, url string, payload any) error {
	defer o.s.lock(tx)()
	o.s.events = append(o.s.events, payload)
	return nil
}
