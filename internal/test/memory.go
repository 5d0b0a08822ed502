package test

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// MemoryStore is an in-memory implementation of the unit of work and the
// read repositories. Units of work run one at a time on a private copy of the
// state that replaces the committed state only when fn succeeds.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	state *memoryState
	fail  map[string]error
}

type memoryState struct {
	seq          int64
	users        map[int64]model.User
	products     map[int64]model.Product
	carts        map[int64]map[int64]int
	addresses    map[int64]model.Address
	coupons      map[string]model.Coupon
	wallets      map[int64]model.Wallet
	transactions []model.WalletTransaction
	orders       map[string]model.Order
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			users:     make(map[int64]model.User),
			products:  make(map[int64]model.Product),
			carts:     make(map[int64]map[int64]int),
			addresses: make(map[int64]model.Address),
			coupons:   make(map[string]model.Coupon),
			wallets:   make(map[int64]model.Wallet),
			orders:    make(map[string]model.Order),
		},
		fail: make(map[string]error),
	}
}

// FailOn makes the named store operation return err, e.g. "orders.insert".
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *MemoryStore) failure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail[op]
}

// Do runs fn on a copy of the state and commits it when fn returns nil.
func (s *MemoryStore) Do(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	work := s.state.clone()
	s.mu.Unlock()

	tx := &memoryTx{store: s, st: work}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = tx.st
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) read(fn func(st *memoryState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *MemoryStore) write(op string, fn func(st *memoryState) error) error {
	if err := s.failure(op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (st *memoryState) next() int64 {
	st.seq++
	return st.seq
}

func (st *memoryState) clone() *memoryState {
	c := &memoryState{
		seq:          st.seq,
		users:        make(map[int64]model.User, len(st.users)),
		products:     make(map[int64]model.Product, len(st.products)),
		carts:        make(map[int64]map[int64]int, len(st.carts)),
		addresses:    make(map[int64]model.Address, len(st.addresses)),
		coupons:      make(map[string]model.Coupon, len(st.coupons)),
		wallets:      make(map[int64]model.Wallet, len(st.wallets)),
		transactions: slices.Clone(st.transactions),
		orders:       make(map[string]model.Order, len(st.orders)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.carts {
		lines := make(map[int64]int, len(v))
		for id, qty := range v {
			lines[id] = qty
		}
		c.carts[k] = lines
	}
	for k, v := range st.addresses {
		c.addresses[k] = v
	}
	for k, v := range st.coupons {
		c.coupons[k] = cloneCoupon(v)
	}
	for k, v := range st.wallets {
		c.wallets[k] = v
	}
	for k, v := range st.orders {
		c.orders[k] = cloneOrder(v)
	}
	return c
}

func cloneCoupon(c model.Coupon) model.Coupon {
	c.Categories = slices.Clone(c.Categories)
	c.Products = slices.Clone(c.Products)
	c.ExcludedProducts = slices.Clone(c.ExcludedProducts)
	if c.UsageLimit != nil {
		v := *c.UsageLimit
		c.UsageLimit = &v
	}
	if c.PerUserLimit != nil {
		v := *c.PerUserLimit
		c.PerUserLimit = &v
	}
	return c
}

func cloneOrder(o model.Order) model.Order {
	o.Items = slices.Clone(o.Items)
	o.Payment.PaidAt = cloneTime(o.Payment.PaidAt)
	o.Tracking.EstimatedDeliveryAt = cloneTime(o.Tracking.EstimatedDeliveryAt)
	o.Tracking.DeliveredAt = cloneTime(o.Tracking.DeliveredAt)
	if o.DeliveryPartnerID != nil {
		v := *o.DeliveryPartnerID
		o.DeliveryPartnerID = &v
	}
	if o.CouponID != nil {
		v := *o.CouponID
		o.CouponID = &v
	}
	return o
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Users returns the user repository.
func (s *MemoryStore) Users() repository.UserRepository { return memoryUsers{s} }

// Products returns the product repository.
func (s *MemoryStore) Products() repository.ProductRepository { return memoryProducts{s} }

// Carts returns the cart repository.
func (s *MemoryStore) Carts() repository.CartRepository { return memoryCarts{s} }

// Addresses returns the address repository.
func (s *MemoryStore) Addresses() repository.AddressRepository { return memoryAddresses{s} }

// Coupons returns the coupon repository.
func (s *MemoryStore) Coupons() repository.CouponRepository { return memoryCoupons{s} }

// Orders returns the order repository.
func (s *MemoryStore) Orders() repository.OrderRepository { return memoryOrders{s} }

// Wallets returns the wallet repository.
func (s *MemoryStore) Wallets() repository.WalletRepository { return memoryWallets{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	var user model.User
	err := r.s.write("users.create", func(st *memoryState) error {
		for _, u := range st.users {
			if u.Login == login {
				return domainErrors.ErrAlreadyExists
			}
		}
		user = model.User{ID: st.next(), Login: login, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now()}
		st.users[user.ID] = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r memoryUsers) GetByLogin(_ context.Context, login string) (*model.User, error) {
	var user *model.User
	err := r.s.read(func(st *memoryState) error {
		for _, u := range st.users {
			if u.Login == login {
				found := u
				user = &found
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return user, err
}

func (r memoryUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.s.read(func(st *memoryState) error {
		u, ok := st.users[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type memoryProducts struct{ s *MemoryStore }

func (r memoryProducts) Create(_ context.Context, p *model.Product) error {
	return r.s.write("products.create", func(st *memoryState) error {
		p.ID = st.next()
		if p.State == "" {
			p.State = model.LifecycleActive
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r memoryProducts) GetByID(_ context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.s.read(func(st *memoryState) error {
		found, ok := st.products[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		p = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r memoryProducts) List(_ context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var out []model.Product
	err := r.s.read(func(st *memoryState) error {
		query := strings.ToLower(filter.Query)
		for _, p := range st.products {
			if !p.State.IsActive() {
				continue
			}
			if filter.Category != "" && p.Category != filter.Category {
				continue
			}
			if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset >= len(out) {
		return []model.Product{}, err
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, err
}

func (r memoryProducts) SetState(_ context.Context, id int64, state model.Lifecycle) error {
	return r.s.write("products.state", func(st *memoryState) error {
		p, ok := st.products[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		p.State = state
		st.products[id] = p
		return nil
	})
}

type memoryCarts struct{ s *MemoryStore }

func (r memoryCarts) Items(_ context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.s.read(func(st *memoryState) error {
		lines = cartLines(st, userID)
		return nil
	})
	return lines, err
}

func (r memoryCarts) Put(_ context.Context, userID int64, line model.CartLine) error {
	return r.s.write("carts.put", func(st *memoryState) error {
		if st.carts[userID] == nil {
			st.carts[userID] = make(map[int64]int)
		}
		st.carts[userID][line.ProductID] = line.Quantity
		return nil
	})
}

func (r memoryCarts) Remove(_ context.Context, userID, productID int64) error {
	return r.s.write("carts.remove", func(st *memoryState) error {
		delete(st.carts[userID], productID)
		return nil
	})
}

func cartLines(st *memoryState, userID int64) []model.CartLine {
	lines := make([]model.CartLine, 0, len(st.carts[userID]))
	for id, qty := range st.carts[userID] {
		lines = append(lines, model.CartLine{ProductID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

type memoryAddresses struct{ s *MemoryStore }

func (r memoryAddresses) Create(_ context.Context, a *model.Address) error {
	return r.s.write("addresses.create", func(st *memoryState) error {
		a.ID = st.next()
		st.addresses[a.ID] = *a
		return nil
	})
}

func (r memoryAddresses) ListByUser(_ context.Context, userID int64) ([]model.Address, error) {
	var out []model.Address
	err := r.s.read(func(st *memoryState) error {
		for _, a := range st.addresses {
			if a.UserID == userID {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r memoryAddresses) Get(_ context.Context, userID, id int64) (*model.Address, error) {
	var a model.Address
	err := r.s.read(func(st *memoryState) error {
		found, ok := st.addresses[id]
		if !ok || found.UserID != userID {
			return domainErrors.ErrNotFound
		}
		a = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type memoryCoupons struct{ s *MemoryStore }

func (r memoryCoupons) Create(_ context.Context, c *model.Coupon) error {
	return r.s.write("coupons.create", func(st *memoryState) error {
		if _, exists := st.coupons[c.Code]; exists {
			return domainErrors.ErrAlreadyExists
		}
		c.ID = st.next()
		if c.State == "" {
			c.State = model.LifecycleActive
		}
		st.coupons[c.Code] = cloneCoupon(*c)
		return nil
	})
}

func (r memoryCoupons) GetByCode(_ context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := r.s.read(func(st *memoryState) error {
		found, ok := st.coupons[code]
		if !ok {
			return domainErrors.ErrNotFound
		}
		c = cloneCoupon(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r memoryCoupons) List(_ context.Context) ([]model.Coupon, error) {
	var out []model.Coupon
	err := r.s.read(func(st *memoryState) error {
		for _, c := range st.coupons {
			out = append(out, cloneCoupon(c))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r memoryCoupons) SetState(_ context.Context, code string, state model.Lifecycle) error {
	return r.s.write("coupons.state", func(st *memoryState) error {
		c, ok := st.coupons[code]
		if !ok {
			return domainErrors.ErrNotFound
		}
		c.State = state
		st.coupons[code] = c
		return nil
	})
}

type memoryOrders struct{ s *MemoryStore }

func (r memoryOrders) GetByNumber(_ context.Context, number string) (*model.Order, error) {
	var o model.Order
	err := r.s.read(func(st *memoryState) error {
		found, ok := st.orders[number]
		if !ok {
			return domainErrors.ErrNotFound
		}
		o = cloneOrder(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r memoryOrders) ListByUser(_ context.Context, userID int64) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return o.UserID == userID }, 0, 0, true)
}

func (r memoryOrders) List(_ context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return status == "" || o.Status == status }, limit, offset, true)
}

func (r memoryOrders) ListAwaitingPayment(_ context.Context, createdBefore time.Time, limit int) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool {
		return o.Status == model.OrderStatusPending &&
			o.Payment.Status == model.PaymentStatusPending &&
			o.Payment.Method.Online() &&
			o.Payment.ProviderOrderID != "" &&
			o.CreatedAt.Before(createdBefore)
	}, limit, 0, false)
}

func (r memoryOrders) filter(keep func(model.Order) bool, limit, offset int, newestFirst bool) ([]model.Order, error) {
	out := []model.Order{}
	err := r.s.read(func(st *memoryState) error {
		for _, o := range st.orders {
			if keep(o) {
				out = append(out, cloneOrder(o))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	if offset >= len(out) {
		return []model.Order{}, err
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type memoryWallets struct{ s *MemoryStore }

func (r memoryWallets) GetByUser(_ context.Context, userID int64) (*model.Wallet, error) {
	var w model.Wallet
	err := r.s.read(func(st *memoryState) error {
		found, ok := st.wallets[userID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		w = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r memoryWallets) History(_ context.Context, userID int64, page, pageSize int) (*model.TransactionPage, error) {
	result := &model.TransactionPage{Items: []model.WalletTransaction{}, Page: page, PageSize: pageSize}
	err := r.s.read(func(st *memoryState) error {
		w, ok := st.wallets[userID]
		if !ok {
			return nil
		}
		var all []model.WalletTransaction
		for i := len(st.transactions) - 1; i >= 0; i-- {
			if st.transactions[i].WalletID == w.ID {
				all = append(all, st.transactions[i])
			}
		}
		result.Total = len(all)
		start := (page - 1) * pageSize
		if start >= len(all) {
			return nil
		}
		end := min(start+pageSize, len(all))
		result.Items = all[start:end]
		return nil
	})
	return result, err
}

// memoryTx exposes the working copy of a unit of work.
type memoryTx struct {
	store *MemoryStore
	st    *memoryState
}

func (t *memoryTx) Inventory() repository.InventoryStore { return txInventory{t} }
func (t *memoryTx) Coupons() repository.CouponStore      { return txCoupons{t} }
func (t *memoryTx) Wallets() repository.WalletStore      { return txWallets{t} }
func (t *memoryTx) Orders() repository.OrderStore        { return txOrders{t} }
func (t *memoryTx) Carts() repository.CartStore          { return txCarts{t} }

// Savepoint restores the working copy taken before fn when fn fails.
func (t *memoryTx) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := t.st.clone()
	if err := fn(ctx); err != nil {
		t.st = saved
		return err
	}
	return nil
}

type txInventory struct{ t *memoryTx }

func (s txInventory) Lock(_ context.Context, productID int64) (*model.Product, error) {
	if err := s.t.store.failure("inventory.lock"); err != nil {
		return nil, err
	}
	p, ok := s.t.st.products[productID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

func (s txInventory) SetStock(_ context.Context, productID int64, stock int) error {
	if err := s.t.store.failure("inventory.set"); err != nil {
		return err
	}
	p, ok := s.t.st.products[productID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stock < 0 {
		return domainErrors.ErrProductUnavailable
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	s.t.st.products[productID] = p
	return nil
}

type txCoupons struct{ t *memoryTx }

func (s txCoupons) LockByCode(_ context.Context, code string) (*model.Coupon, error) {
	c, ok := s.t.st.coupons[code]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	c = cloneCoupon(c)
	return &c, nil
}

func (s txCoupons) SetUsedCount(_ context.Context, couponID int64, usedCount int) error {
	if err := s.t.store.failure("coupons.use"); err != nil {
		return err
	}
	for code, c := range s.t.st.coupons {
		if c.ID == couponID {
			c.UsedCount = usedCount
			s.t.st.coupons[code] = c
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

type txWallets struct{ t *memoryTx }

func (s txWallets) Lock(_ context.Context, userID int64) (*model.Wallet, error) {
	w, ok := s.t.st.wallets[userID]
	if !ok {
		now := time.Now()
		w = model.Wallet{ID: s.t.st.next(), UserID: userID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
		s.t.st.wallets[userID] = w
	}
	return &w, nil
}

func (s txWallets) FindByReference(_ context.Context, walletID int64, reference string) (*model.WalletTransaction, error) {
	for _, tr := range s.t.st.transactions {
		if tr.WalletID == walletID && tr.Reference == reference {
			found := tr
			return &found, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s txWallets) Append(_ context.Context, wallet *model.Wallet, entry *model.WalletTransaction) error {
	if err := s.t.store.failure("wallets.append"); err != nil {
		return err
	}
	if entry.BalanceAfter.IsNegative() {
		return domainErrors.ErrInsufficientBalance
	}
	entry.ID = s.t.st.next()
	s.t.st.transactions = append(s.t.st.transactions, *entry)
	w := s.t.st.wallets[wallet.UserID]
	w.Balance = entry.BalanceAfter
	w.UpdatedAt = entry.CreatedAt
	s.t.st.wallets[wallet.UserID] = w
	return nil
}

type txOrders struct{ t *memoryTx }

func (s txOrders) Insert(_ context.Context, o *model.Order) error {
	if err := s.t.store.failure("orders.insert"); err != nil {
		return err
	}
	if _, exists := s.t.st.orders[o.Number]; exists {
		return domainErrors.ErrAlreadyExists
	}
	o.ID = s.t.st.next()
	s.t.st.orders[o.Number] = cloneOrder(*o)
	return nil
}

func (s txOrders) LockByNumber(_ context.Context, number string) (*model.Order, error) {
	o, ok := s.t.st.orders[number]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (s txOrders) LockByProviderOrderID(_ context.Context, providerOrderID string) (*model.Order, error) {
	return s.find(func(o model.Order) bool { return o.Payment.ProviderOrderID == providerOrderID })
}

func (s txOrders) LockByProviderPaymentID(_ context.Context, providerPaymentID string) (*model.Order, error) {
	return s.find(func(o model.Order) bool { return o.Payment.ProviderPaymentID == providerPaymentID })
}

func (s txOrders) find(match func(model.Order) bool) (*model.Order, error) {
	for _, o := range s.t.st.orders {
		if match(o) {
			found := cloneOrder(o)
			return &found, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s txOrders) Update(_ context.Context, o *model.Order) error {
	if err := s.t.store.failure("orders.update"); err != nil {
		return err
	}
	if _, ok := s.t.st.orders[o.Number]; !ok {
		return domainErrors.ErrNotFound
	}
	s.t.st.orders[o.Number] = cloneOrder(*o)
	return nil
}

type txCarts struct{ t *memoryTx }

func (s txCarts) Items(_ context.Context, userID int64) ([]model.CartLine, error) {
	return cartLines(s.t.st, userID), nil
}

func (s txCarts) Clear(_ context.Context, userID int64) error {
	if err := s.t.store.failure("carts.clear"); err != nil {
		return err
	}
	delete(s.t.st.carts, userID)
	return nil
}

var _ repository.UnitOfWork = (*MemoryStore)(nil)
