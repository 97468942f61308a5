package storage

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"tabletap/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type balanceKey struct {
	userID       string
	restaurantID string
}

type cartEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore implements every order-svc repository in process memory under a
// single lock. It serves local runs without infrastructure and the concurrency
// tests of the confirmation and ledger paths.
type MemoryStore struct {
	mu          sync.Mutex
	restaurants map[string]domain.Restaurant
	menu        map[string]domain.MenuItem
	categories  map[string]domain.Category
	profiles    map[string]domain.Profile
	accounts    map[string]domain.Account
	pending     map[string]domain.PendingOrder
	orders      map[string]domain.Order
	balances    map[balanceKey]domain.UserBalance
	jobs        map[string]domain.LedgerJob
	carts       map[string]cartEntry
	subscribers map[string]map[chan domain.OrderEvent]struct{}
	published   []domain.OrderEvent
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		restaurants: map[string]domain.Restaurant{},
		menu:        map[string]domain.MenuItem{},
		categories:  map[string]domain.Category{},
		profiles:    map[string]domain.Profile{},
		accounts:    map[string]domain.Account{},
		pending:     map[string]domain.PendingOrder{},
		orders:      map[string]domain.Order{},
		balances:    map[balanceKey]domain.UserBalance{},
		jobs:        map[string]domain.LedgerJob{},
		carts:       map[string]cartEntry{},
		subscribers: map[string]map[chan domain.OrderEvent]struct{}{},
		now:         time.Now,
	}
}

func (m *MemoryStore) CreateRestaurant(_ context.Context, rest *domain.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rest.ID == "" {
		rest.ID = uuid.NewString()
	}
	rest.CreatedAt = m.now()
	m.restaurants[rest.ID] = *rest
	return nil
}

func (m *MemoryStore) ListRestaurants(_ context.Context) ([]domain.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	restaurants := make([]domain.Restaurant, 0, len(m.restaurants))
	for _, rest := range m.restaurants {
		restaurants = append(restaurants, rest)
	}
	sort.Slice(restaurants, func(i, j int) bool { return restaurants[i].CreatedAt.After(restaurants[j].CreatedAt) })
	return restaurants, nil
}

func (m *MemoryStore) GetRestaurant(_ context.Context, id string) (*domain.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rest, ok := m.restaurants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rest, nil
}

func (m *MemoryStore) UpdateRestaurant(_ context.Context, rest *domain.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.restaurants[rest.ID]
	if !ok {
		return domain.ErrNotFound
	}
	rest.CreatedAt = existing.CreatedAt
	m.restaurants[rest.ID] = *rest
	return nil
}

func (m *MemoryStore) DeleteRestaurant(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[id]; !ok {
		return 0, nil
	}
	delete(m.restaurants, id)
	for itemID, item := range m.menu {
		if item.RestaurantID == id {
			delete(m.menu, itemID)
		}
	}
	for categoryID, c := range m.categories {
		if c.RestaurantID == id {
			delete(m.categories, categoryID)
		}
	}
	return 1, nil
}

func (m *MemoryStore) CreateMenuItem(_ context.Context, item *domain.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[item.RestaurantID]; !ok {
		return domain.ErrNotFound
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = m.now()
	m.menu[item.ID] = *item
	return nil
}

func (m *MemoryStore) ListMenuItems(_ context.Context, restaurantID string) ([]domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []domain.MenuItem{}
	for _, item := range m.menu {
		if item.RestaurantID == restaurantID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (m *MemoryStore) GetMenuItem(_ context.Context, restaurantID, itemID string) (*domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.menu[itemID]
	if !ok || item.RestaurantID != restaurantID {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (m *MemoryStore) UpdateMenuItem(_ context.Context, item *domain.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.menu[item.ID]
	if !ok || existing.RestaurantID != item.RestaurantID {
		return domain.ErrNotFound
	}
	existing.Name = item.Name
	existing.Description = item.Description
	existing.Category = item.Category
	existing.Price = item.Price
	existing.ImageURL = item.ImageURL
	m.menu[item.ID] = existing
	return nil
}

func (m *MemoryStore) DeleteMenuItem(_ context.Context, restaurantID, itemID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.menu[itemID]
	if !ok || item.RestaurantID != restaurantID {
		return 0, nil
	}
	delete(m.menu, itemID)
	return 1, nil
}

func (m *MemoryStore) SetDiscountPrice(_ context.Context, restaurantID, itemID string, price *decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.menu[itemID]
	if !ok || item.RestaurantID != restaurantID {
		return domain.ErrNotFound
	}
	item.DiscountPrice = nil
	if price != nil {
		value := *price
		item.DiscountPrice = &value
	}
	m.menu[itemID] = item
	return nil
}

func (m *MemoryStore) ListCategories(_ context.Context, restaurantID string) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	categories := []domain.Category{}
	for _, c := range m.categories {
		if c.RestaurantID == restaurantID {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *MemoryStore) categoryNamed(restaurantID, name string) bool {
	for _, c := range m.categories {
		if c.RestaurantID == restaurantID && c.Name == name {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateCategory(_ context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[c.RestaurantID]; !ok {
		return domain.ErrNotFound
	}
	if m.categoryNamed(c.RestaurantID, c.Name) {
		return domain.ErrCategoryExists
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = m.now()
	m.categories[c.ID] = *c
	return nil
}

func (m *MemoryStore) RenameCategory(_ context.Context, restaurantID, categoryID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[categoryID]
	if !ok || c.RestaurantID != restaurantID {
		return domain.ErrNotFound
	}
	if c.Name == name {
		return nil
	}
	if m.categoryNamed(restaurantID, name) {
		return domain.ErrCategoryExists
	}
	m.refile(restaurantID, c.Name, name)
	c.Name = name
	m.categories[categoryID] = c
	return nil
}

func (m *MemoryStore) DeleteCategory(_ context.Context, restaurantID, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[categoryID]
	if !ok || c.RestaurantID != restaurantID {
		return domain.ErrNotFound
	}
	m.refile(restaurantID, c.Name, "")
	delete(m.categories, categoryID)
	return nil
}

// refile moves a restaurant's items from one category name to another. Callers hold mu.
func (m *MemoryStore) refile(restaurantID, from, to string) {
	for id, item := range m.menu {
		if item.RestaurantID == restaurantID && item.Category == from {
			item.Category = to
			m.menu[id] = item
		}
	}
}

func (m *MemoryStore) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) UpsertProfile(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = m.now()
	}
	m.profiles[p.UserID] = *p
	return nil
}

func (m *MemoryStore) SetProfileRole(_ context.Context, userID string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Role = role
	m.profiles[userID] = p
	return nil
}

func (m *MemoryStore) ListProfiles(_ context.Context, restaurantID string) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profiles := []domain.Profile{}
	for _, p := range m.profiles {
		if restaurantID == "" || p.RestaurantID == restaurantID {
			profiles = append(profiles, p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CreatedAt.After(profiles[j].CreatedAt) })
	return profiles, nil
}

func (m *MemoryStore) DeleteProfile(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
	return nil
}

func (m *MemoryStore) CreateAccount(_ context.Context, login, password, displayName string) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	handle := strings.ToLower(strings.TrimSpace(login))
	for _, account := range m.accounts {
		if account.LoginHandle == handle {
			return nil, domain.ErrLoginTaken
		}
	}
	account := domain.Account{
		UID:          uuid.NewString(),
		LoginHandle:  handle,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		RoleClaim:    domain.RoleCustomer,
		CreatedAt:    m.now(),
	}
	m.accounts[account.UID] = account
	return &account, nil
}

func (m *MemoryStore) DeleteAccount(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, uid)
	return nil
}

func (m *MemoryStore) SetRoleClaim(_ context.Context, uid string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[uid]
	if !ok {
		return domain.ErrNotFound
	}
	account.RoleClaim = role
	m.accounts[uid] = account
	return nil
}

func (m *MemoryStore) Authenticate(_ context.Context, login, password string) (*domain.Account, error) {
	m.mu.Lock()
	var found *domain.Account
	handle := strings.ToLower(strings.TrimSpace(login))
	for _, account := range m.accounts {
		if account.LoginHandle == handle {
			account := account
			found = &account
			break
		}
	}
	m.mu.Unlock()

	if found == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return found, nil
}

// HasAccount reports whether uid still exists; tests use it to observe compensation.
func (m *MemoryStore) HasAccount(uid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[uid]
	return ok
}

func (m *MemoryStore) CreatePendingOrder(_ context.Context, order *domain.PendingOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order.Status = domain.OrderStatusPending
	order.CreatedAt = m.now()
	m.pending[order.ID] = clonePending(*order)
	return nil
}

func (m *MemoryStore) GetPendingOrder(_ context.Context, id string) (*domain.PendingOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.pending[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	order = clonePending(order)
	return &order, nil
}

func (m *MemoryStore) ConfirmPendingOrder(_ context.Context, id, confirmedBy string, at time.Time) (*domain.Order, *domain.LedgerJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.pending[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if pending.Status != domain.OrderStatusPending {
		return nil, nil, domain.ErrAlreadyConfirmed
	}

	pending.Status = domain.OrderStatusConfirmed
	pending.ConfirmedAt = &at
	pending.ConfirmedBy = confirmedBy
	m.pending[id] = pending

	order := pending.Finalize(confirmedBy, at)
	m.orders[order.ID] = *order

	job := domain.LedgerJob{
		ID:           order.ID,
		UserID:       order.UserID,
		RestaurantID: order.RestaurantID,
		OrderTotal:   order.OriginalTotal,
		BalanceUsed:  order.BalanceUsed,
		Status:       domain.LedgerJobQueued,
		CreatedAt:    at,
	}
	m.jobs[job.ID] = job
	return order, &job, nil
}

func (m *MemoryStore) CreateManualOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; ok {
		return domain.ErrConflict
	}
	m.orders[order.ID] = *order
	return nil
}

func (m *MemoryStore) ListOrders(_ context.Context, restaurantID string, since time.Time) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := []domain.Order{}
	for _, order := range m.orders {
		if order.RestaurantID == restaurantID && !order.WaiterConfirmedAt.Before(since) {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].WaiterConfirmedAt.After(orders[j].WaiterConfirmedAt) })
	return orders, nil
}

func (m *MemoryStore) GetBalance(_ context.Context, userID, restaurantID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[balanceKey{userID, restaurantID}].Balance, nil
}

func (m *MemoryStore) ListBalances(_ context.Context, userID string) ([]domain.UserBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balances := []domain.UserBalance{}
	for key, balance := range m.balances {
		if key.userID == userID {
			balances = append(balances, balance)
		}
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].LastUpdated.After(balances[j].LastUpdated) })
	return balances, nil
}

func (m *MemoryStore) UpdateBalance(_ context.Context, userID, restaurantID, jobID string,
	compute func(domain.BalanceState) decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var job domain.LedgerJob
	if jobID != "" {
		var ok bool
		if job, ok = m.jobs[jobID]; !ok {
			return false, domain.ErrNotFound
		}
		if job.Status == domain.LedgerJobApplied {
			return false, nil
		}
	}

	key := balanceKey{userID, restaurantID}
	balance, ok := m.balances[key]
	if !ok {
		balance = domain.UserBalance{UserID: userID, RestaurantID: restaurantID, Balance: decimal.Zero}
	}
	state := domain.BalanceState{Current: balance.Balance}
	if rest, ok := m.restaurants[restaurantID]; ok {
		state.LoyaltyPercentage = rest.LoyaltyPercentage
		state.RestaurantName = rest.Name
	}

	balance.Balance = compute(state)
	if state.RestaurantName != "" {
		balance.RestaurantName = state.RestaurantName
	}
	balance.LastUpdated = m.now()
	m.balances[key] = balance

	if jobID != "" {
		appliedAt := m.now()
		job.Status = domain.LedgerJobApplied
		job.Attempts++
		job.LastError = ""
		job.AppliedAt = &appliedAt
		m.jobs[jobID] = job
	}
	return true, nil
}

func (m *MemoryStore) ListQueuedJobs(_ context.Context, limit int) ([]domain.LedgerJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := []domain.LedgerJob{}
	for _, job := range m.jobs {
		if job.Status == domain.LedgerJobQueued {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (m *MemoryStore) RecordJobFailure(_ context.Context, jobID, cause string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status != domain.LedgerJobQueued {
		return nil
	}
	job.Attempts++
	job.LastError = cause
	m.jobs[jobID] = job
	return nil
}

func (m *MemoryStore) LoadCart(_ context.Context, key string) (*domain.Cart, error) {
	m.mu.Lock()
	entry, ok := m.carts[key]
	if ok && !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.carts, key)
		ok = false
	}
	m.mu.Unlock()

	cart := domain.NewCart()
	if !ok {
		return cart, nil
	}
	if err := json.Unmarshal(entry.payload, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (m *MemoryStore) SaveCart(_ context.Context, key string, cart *domain.Cart, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart.UpdatedAt = m.now()
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	entry := cartEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.carts[key] = entry
	return nil
}

func (m *MemoryStore) DeleteCart(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, key)
	return nil
}

// PublishOrderEvent records the event and delivers it to in-process subscribers
// without blocking on slow readers.
func (m *MemoryStore) PublishOrderEvent(_ context.Context, event domain.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	for ch := range m.subscribers[event.OrderID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MemoryStore) Subscribe(_ context.Context, orderID string) (<-chan domain.OrderEvent, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan domain.OrderEvent, 8)
	if m.subscribers[orderID] == nil {
		m.subscribers[orderID] = map[chan domain.OrderEvent]struct{}{}
	}
	m.subscribers[orderID][ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subscribers[orderID], ch)
			if len(m.subscribers[orderID]) == 0 {
				delete(m.subscribers, orderID)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// Published returns a copy of every event passed to PublishOrderEvent.
func (m *MemoryStore) Published() []domain.OrderEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OrderEvent(nil), m.published...)
}

func (m *MemoryStore) SubscriberCount(orderID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers[orderID])
}

func clonePending(order domain.PendingOrder) domain.PendingOrder {
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	return order
}
