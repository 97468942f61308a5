package service

import (
	"context"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"

	"github.com/shopspring/decimal"
)

type RestaurantRepository interface {
	CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)
	UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error
	DeleteRestaurant(ctx context.Context, id string) (int64, error)
}

type MenuRepository interface {
	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	ListMenuItems(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, restaurantID, itemID string) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error
	DeleteMenuItem(ctx context.Context, restaurantID, itemID string) (int64, error)
	SetDiscountPrice(ctx context.Context, restaurantID, itemID string, price *decimal.Decimal) error
	ListCategories(ctx context.Context, restaurantID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	RenameCategory(ctx context.Context, restaurantID, categoryID, name string) error
	DeleteCategory(ctx context.Context, restaurantID, categoryID string) error
}

type ProfileRepository interface {
	identity.ProfileStore
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
	SetProfileRole(ctx context.Context, userID string, role domain.Role) error
	ListProfiles(ctx context.Context, restaurantID string) ([]domain.Profile, error)
	DeleteProfile(ctx context.Context, userID string) error
}

// IdentityProvider owns credentials and the role claim carried in tokens.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, login, password, displayName string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
	SetRoleClaim(ctx context.Context, uid string, role domain.Role) error
	Authenticate(ctx context.Context, login, password string) (*domain.Account, error)
}

type CartStore interface {
	LoadCart(ctx context.Context, key string) (*domain.Cart, error)
	SaveCart(ctx context.Context, key string, cart *domain.Cart, ttl time.Duration) error
	DeleteCart(ctx context.Context, key string) error
}

type OrderRepository interface {
	CreatePendingOrder(ctx context.Context, order *domain.PendingOrder) error
	GetPendingOrder(ctx context.Context, id string) (*domain.PendingOrder, error)
	ConfirmPendingOrder(ctx context.Context, id, confirmedBy string, at time.Time) (*domain.Order, *domain.LedgerJob, error)
	CreateManualOrder(ctx context.Context, order *domain.Order) error
	ListOrders(ctx context.Context, restaurantID string, since time.Time) ([]domain.Order, error)
}

type LedgerRepository interface {
	GetBalance(ctx context.Context, userID, restaurantID string) (decimal.Decimal, error)
	ListBalances(ctx context.Context, userID string) ([]domain.UserBalance, error)
	UpdateBalance(ctx context.Context, userID, restaurantID, jobID string, compute func(domain.BalanceState) decimal.Decimal) (bool, error)
	ListQueuedJobs(ctx context.Context, limit int) ([]domain.LedgerJob, error)
	RecordJobFailure(ctx context.Context, jobID, cause string) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

// StatusBus delivers live order transitions. Subscribe's cancel func must be
// called by the subscriber; it closes the returned channel.
type StatusBus interface {
	EventPublisher
	Subscribe(ctx context.Context, orderID string) (<-chan domain.OrderEvent, func(), error)
}

type CartServiceInterface interface {
	Get(ctx context.Context, session *identity.Session) (*domain.Cart, error)
	AddItem(ctx context.Context, session *identity.Session, restaurantID, itemID string, replace bool) (*domain.Cart, error)
	RemoveItem(ctx context.Context, session *identity.Session, itemID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, session *identity.Session, itemID string, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context, session *identity.Session) error
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, session *identity.Session, tableNumber string, balanceToApply decimal.Decimal) (*CreatedOrder, error)
	GetPendingOrder(ctx context.Context, session *identity.Session, id string) (*domain.PendingOrder, error)
	QRCode(ctx context.Context, session *identity.Session, id string) ([]byte, error)
	ConfirmOrder(ctx context.Context, session *identity.Session, token string) (*domain.Order, error)
	CreateManualOrder(ctx context.Context, session *identity.Session, req ManualOrderRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, session *identity.Session, restaurantID string, since time.Time) ([]domain.Order, error)
	WatchOrder(ctx context.Context, session *identity.Session, id string) (<-chan domain.OrderEvent, func(), error)
}

type LedgerServiceInterface interface {
	Balances(ctx context.Context, session *identity.Session) ([]domain.UserBalance, error)
	PendingJobs(ctx context.Context, session *identity.Session) ([]domain.LedgerJob, error)
}

type AccountServiceInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, login, password string) (*AuthResult, error)
	CreateStaffAccount(ctx context.Context, session *identity.Session, req StaffRequest) (string, error)
	ListStaff(ctx context.Context, session *identity.Session) ([]domain.Profile, error)
	SetRole(ctx context.Context, session *identity.Session, uid string, role string) error
	ListUsers(ctx context.Context, session *identity.Session) ([]domain.Profile, error)
	CreateRestaurantWithOwner(ctx context.Context, session *identity.Session, req RestaurantOwnerRequest) (string, string, error)
}

type RestaurantServiceInterface interface {
	List(ctx context.Context) ([]domain.Restaurant, error)
	Get(ctx context.Context, id string) (*domain.Restaurant, error)
	Update(ctx context.Context, session *identity.Session, rest *domain.Restaurant) error
	Menu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
	Categories(ctx context.Context, restaurantID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, session *identity.Session, restaurantID, name string) (*domain.Category, error)
	RenameCategory(ctx context.Context, session *identity.Session, restaurantID, categoryID, name string) error
	DeleteCategory(ctx context.Context, session *identity.Session, restaurantID, categoryID string) error
	CreateMenuItem(ctx context.Context, session *identity.Session, item *domain.MenuItem) error
	UpdateMenuItem(ctx context.Context, session *identity.Session, item *domain.MenuItem) error
	DeleteMenuItem(ctx context.Context, session *identity.Session, restaurantID, itemID string) error
	ApplyDiscount(ctx context.Context, session *identity.Session, restaurantID, itemID string, kind domain.DiscountType, value decimal.Decimal) (*domain.MenuItem, error)
	RemoveDiscount(ctx context.Context, session *identity.Session, restaurantID, itemID string) (*domain.MenuItem, error)
}

var (
	_ CartServiceInterface       = (*CartService)(nil)
	_ OrderServiceInterface      = (*OrderService)(nil)
	_ LedgerServiceInterface     = (*Ledger)(nil)
	_ AccountServiceInterface    = (*AccountService)(nil)
	_ RestaurantServiceInterface = (*RestaurantService)(nil)
)
