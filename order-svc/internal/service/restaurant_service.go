package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"

	"github.com/shopspring/decimal"
)

func validateLoyalty(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return domain.InvalidArgument("loyalty_percentage must be between 0 and 100")
	}
	return nil
}

type RestaurantService struct {
	restaurants RestaurantRepository
	menu        MenuRepository
}

func NewRestaurantService(restaurants RestaurantRepository, menu MenuRepository) *RestaurantService {
	return &RestaurantService{restaurants: restaurants, menu: menu}
}

func (s *RestaurantService) List(ctx context.Context) ([]domain.Restaurant, error) {
	return s.restaurants.ListRestaurants(ctx)
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	return s.restaurants.GetRestaurant(ctx, id)
}

func (s *RestaurantService) Update(ctx context.Context, session *identity.Session, rest *domain.Restaurant) error {
	if err := s.authorize(session, rest.ID); err != nil {
		return err
	}
	if strings.TrimSpace(rest.Name) == "" {
		return domain.InvalidArgument("name required")
	}
	if err := validateLoyalty(rest.LoyaltyPercentage); err != nil {
		return err
	}
	return s.restaurants.UpdateRestaurant(ctx, rest)
}

func (s *RestaurantService) Menu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	return s.menu.ListMenuItems(ctx, restaurantID)
}

func (s *RestaurantService) Categories(ctx context.Context, restaurantID string) ([]domain.Category, error) {
	return s.menu.ListCategories(ctx, restaurantID)
}

const maxCategoryName = 64

func categoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxCategoryName {
		return "", domain.InvalidArgument(fmt.Sprintf("category name must be 1 to %d characters", maxCategoryName))
	}
	return name, nil
}

func (s *RestaurantService) CreateCategory(ctx context.Context, session *identity.Session, restaurantID, name string) (*domain.Category, error) {
	if err := s.authorize(session, restaurantID); err != nil {
		return nil, err
	}
	name, err := categoryName(name)
	if err != nil {
		return nil, err
	}
	category := &domain.Category{RestaurantID: restaurantID, Name: name}
	if err := s.menu.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// RenameCategory also refiles the category's menu items under the new name.
func (s *RestaurantService) RenameCategory(ctx context.Context, session *identity.Session, restaurantID, categoryID, name string) error {
	if err := s.authorize(session, restaurantID); err != nil {
		return err
	}
	name, err := categoryName(name)
	if err != nil {
		return err
	}
	return s.menu.RenameCategory(ctx, restaurantID, categoryID, name)
}

// DeleteCategory leaves the category's items on the menu without a category.
func (s *RestaurantService) DeleteCategory(ctx context.Context, session *identity.Session, restaurantID, categoryID string) error {
	if err := s.authorize(session, restaurantID); err != nil {
		return err
	}
	return s.menu.DeleteCategory(ctx, restaurantID, categoryID)
}

func (s *RestaurantService) CreateMenuItem(ctx context.Context, session *identity.Session, item *domain.MenuItem) error {
	if err := s.authorize(session, item.RestaurantID); err != nil {
		return err
	}
	if err := validateMenuItem(item); err != nil {
		return err
	}
	item.DiscountPrice = nil
	if err := s.fileUnder(ctx, item); err != nil {
		return err
	}
	return s.menu.CreateMenuItem(ctx, item)
}

func (s *RestaurantService) UpdateMenuItem(ctx context.Context, session *identity.Session, item *domain.MenuItem) error {
	if err := s.authorize(session, item.RestaurantID); err != nil {
		return err
	}
	if err := validateMenuItem(item); err != nil {
		return err
	}
	if err := s.fileUnder(ctx, item); err != nil {
		return err
	}
	return s.menu.UpdateMenuItem(ctx, item)
}

// fileUnder registers the item's category when the restaurant has no record of it yet.
func (s *RestaurantService) fileUnder(ctx context.Context, item *domain.MenuItem) error {
	item.Category = strings.TrimSpace(item.Category)
	if item.Category == "" {
		return nil
	}
	err := s.menu.CreateCategory(ctx, &domain.Category{RestaurantID: item.RestaurantID, Name: item.Category})
	if err != nil && !errors.Is(err, domain.ErrCategoryExists) {
		return err
	}
	return nil
}

func (s *RestaurantService) DeleteMenuItem(ctx context.Context, session *identity.Session, restaurantID, itemID string) error {
	if err := s.authorize(session, restaurantID); err != nil {
		return err
	}
	rows, err := s.menu.DeleteMenuItem(ctx, restaurantID, itemID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *RestaurantService) ApplyDiscount(ctx context.Context, session *identity.Session, restaurantID, itemID string, kind domain.DiscountType, value decimal.Decimal) (*domain.MenuItem, error) {
	if err := s.authorize(session, restaurantID); err != nil {
		return nil, err
	}
	if value.IsNegative() {
		return nil, domain.InvalidArgument("discount value must not be negative")
	}

	item, err := s.menu.GetMenuItem(ctx, restaurantID, itemID)
	if err != nil {
		return nil, err
	}
	price, err := domain.DiscountedPrice(item.Price, kind, value)
	if err != nil {
		return nil, domain.InvalidArgument("discount type must be percent or amount")
	}
	if err := s.menu.SetDiscountPrice(ctx, restaurantID, itemID, &price); err != nil {
		return nil, err
	}
	item.DiscountPrice = &price
	return item, nil
}

func (s *RestaurantService) RemoveDiscount(ctx context.Context, session *identity.Session, restaurantID, itemID string) (*domain.MenuItem, error) {
	if err := s.authorize(session, restaurantID); err != nil {
		return nil, err
	}
	item, err := s.menu.GetMenuItem(ctx, restaurantID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.menu.SetDiscountPrice(ctx, restaurantID, itemID, nil); err != nil {
		return nil, err
	}
	item.DiscountPrice = nil
	return item, nil
}

func (s *RestaurantService) authorize(session *identity.Session, restaurantID string) error {
	if !session.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !identity.CanManageRestaurant(session.Profile, restaurantID) {
		return domain.ErrPermissionDenied
	}
	return nil
}

func validateMenuItem(item *domain.MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return domain.InvalidArgument("name required")
	}
	if item.Price.IsNegative() {
		return domain.InvalidArgument("price must not be negative")
	}
	return nil
}
