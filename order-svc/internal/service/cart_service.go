package service

import (
	"context"
	"strings"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"

	"github.com/rs/zerolog"
)

// CartService applies cart mutations and writes every resulting snapshot through
// to the cart store. Prices and names always come from the menu, never the client.
type CartService struct {
	carts       CartStore
	menu        MenuRepository
	restaurants RestaurantRepository
	anonTTL     time.Duration
	logger      zerolog.Logger
}

func NewCartService(carts CartStore, menu MenuRepository, restaurants RestaurantRepository, anonTTL time.Duration, logger zerolog.Logger) *CartService {
	return &CartService{
		carts:       carts,
		menu:        menu,
		restaurants: restaurants,
		anonTTL:     anonTTL,
		logger:      logger,
	}
}

func CartKey(session *identity.Session) (string, error) {
	if session.Authenticated() {
		return "cart:user:" + session.UserID(), nil
	}
	if session != nil && strings.TrimSpace(session.AnonymousID) != "" {
		return "cart:anon:" + strings.TrimSpace(session.AnonymousID), nil
	}
	return "", domain.InvalidArgument("cart session required")
}

func (s *CartService) ttlFor(session *identity.Session) time.Duration {
	if session.Authenticated() {
		return 0
	}
	return s.anonTTL
}

func (s *CartService) Get(ctx context.Context, session *identity.Session) (*domain.Cart, error) {
	key, err := CartKey(session)
	if err != nil {
		return nil, err
	}
	return s.carts.LoadCart(ctx, key)
}

func (s *CartService) mutate(ctx context.Context, session *identity.Session, fn func(*domain.Cart) error) (*domain.Cart, error) {
	key, err := CartKey(session)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.LoadCart(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.carts.SaveCart(ctx, key, cart, s.ttlFor(session)); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, session *identity.Session, restaurantID, itemID string, replace bool) (*domain.Cart, error) {
	if restaurantID == "" || itemID == "" {
		return nil, domain.InvalidArgument("restaurant_id and item_id required")
	}
	item, err := s.menu.GetMenuItem(ctx, restaurantID, itemID)
	if err != nil {
		return nil, err
	}
	rest, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, session, func(cart *domain.Cart) error {
		return cart.Add(rest.ID, rest.Name, domain.CartItem{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.EffectivePrice(),
		}, replace)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, session *identity.Session, itemID string) (*domain.Cart, error) {
	return s.mutate(ctx, session, func(cart *domain.Cart) error {
		cart.Remove(itemID)
		return nil
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, session *identity.Session, itemID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, session, func(cart *domain.Cart) error {
		cart.UpdateQuantity(itemID, quantity)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, session *identity.Session) error {
	key, err := CartKey(session)
	if err != nil {
		return err
	}
	return s.carts.DeleteCart(ctx, key)
}
