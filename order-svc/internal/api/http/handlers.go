package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"
	"tabletap/order-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Handler struct {
	Carts       service.CartServiceInterface
	Orders      service.OrderServiceInterface
	Ledger      service.LedgerServiceInterface
	Accounts    service.AccountServiceInterface
	Restaurants service.RestaurantServiceInterface
	Resolver    *identity.Resolver
	Limiter     *LoginLimiter
	Logger      zerolog.Logger
}

func NewHandler(
	carts service.CartServiceInterface,
	orders service.OrderServiceInterface,
	ledger service.LedgerServiceInterface,
	accounts service.AccountServiceInterface,
	restaurants service.RestaurantServiceInterface,
	resolver *identity.Resolver,
	limiter *LoginLimiter,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		Carts:       carts,
		Orders:      orders,
		Ledger:      ledger,
		Accounts:    accounts,
		Restaurants: restaurants,
		Resolver:    resolver,
		Limiter:     limiter,
		Logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(h.logRequests, h.authenticate)

	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/auth/register", h.register).Methods("POST")
	r.Handle("/api/auth/login", h.Limiter.Middleware(http.HandlerFunc(h.login))).Methods("POST")
	r.HandleFunc("/api/me", h.me).Methods("GET")
	r.HandleFunc("/api/me/balances", h.balances).Methods("GET")

	r.HandleFunc("/api/cart", h.getCart).Methods("GET")
	r.HandleFunc("/api/cart", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/cart/items", h.addCartItem).Methods("POST")
	r.HandleFunc("/api/cart/items/{itemId}", h.updateCartItem).Methods("PUT")
	r.HandleFunc("/api/cart/items/{itemId}", h.removeCartItem).Methods("DELETE")

	r.HandleFunc("/api/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/orders/confirm", h.confirmOrder).Methods("POST")
	r.HandleFunc("/api/orders/manual", h.createManualOrder).Methods("POST")
	r.HandleFunc("/api/pending-orders/{id}", h.getPendingOrder).Methods("GET")
	r.HandleFunc("/api/pending-orders/{id}/qrcode", h.getPendingOrderQRCode).Methods("GET")
	r.HandleFunc("/api/pending-orders/{id}/events", h.streamOrderEvents).Methods("GET")

	r.HandleFunc("/api/restaurants", h.getRestaurants).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}", h.getRestaurant).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}", h.updateRestaurant).Methods("PUT")
	r.HandleFunc("/api/restaurants/{id}/orders", h.getRestaurantOrders).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}/categories", h.getCategories).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}/categories", h.createCategory).Methods("POST")
	r.HandleFunc("/api/restaurants/{id}/categories/{categoryId}", h.renameCategory).Methods("PUT")
	r.HandleFunc("/api/restaurants/{id}/categories/{categoryId}", h.deleteCategory).Methods("DELETE")
	r.HandleFunc("/api/restaurants/{id}/menu", h.getMenu).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}/menu", h.createMenuItem).Methods("POST")
	r.HandleFunc("/api/restaurants/{id}/menu/{itemId}", h.updateMenuItem).Methods("PUT")
	r.HandleFunc("/api/restaurants/{id}/menu/{itemId}", h.deleteMenuItem).Methods("DELETE")
	r.HandleFunc("/api/restaurants/{id}/menu/{itemId}/discount", h.applyDiscount).Methods("POST")
	r.HandleFunc("/api/restaurants/{id}/menu/{itemId}/discount", h.removeDiscount).Methods("DELETE")

	r.HandleFunc("/api/staff", h.createStaff).Methods("POST")
	r.HandleFunc("/api/staff", h.listStaff).Methods("GET")
	r.HandleFunc("/api/admin/roles", h.setRole).Methods("POST")
	r.HandleFunc("/api/admin/users", h.listUsers).Methods("GET")
	r.HandleFunc("/api/admin/restaurants", h.createRestaurantWithOwner).Methods("POST")
	r.HandleFunc("/api/admin/ledger/pending", h.pendingLedgerJobs).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	return true
}

// auth

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.Accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.Accounts.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if !session.Authenticated() {
		writeError(w, h.Logger, domain.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, session.Profile)
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Ledger.Balances(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// cart

type addCartItemRequest struct {
	RestaurantID string `json:"restaurant_id"`
	ItemID       string `json:"item_id"`
	Replace      bool   `json:"replace"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.Get(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cart, err := h.Carts.AddItem(r.Context(), sessionFrom(r), req.RestaurantID, req.ItemID, req.Replace)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cart, err := h.Carts.UpdateQuantity(r.Context(), sessionFrom(r), mux.Vars(r)["itemId"], req.Quantity)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.RemoveItem(r.Context(), sessionFrom(r), mux.Vars(r)["itemId"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.Clear(r.Context(), sessionFrom(r)); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// orders

type createOrderRequest struct {
	TableNumber    string          `json:"table_number"`
	BalanceToApply decimal.Decimal `json:"balance_to_apply"`
}

type confirmOrderRequest struct {
	Token string `json:"token"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.Orders.CreateOrder(r.Context(), sessionFrom(r), req.TableNumber, req.BalanceToApply)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	var req confirmOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	order, err := h.Orders.ConfirmOrder(r.Context(), sessionFrom(r), req.Token)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) createManualOrder(w http.ResponseWriter, r *http.Request) {
	var req service.ManualOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	order, err := h.Orders.CreateManualOrder(r.Context(), sessionFrom(r), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getPendingOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.GetPendingOrder(r.Context(), sessionFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getPendingOrderQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Orders.QRCode(r.Context(), sessionFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// getRestaurantOrders lists finalized orders; ?since= takes an RFC3339 timestamp.
func (h *Handler) getRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(w, "since must be an RFC3339 timestamp")
			return
		}
		since = parsed
	}
	orders, err := h.Orders.ListOrders(r.Context(), sessionFrom(r), mux.Vars(r)["id"], since)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// restaurants and menu

type discountRequest struct {
	Type  domain.DiscountType `json:"type"`
	Value decimal.Decimal     `json:"value"`
}

func (h *Handler) getRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.List(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	rest, err := h.Restaurants.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	var rest domain.Restaurant
	if !decodeBody(w, r, &rest) {
		return
	}
	rest.ID = mux.Vars(r)["id"]
	if err := h.Restaurants.Update(r.Context(), sessionFrom(r), &rest); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) getCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Restaurants.Categories(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	category, err := h.Restaurants.CreateCategory(r.Context(), sessionFrom(r), mux.Vars(r)["id"], req.Name)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) renameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	if err := h.Restaurants.RenameCategory(r.Context(), sessionFrom(r), vars["id"], vars["categoryId"], req.Name); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Restaurants.DeleteCategory(r.Context(), sessionFrom(r), vars["id"], vars["categoryId"]); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Restaurants.Menu(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if !decodeBody(w, r, &item) {
		return
	}
	item.RestaurantID = mux.Vars(r)["id"]
	if err := h.Restaurants.CreateMenuItem(r.Context(), sessionFrom(r), &item); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if !decodeBody(w, r, &item) {
		return
	}
	vars := mux.Vars(r)
	item.RestaurantID = vars["id"]
	item.ID = vars["itemId"]
	if err := h.Restaurants.UpdateMenuItem(r.Context(), sessionFrom(r), &item); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Restaurants.DeleteMenuItem(r.Context(), sessionFrom(r), vars["id"], vars["itemId"]); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	item, err := h.Restaurants.ApplyDiscount(r.Context(), sessionFrom(r), vars["id"], vars["itemId"], req.Type, req.Value)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) removeDiscount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	item, err := h.Restaurants.RemoveDiscount(r.Context(), sessionFrom(r), vars["id"], vars["itemId"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// staff and admin

type setRoleRequest struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	var req service.StaffRequest
	if !decodeBody(w, r, &req) {
		return
	}
	uid, err := h.Accounts.CreateStaffAccount(r.Context(), sessionFrom(r), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "uid": uid})
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Accounts.ListStaff(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Accounts.SetRole(r.Context(), sessionFrom(r), req.UID, req.Role); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.ListUsers(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) createRestaurantWithOwner(w http.ResponseWriter, r *http.Request) {
	var req service.RestaurantOwnerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	restaurantID, ownerID, err := h.Accounts.CreateRestaurantWithOwner(r.Context(), sessionFrom(r), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":      true,
		"restaurantId": restaurantID,
		"ownerId":      ownerID,
	})
}

func (h *Handler) pendingLedgerJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Ledger.PendingJobs(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}
