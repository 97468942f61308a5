package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"
	"tabletap/pkg/authtoken"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const minPasswordLength = 6

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type AuthResult struct {
	Token   string          `json:"token"`
	Profile *domain.Profile `json:"profile"`
}

type StaffRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`
	RestaurantID string `json:"restaurant_id"`
}

type RestaurantOwnerRequest struct {
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	Description       string          `json:"description"`
	LoyaltyPercentage decimal.Decimal `json:"loyalty_percentage"`
	OwnerEmail        string          `json:"owner_email"`
	OwnerPassword     string          `json:"owner_password"`
	OwnerName         string          `json:"owner_name"`
}

// AccountService is the privileged surface over the identity provider. Any
// write that follows a successful CreateAccount is compensated by deleting the
// account again when it fails.
type AccountService struct {
	idp         IdentityProvider
	profiles    ProfileRepository
	restaurants RestaurantRepository
	tokens      *authtoken.Maker
	logger      zerolog.Logger
}

func NewAccountService(idp IdentityProvider, profiles ProfileRepository, restaurants RestaurantRepository, tokens *authtoken.Maker, logger zerolog.Logger) *AccountService {
	return &AccountService{
		idp:         idp,
		profiles:    profiles,
		restaurants: restaurants,
		tokens:      tokens,
		logger:      logger,
	}
}

// WaiterLoginHandle is the login a waiter signs in with: lower(username)@restaurantID.waiter.
func WaiterLoginHandle(username, restaurantID string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "@" + restaurantID + ".waiter"
}

func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		return nil, domain.InvalidArgument("valid email required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.InvalidArgument(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	account, err := s.idp.CreateAccount(ctx, email, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		UserID:      account.UID,
		Email:       email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        domain.RoleCustomer,
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		s.compensate(ctx, account.UID, "")
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return s.issue(profile)
}

func (s *AccountService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	account, err := s.idp.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, account.UID)
	if errors.Is(err, domain.ErrNotFound) {
		profile = &domain.Profile{UserID: account.UID, Email: account.LoginHandle, DisplayName: account.DisplayName, Role: domain.RoleCustomer}
	} else if err != nil {
		return nil, err
	}
	return s.issue(profile)
}

func (s *AccountService) issue(profile *domain.Profile) (*AuthResult, error) {
	token, err := s.tokens.Issue(profile.UserID, string(profile.Role), profile.RestaurantID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Profile: profile}, nil
}

// CreateStaffAccount creates a waiter for the caller's restaurant. Admins must
// name the restaurant explicitly.
func (s *AccountService) CreateStaffAccount(ctx context.Context, session *identity.Session, req StaffRequest) (string, error) {
	if !session.Authenticated() {
		return "", domain.ErrUnauthenticated
	}

	var restaurantID string
	switch session.Profile.Role {
	case domain.RoleBusinessOwner:
		restaurantID = session.Profile.RestaurantID
		if restaurantID == "" {
			return "", domain.ErrPermissionDenied
		}
	case domain.RoleAdmin:
		restaurantID = strings.TrimSpace(req.RestaurantID)
		if restaurantID == "" {
			return "", domain.InvalidArgument("restaurant_id required")
		}
	default:
		return "", domain.ErrPermissionDenied
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" || strings.TrimSpace(req.DisplayName) == "" {
		return "", domain.InvalidArgument("missing required fields: username, password, display_name")
	}
	if len(req.Password) < minPasswordLength {
		return "", domain.InvalidArgument(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	handle := WaiterLoginHandle(req.Username, restaurantID)
	account, err := s.idp.CreateAccount(ctx, handle, req.Password, req.DisplayName)
	if err != nil {
		return "", err
	}

	profile := &domain.Profile{
		UserID:       account.UID,
		Email:        handle,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         domain.RoleWaiter,
		RestaurantID: restaurantID,
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		s.compensate(ctx, account.UID, "")
		return "", fmt.Errorf("create waiter profile: %w", err)
	}
	if err := s.idp.SetRoleClaim(ctx, account.UID, domain.RoleWaiter); err != nil {
		s.compensate(ctx, account.UID, "")
		return "", fmt.Errorf("set waiter claim: %w", err)
	}

	s.logger.Info().Str("uid", account.UID).Str("restaurant_id", restaurantID).Str("created_by", session.UserID()).Msg("waiter account created")
	return account.UID, nil
}

func (s *AccountService) ListStaff(ctx context.Context, session *identity.Session) ([]domain.Profile, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	restaurantID := session.Profile.RestaurantID
	if identity.IsAdmin(session.Profile) {
		restaurantID = ""
	} else if !identity.CanManageRestaurant(session.Profile, restaurantID) {
		return nil, domain.ErrPermissionDenied
	}

	profiles, err := s.profiles.ListProfiles(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	staff := []domain.Profile{}
	for _, p := range profiles {
		if p.Role == domain.RoleWaiter {
			staff = append(staff, p)
		}
	}
	return staff, nil
}

// SetRole updates both the stored profile and the token claim. Only admins may call it.
func (s *AccountService) SetRole(ctx context.Context, session *identity.Session, uid string, role string) error {
	if !session.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !identity.IsAdmin(session.Profile) {
		return domain.ErrPermissionDenied
	}
	if strings.TrimSpace(uid) == "" {
		return domain.InvalidArgument("uid required")
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return err
	}

	if err := s.idp.SetRoleClaim(ctx, uid, parsed); err != nil {
		return err
	}

	err = s.profiles.SetProfileRole(ctx, uid, parsed)
	if errors.Is(err, domain.ErrNotFound) {
		err = s.profiles.UpsertProfile(ctx, &domain.Profile{UserID: uid, Role: parsed})
	}
	if err != nil {
		return fmt.Errorf("update profile role: %w", err)
	}

	s.logger.Info().Str("uid", uid).Str("role", string(parsed)).Str("set_by", session.UserID()).Msg("role updated")
	return nil
}

func (s *AccountService) ListUsers(ctx context.Context, session *identity.Session) ([]domain.Profile, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !identity.IsAdmin(session.Profile) {
		return nil, domain.ErrPermissionDenied
	}
	return s.profiles.ListProfiles(ctx, "")
}

// CreateRestaurantWithOwner creates the owner account, the restaurant, and the
// owner's profile. It returns the restaurant id and the owner uid.
func (s *AccountService) CreateRestaurantWithOwner(ctx context.Context, session *identity.Session, req RestaurantOwnerRequest) (string, string, error) {
	if !session.Authenticated() {
		return "", "", domain.ErrUnauthenticated
	}
	if !identity.IsAdmin(session.Profile) {
		return "", "", domain.ErrPermissionDenied
	}

	email := strings.ToLower(strings.TrimSpace(req.OwnerEmail))
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "", "", domain.InvalidArgument("restaurant name required")
	case !strings.Contains(email, "@"):
		return "", "", domain.InvalidArgument("valid owner email required")
	case len(req.OwnerPassword) < minPasswordLength:
		return "", "", domain.InvalidArgument(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if err := validateLoyalty(req.LoyaltyPercentage); err != nil {
		return "", "", err
	}

	account, err := s.idp.CreateAccount(ctx, email, req.OwnerPassword, req.OwnerName)
	if err != nil {
		return "", "", err
	}

	rest := &domain.Restaurant{
		Name:              strings.TrimSpace(req.Name),
		Address:           req.Address,
		Description:       req.Description,
		LoyaltyPercentage: req.LoyaltyPercentage,
	}
	if err := s.restaurants.CreateRestaurant(ctx, rest); err != nil {
		s.compensate(ctx, account.UID, "")
		return "", "", fmt.Errorf("create restaurant: %w", err)
	}

	profile := &domain.Profile{
		UserID:       account.UID,
		Email:        email,
		DisplayName:  strings.TrimSpace(req.OwnerName),
		Role:         domain.RoleBusinessOwner,
		RestaurantID: rest.ID,
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		s.compensate(ctx, account.UID, rest.ID)
		return "", "", fmt.Errorf("create owner profile: %w", err)
	}
	if err := s.idp.SetRoleClaim(ctx, account.UID, domain.RoleBusinessOwner); err != nil {
		s.compensate(ctx, account.UID, rest.ID)
		return "", "", fmt.Errorf("set owner claim: %w", err)
	}

	s.logger.Info().Str("restaurant_id", rest.ID).Str("owner_id", account.UID).Msg("restaurant created with owner")
	return rest.ID, account.UID, nil
}

// EnsureAdmin makes login an admin, creating the account when it does not exist yet.
func (s *AccountService) EnsureAdmin(ctx context.Context, login, password string) (string, error) {
	account, err := s.idp.Authenticate(ctx, login, password)
	if errors.Is(err, domain.ErrUnauthenticated) {
		account, err = s.idp.CreateAccount(ctx, login, password, "Administrator")
	}
	if err != nil {
		return "", fmt.Errorf("bootstrap admin %s: %w", login, err)
	}

	if err := s.idp.SetRoleClaim(ctx, account.UID, domain.RoleAdmin); err != nil {
		return "", fmt.Errorf("set admin claim: %w", err)
	}
	profile := &domain.Profile{
		UserID:      account.UID,
		Email:       strings.ToLower(strings.TrimSpace(login)),
		DisplayName: account.DisplayName,
		Role:        domain.RoleAdmin,
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return "", fmt.Errorf("create admin profile: %w", err)
	}
	return account.UID, nil
}

// compensate removes everything written for uid before a later step failed.
func (s *AccountService) compensate(ctx context.Context, uid, restaurantID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.profiles.DeleteProfile(ctx, uid); err != nil {
		s.logger.Error().Err(err).Str("uid", uid).Msg("compensation: delete profile failed")
	}
	if restaurantID != "" {
		if _, err := s.restaurants.DeleteRestaurant(ctx, restaurantID); err != nil {
			s.logger.Error().Err(err).Str("restaurant_id", restaurantID).Msg("compensation: delete restaurant failed")
		}
	}
	if err := s.idp.DeleteAccount(ctx, uid); err != nil {
		s.logger.Error().Err(err).Str("uid", uid).Msg("compensation: delete account failed")
	}
}
