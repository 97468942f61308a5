package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"tabletap/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is lowered by tests.
var PasswordCost = bcrypt.DefaultCost

func (r *PostgresRepository) CreateAccount(ctx context.Context, login, password, displayName string) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		UID:          uuid.NewString(),
		LoginHandle:  strings.ToLower(strings.TrimSpace(login)),
		DisplayName:  displayName,
		PasswordHash: string(hash),
		RoleClaim:    domain.RoleCustomer,
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO accounts (uid, login_handle, display_name, password_hash, role_claim)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		account.UID, account.LoginHandle, account.DisplayName, account.PasswordHash, string(account.RoleClaim),
	).Scan(&account.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.ErrLoginTaken
		}
		return nil, err
	}
	return account, nil
}

func (r *PostgresRepository) DeleteAccount(ctx context.Context, uid string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM accounts WHERE uid = $1", uid)
	return err
}

func (r *PostgresRepository) SetRoleClaim(ctx context.Context, uid string, role domain.Role) error {
	result, err := r.DB.ExecContext(ctx, "UPDATE accounts SET role_claim = $1 WHERE uid = $2", string(role), uid)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Authenticate returns ErrUnauthenticated for an unknown handle and a wrong
// password alike.
func (r *PostgresRepository) Authenticate(ctx context.Context, login, password string) (*domain.Account, error) {
	var account domain.Account
	var role string
	err := r.DB.QueryRowContext(ctx, `
		SELECT uid, login_handle, COALESCE(display_name, ''), password_hash, role_claim, created_at
		FROM accounts WHERE login_handle = $1`, strings.ToLower(strings.TrimSpace(login))).
		Scan(&account.UID, &account.LoginHandle, &account.DisplayName, &account.PasswordHash, &role, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	account.RoleClaim = domain.Role(role)
	return &account, nil
}
