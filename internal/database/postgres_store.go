package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/vendora/backend/internal/models"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// PostgresStore implements the user, account and product repositories on
// database/sql. Saves use the version column for optimistic locking.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID, strings.ToLower(user.Username), user.PasswordHash, user.Role, user.CreatedAt)
	return insertError("user", err)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = $1`, strings.ToLower(username)).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, selectError("user", err)
	}
	return &user, nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *models.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (owner_id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		account.OwnerID, account.Balance, account.Version, account.CreatedAt, account.UpdatedAt)
	return insertError("account", err)
}

func (s *PostgresStore) GetAccount(ctx context.Context, ownerID string) (*models.Account, error) {
	var account models.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT owner_id, balance, version, created_at, updated_at
		FROM accounts
		WHERE owner_id = $1`, ownerID).
		Scan(&account.OwnerID, &account.Balance, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, selectError("account", err)
	}
	return &account, nil
}

func (s *PostgresStore) SaveAccount(ctx context.Context, account *models.Account) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE owner_id = $3 AND version = $4`,
		account.Balance, account.UpdatedAt, account.OwnerID, account.Version)
	if err := checkVersionedUpdate(result, err); err != nil {
		return fmt.Errorf("account %s: %w", account.OwnerID, err)
	}
	account.Version++
	return nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, stock, owner_id, deleted, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ID, product.Name, product.Price, product.Stock, product.OwnerID,
		product.Deleted, product.Version, product.CreatedAt, product.UpdatedAt)
	return insertError("product", err)
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, stock, owner_id, deleted, version, created_at, updated_at
		FROM products
		WHERE id = $1`, id).
		Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.OwnerID,
			&product.Deleted, &product.Version, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		// Malformed ids can not name a row.
		if errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation {
			return nil, models.ErrRecordNotFound
		}
		return nil, selectError("product", err)
	}
	return &product, nil
}

func (s *PostgresStore) SaveProduct(ctx context.Context, product *models.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, price = $2, stock = $3, deleted = $4, version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7`,
		product.Name, product.Price, product.Stock, product.Deleted, product.UpdatedAt,
		product.ID, product.Version)
	if err := checkVersionedUpdate(result, err); err != nil {
		return fmt.Errorf("product %s: %w", product.ID, err)
	}
	product.Version++
	return nil
}

func checkVersionedUpdate(result sql.Result, err error) error {
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return models.ErrVersionConflict
	}
	return nil
}

func insertError(entity string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", entity, models.ErrDuplicateRecord)
	}
	return fmt.Errorf("insert %s: %w", entity, err)
}

func selectError(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, models.ErrRecordNotFound)
	}
	return fmt.Errorf("select %s: %w", entity, err)
}
