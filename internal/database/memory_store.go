package database

import (
	"context"
	"strings"
	"sync"

	"github.com/vendora/backend/internal/models"
)

// MemoryStore keeps users, accounts and products in process memory. Reads return
// copies; saves are compare-and-swap on Version like the Postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	accounts map[string]models.Account
	products map[string]models.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		accounts: make(map[string]models.Account),
		products: make(map[string]models.Product),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	key := strings.ToLower(user.Username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return models.ErrDuplicateRecord
	}
	s.users[key] = *user
	return nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return &user, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.OwnerID]; ok {
		return models.ErrDuplicateRecord
	}
	s.accounts[account.OwnerID] = *account
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, ownerID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[ownerID]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return &account, nil
}

func (s *MemoryStore) SaveAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[account.OwnerID]
	if !ok || stored.Version != account.Version {
		return models.ErrVersionConflict
	}
	account.Version++
	s.accounts[account.OwnerID] = *account
	return nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; ok {
		return models.ErrDuplicateRecord
	}
	s.products[product.ID] = *product
	return nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return &product, nil
}

func (s *MemoryStore) SaveProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.products[product.ID]
	if !ok || stored.Version != product.Version {
		return models.ErrVersionConflict
	}
	product.Version++
	s.products[product.ID] = *product
	return nil
}
