// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
)

// MemoryUserRepository is a process-local [UserRepository].
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]*User
	byEmail map[string]string
}

// NewMemoryUserRepository creates an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (repository *MemoryUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	email := NormalizeEmail(user.Email)
	if _, taken := repository.byEmail[email]; taken {
		return apperr.Conflict("Email is already registered")
	}
	if _, exists := repository.users[user.ID]; exists {
		return apperr.Conflict("User already exists")
	}

	clone := *user
	repository.users[user.ID] = &clone
	repository.byEmail[email] = user.ID
	return nil
}

func (repository *MemoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, ok := repository.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repository *MemoryUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	repository.mu.RLock()
	id, ok := repository.byEmail[NormalizeEmail(email)]
	repository.mu.RUnlock()

	if !ok {
		return nil, apperr.NotFound("User")
	}
	return repository.FindByID(context, id)
}

func (repository *MemoryUserRepository) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	delete(repository.byEmail, NormalizeEmail(user.Email))
	delete(repository.users, id)
	return nil
}
