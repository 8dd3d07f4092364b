package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/models"
)

type UserRepo struct {
	store docstore.Store
}

func NewUserRepo(store docstore.Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	user.Email = strings.ToLower(user.Email)
	user.IsActive = true
	user.CreatedAt = time.Now().UTC()
	return docstore.Put(ctx, r.store, CollUsers, user.ID.String(), user)
}

// GetByEmail returns docstore.ErrNotFound when no account uses email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := docstore.QueryAs[models.User](ctx, r.store, CollUsers, "email", strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, docstore.ErrNotFound
	}
	return users[0], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return docstore.GetAs[models.User](ctx, r.store, CollUsers, id.String())
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	return r.store.Update(ctx, CollUsers, userID.String(), map[string]any{
		"last_login_at": time.Now().UTC(),
	})
}
