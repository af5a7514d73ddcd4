// Package users is the credential store adapter: the persistence boundary
// for identity records.
package users

import (
	"context"

	"github.com/opencal/authcore/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error
}
