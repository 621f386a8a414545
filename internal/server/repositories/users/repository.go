// Package users stores user credentials. Email is unique across users.
package users

import (
	"context"

	"github.com/dmitrijs2005/dbsauth/internal/server/models"
)

// Repository is the credential store.
//
// Create returns common.ErrUserExists when the email is already taken, even
// if another registration won the race after the caller's pre-check.
// GetUserByEmail returns common.ErrorNotFound for an unknown email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
