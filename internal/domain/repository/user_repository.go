package repository

import (
	"context"

	"github.com/oksasatya/idol-catalog/internal/domain/entity"
)

// UserRepository defines the login account lookups.
type UserRepository interface {
	// FindByUsername is an exact, case-sensitive match; (nil, nil) when absent.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// Create inserts u unless the username is taken; created reports which.
	Create(ctx context.Context, u *entity.User) (user *entity.User, created bool, err error)
}
