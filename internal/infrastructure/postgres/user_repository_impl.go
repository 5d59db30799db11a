package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	"github.com/oksasatya/idol-catalog/internal/domain/repository"
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, `
		SELECT id, username, password, roles
		FROM users
		WHERE username = $1
	`, username)
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Roles); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (*entity.User, bool, error) {
	if len(u.Roles) == 0 {
		u.Roles = []string{entity.RoleUser}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, password, roles)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
		RETURNING id
	`, u.Username, u.Password, u.Roles).Scan(&u.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.FindByUsername(ctx, u.Username)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
