package repository

import (
	"context"

	"github.com/oksasatya/idol-catalog/internal/domain/entity"
)

// DefaultPageSize is the page size of the recent-idols listing.
const DefaultPageSize = 12

// MaxPage is the largest page index the HTTP layer accepts.
const MaxPage = 100000

// IdolRepository persists Idol aggregates together with their members.
//
// Finders return (nil, nil) when nothing matches; absence is not an error.
type IdolRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Idol, error)
	FindByName(ctx context.Context, name string) (*entity.Idol, error)
	// FindAllRecent orders by createdAt descending and returns at most size items.
	FindAllRecent(ctx context.Context, page, size int) ([]*entity.Idol, error)
	// Save inserts when idol.ID is zero and updates otherwise. Members with a
	// zero ID are inserted in the same transaction.
	Save(ctx context.Context, idol *entity.Idol) (*entity.Idol, error)
	// Update locks the aggregate, applies fn and persists the result in one
	// transaction. A missing id yields domain.ErrNotFound.
	Update(ctx context.Context, id int64, fn func(*entity.Idol) error) (*entity.Idol, error)
	// DeleteByID removes the idol and, by cascade, its members. Deleting a
	// missing id succeeds.
	DeleteByID(ctx context.Context, id int64) error
}
